// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"reflect"

	"github.com/playbymail/lc/cerrs"
)

const (
	ErrIsDirectory = cerrs.Error("is directory")
	ErrIsNotAFile  = cerrs.Error("is not a file")
)

// Config controls a compilation run. Flags on the command line override
// values loaded here.
type Config struct {
	DebugFlags DebugFlags_t `json:"DebugFlags"`
	Optimizer  Optimizer_t  `json:"Optimizer"`
	Modules    Modules_t    `json:"Modules"`
}

type DebugFlags_t struct {
	Level   int  `json:"Level,omitempty"`
	Lexer   bool `json:"Lexer,omitempty"`
	Parser  bool `json:"Parser,omitempty"`
	Types   bool `json:"Types,omitempty"`
	Codegen bool `json:"Codegen,omitempty"`
	Modules bool `json:"Modules,omitempty"`
	LogTime bool `json:"LogTime,omitempty"`
}

type Optimizer_t struct {
	Level           int  `json:"Level,omitempty"`
	Folding         bool `json:"Folding,omitempty"`
	DeadCode        bool `json:"DeadCode,omitempty"`
	RedundantAssign bool `json:"RedundantAssign,omitempty"`
	ConstProp       bool `json:"ConstProp,omitempty"`
	CSE             bool `json:"CSE,omitempty"`
	ScopeNarrow     bool `json:"ScopeNarrow,omitempty"`
}

type Modules_t struct {
	SearchPaths []string `json:"SearchPaths,omitempty"`
	CachePath   string   `json:"CachePath,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Optimizer: Optimizer_t{
			Level: 1,
		},
		Modules: Modules_t{
			SearchPaths: []string{"."},
		},
	}
}

// Load reads the configuration file, merging non-zero values over the
// defaults. A missing or malformed file quietly yields the defaults; a
// path that is not a regular file is an error.
func Load(name string, debug bool) (*Config, error) {
	if debug {
		log.Printf("[config] %q: loading configuration...\n", name)
	}
	// create a config with default values for the application
	cfg := Default()
	if sb, err := os.Stat(name); errors.Is(err, os.ErrNotExist) || os.IsNotExist(err) {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if sb.Mode().IsDir() {
		return cfg, ErrIsDirectory
	} else if !sb.Mode().IsRegular() {
		return cfg, ErrIsNotAFile
	}

	var tmp Config
	if data, err := os.ReadFile(name); err != nil {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if err = json.Unmarshal(data, &tmp); err != nil {
		if debug {
			log.Printf("[config] %q: %v\n", name, err)
		}
		return cfg, nil
	} else if debug {
		if nice, err := json.MarshalIndent(tmp, "", "  "); err == nil {
			log.Printf("[config] %s\n", nice)
		} else {
			log.Printf("[config] %q: loaded %s\n", name, string(data))
		}
	}

	// copy over every value from tmp to config that isn't the default (zero) value
	copyNonZeroFields(&tmp, cfg)

	// a per-pass toggle implies at least level 2 so the pass actually runs
	if cfg.Optimizer.ConstProp || cfg.Optimizer.CSE || cfg.Optimizer.ScopeNarrow || cfg.Optimizer.RedundantAssign {
		if cfg.Optimizer.Level < 2 {
			cfg.Optimizer.Level = 2
		}
	}
	return cfg, nil
}

// copyNonZeroFields copies the non-zero fields of src over dst,
// recursing into nested structs.
func copyNonZeroFields(src, dst *Config) {
	copyStruct(reflect.ValueOf(src).Elem(), reflect.ValueOf(dst).Elem())
}

func copyStruct(src, dst reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		sf := src.Field(i)
		df := dst.Field(i)
		if sf.Kind() == reflect.Struct {
			copyStruct(sf, df)
			continue
		}
		if !sf.IsZero() {
			df.Set(sf)
		}
	}
}
