// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/playbymail/lc/internal/config"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.json"), false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(cfg, config.Default()); diff != nil {
		t.Fatal(diff)
	}
}

func TestLoad_DirectoryIsAnError(t *testing.T) {
	t.Parallel()
	if _, err := config.Load(t.TempDir(), false); err != config.ErrIsDirectory {
		t.Fatalf("expected ErrIsDirectory, got %v", err)
	}
}

func TestLoad_MergesNonZeroValues(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lc.json")
	data := `{
  "DebugFlags": { "Level": 2, "Parser": true },
  "Optimizer": { "Level": 2 },
  "Modules": { "SearchPaths": ["lib", "vendor"] }
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DebugFlags.Level != 2 || !cfg.DebugFlags.Parser {
		t.Fatalf("debug flags not merged: %+v", cfg.DebugFlags)
	}
	if cfg.Optimizer.Level != 2 {
		t.Fatalf("optimizer level = %d, want 2", cfg.Optimizer.Level)
	}
	if diff := deep.Equal(cfg.Modules.SearchPaths, []string{"lib", "vendor"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestLoad_MalformedFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lc.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Optimizer.Level != config.Default().Optimizer.Level {
		t.Fatalf("malformed config must fall back to defaults: %+v", cfg)
	}
}

func TestLoad_PassToggleRaisesLevel(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lc.json")
	if err := os.WriteFile(path, []byte(`{"Optimizer": {"CSE": true}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Optimizer.Level < 2 {
		t.Fatalf("per-pass toggle must imply level 2, got %d", cfg.Optimizer.Level)
	}
}
