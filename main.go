// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package main implements the lc compiler application.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/maloquacious/semver"
	"github.com/playbymail/lc/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 9,
		Patch: 4,
		Build: semver.Commit(),
	}
	globalConfig *config.Config
)

func main() {
	// if version is on the command line, show it and exit
	for _, arg := range os.Args {
		if arg == "-version" || arg == "--version" {
			fmt.Printf("%s\n", version.Short())
			return
		} else if arg == "-build-info" || arg == "--build-info" {
			fmt.Printf("%s\n", version.String())
			return
		}
	}
	log.SetFlags(log.Lshortfile | log.Ltime)

	const configFileName = "lc.json"
	// set the debug flag only if there is a configuration file to debug
	debugConfigFile := false
	if sb, err := os.Stat(configFileName); err == nil && sb.Mode().IsRegular() {
		debugConfigFile = true
	}
	cfg, err := config.Load(configFileName, debugConfigFile)
	if err != nil && debugConfigFile {
		log.Printf("[config] %q: %v\n", configFileName, err)
	}

	if err := Execute(cfg); err != nil {
		log.Fatal(err)
	}
}

// Execute wires the command tree and runs it.
func Execute(cfg *config.Config) error {
	globalConfig = cfg

	cmdRoot.AddCommand(cmdCompile)
	cmdCompile.Flags().StringVarP(&argsCompile.output, "output", "o", "", "path for the generated C file")
	cmdCompile.Flags().IntVarP(&argsCompile.debug, "debug", "d", cfg.DebugFlags.Level, "debug verbosity (0..3)")
	cmdCompile.Flags().IntVarP(&argsCompile.optimize, "optimize", "O", cfg.Optimizer.Level, "optimizer level (0..2)")
	cmdCompile.Flags().StringSliceVar(&argsCompile.searchPaths, "module-path", cfg.Modules.SearchPaths, "module search paths")
	cmdCompile.Flags().StringVar(&argsCompile.cachePath, "cache", cfg.Modules.CachePath, "directory holding the module cache database")

	cmdRoot.AddCommand(cmdCache)
	cmdCache.PersistentFlags().StringVar(&argsCache.path, "store", argsCache.path, "directory holding the module cache database")
	cmdCache.AddCommand(cmdCacheCreate)
	cmdCacheCreate.Flags().BoolVar(&argsCache.force, "force", false, "force the creation if the database exists")
	cmdCache.AddCommand(cmdCacheShow)

	cmdRoot.AddCommand(cmdVersion)

	return cmdRoot.Execute()
}

var cmdRoot = &cobra.Command{
	Use:   "lc",
	Short: "compile L source to portable C",
	Long:  `lc translates L source files into C translation units.`,
}
