// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/cgen"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/modules"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/rewrite"
	"github.com/playbymail/lc/internal/rewrite/aspects"
	"github.com/playbymail/lc/internal/rewrite/macros"
	"github.com/playbymail/lc/internal/rewrite/optimize"
	"github.com/playbymail/lc/internal/rewrite/templates"
	"github.com/playbymail/lc/internal/typecheck"
	"github.com/playbymail/lc/stores/sqlite"
	"github.com/spf13/cobra"
)

var argsCompile struct {
	output      string
	debug       int
	optimize    int
	searchPaths []string
	cachePath   string
}

var cmdCompile = &cobra.Command{
	Use:   "compile",
	Short: "compile an L source file to C",
	Long:  `Compile a single L source file into one C translation unit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			log.Fatalf("error: expected source file to compile\n")
		}
		input, err := validateSourceFileName(args[0])
		if err != nil {
			log.Fatalf("error: %q: %v\n", args[0], err)
		}
		output := argsCompile.output
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".c"
		}
		if ok := compileFile(input, output); !ok {
			os.Exit(1)
		}
	},
}

// validateSourceFileName requires an existing regular file with the .l
// extension.
func validateSourceFileName(name string) (string, error) {
	if filepath.Ext(name) != ".l" {
		return "", cerrs.ErrNotASourceFile
	}
	sb, err := os.Stat(name)
	if err != nil {
		return "", err
	} else if !sb.Mode().IsRegular() {
		return "", cerrs.ErrNotAFile
	}
	return name, nil
}

// compileFile runs the whole pipeline: lex, parse, resolve imports, type
// check, rewrite, and emit. It reports whether the run produced no errors.
func compileFile(input, output string) bool {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(argsCompile.debug)}))
	diags := diag.NewCollector(os.Stderr)
	runID := uuid.NewString()
	logger.Debug("compile", "input", input, "output", output, "run", runID)

	src, err := os.ReadFile(input)
	if err != nil {
		diags.Errorf(diag.IO, input, 0, 0, "read: %v", err)
		return false
	}

	lx := lexer.New(input, src, diags)
	p := parser.New(input, lx, diags)
	p.SetDebugLevel(argsCompile.debug)
	prog := p.Parse()

	// module resolution feeds the checker's and emitter's export tables
	var cache modules.Cache
	if argsCompile.cachePath != "" {
		if store, err := sqlite.OpenStore(argsCompile.cachePath, context.Background()); err == nil {
			defer func() { _ = store.Close() }()
			cache = store
		} else {
			logger.Debug("module cache unavailable", "path", argsCompile.cachePath, "error", err)
		}
	}
	resolver := modules.NewResolver(append(argsCompile.searchPaths, filepath.Dir(input)), cache, version, runID, diags)
	resolver.SetDebugLevel(argsCompile.debug)

	chk := typecheck.New(input, diags)
	moduleExports := make(map[string][]string)
	for _, d := range prog.Decls {
		imp, ok := d.(*ast.Import)
		if !ok {
			continue
		}
		mod, err := resolver.Load(imp.Module)
		if err != nil || mod == nil {
			continue
		}
		key := imp.Alias
		if key == "" {
			key = imp.Module
		}
		chk.Modules[key] = mod.ExportTypes()
		moduleExports[mod.Name] = mod.ExportNames()
	}

	chk.CheckProgram(prog)

	pipeline := rewrite.NewPipeline(
		macros.New(input, diags),
		templates.New(input, diags),
		aspects.New(input, diags),
		optimize.New(input, argsCompile.optimize, diags),
	)
	pipeline.SetDebugLevel(argsCompile.debug)
	prog, err = pipeline.Run(prog)
	if err != nil {
		logger.Error("rewrite failed", "error", err)
		return false
	}

	// rewriters may have created nodes the first checker never saw; a
	// fresh checker re-infers without tripping redeclaration errors
	chk2 := typecheck.New(input, diags)
	chk2.Modules = chk.Modules
	chk2.CheckProgram(prog)

	emitter := cgen.New(input, chk2.Classes(), diags)
	emitter.ModuleExports = moduleExports
	emitter.SetDebugLevel(argsCompile.debug)
	if err := emitter.Emit(prog, output); err != nil {
		logger.Error("emit failed", "error", err)
		return false
	}

	if diags.Errors() > 0 {
		logger.Debug("compilation finished with errors", "errors", diags.Errors(), "warnings", diags.Warnings())
		return false
	}
	logger.Debug("compilation finished", "warnings", diags.Warnings())
	return true
}

func logLevel(debug int) slog.Level {
	switch {
	case debug >= 2:
		return slog.LevelDebug
	case debug == 1:
		return slog.LevelInfo
	}
	return slog.LevelError
}
