// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/types"
)

// maxIdentLen bounds emitted identifiers; longer names are an emitter fault.
const maxIdentLen = 255

// Stats is the cumulative statistics record for one emit run.
type Stats struct {
	RunID      string
	Classes    int
	Methods    int
	Functions  int
	Lambdas    int
	Composes   int
	Statements int
}

// cvar is one entry in the per-function variable table.
type cvar struct {
	ctype    string
	declared bool
	pointer  bool
	arrayLen int // > 0 when the variable is a C array with a known length
}

// Emitter owns the output writer, the indent level, the variable table, the
// uniqueness counters, and the statistics record for one emit run. Nested
// emissions restore the indent level on return; the only entry point is
// Emit.
//
// Unlike the front end, the emitter is not recoverable: a partially written
// C file is not useful, so the first fault aborts the run.
type Emitter struct {
	w     *bufio.Writer
	out   *os.File
	srcPath string
	diags *diag.Collector
	debug int

	indent int
	err    error // first fault; sticky

	classes   map[string]*types.Type
	classDefs map[string]*ast.ClassDef
	classIDs  map[string]int
	imports   []*ast.Import

	// ModuleExports maps a module name to its exported symbol names, in
	// declaration order. Populated by the driver from the resolver.
	ModuleExports map[string][]string

	vars map[string]*cvar

	lambdaNames  map[*ast.Lambda]string
	composeNames map[*ast.Compose]string
	lambdaSeq    int
	composeSeq   int

	stats Stats
}

// New returns an emitter for a checked program. The classes map comes from
// the type checker.
func New(srcPath string, classes map[string]*types.Type, diags *diag.Collector) *Emitter {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	if classes == nil {
		classes = make(map[string]*types.Type)
	}
	return &Emitter{
		srcPath:       srcPath,
		diags:         diags,
		classes:       classes,
		classDefs:     make(map[string]*ast.ClassDef),
		classIDs:      make(map[string]int),
		ModuleExports: make(map[string][]string),
		lambdaNames:   make(map[*ast.Lambda]string),
		composeNames:  make(map[*ast.Compose]string),
		stats:         Stats{RunID: uuid.NewString()},
	}
}

// SetDebugLevel adjusts diagnostic verbosity.
func (e *Emitter) SetDebugLevel(k int) { e.debug = k }

// Stats returns the statistics record of the last Emit.
func (e *Emitter) Stats() Stats { return e.stats }

// Emit writes one C translation unit for the program. The output file is
// flushed and closed on every exit path. The first fault aborts with a
// wrapped ErrEmitAborted.
func (e *Emitter) Emit(prog *ast.Program, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		e.diags.Errorf(diag.IO, e.srcPath, 0, 0, "cannot open %s: %v", outputPath, err)
		return errors.Join(cerrs.ErrInvalidOutputPath, err)
	}
	e.out = f
	e.w = bufio.NewWriter(f)
	defer func() {
		_ = e.w.Flush()
		_ = f.Close()
	}()

	e.collect(prog)

	e.emitPreamble()
	e.emitModules()
	e.emitClassLayouts()
	e.emitConstructors()
	e.emitPrototypes(prog)
	e.emitLambdas(prog)
	e.emitMethods()
	e.emitFunctions(prog)
	e.emitMain(prog)

	if e.err != nil {
		return errors.Join(cerrs.ErrEmitAborted, e.err)
	}
	if err := e.w.Flush(); err != nil {
		e.diags.Errorf(diag.IO, e.srcPath, 0, 0, "write %s: %v", outputPath, err)
		return errors.Join(cerrs.ErrEmitAborted, err)
	}
	if e.debug >= 1 {
		log.Printf("[cgen] run %s: %d classes, %d methods, %d functions, %d lambdas, %d composes, %d statements\n",
			e.stats.RunID, e.stats.Classes, e.stats.Methods, e.stats.Functions, e.stats.Lambdas, e.stats.Composes, e.stats.Statements)
	}
	return nil
}

// collect walks the program once before emission: class declarations and
// integer type-tag ids, free functions, imports, and hoisted names for
// every lambda and composition.
func (e *Emitter) collect(prog *ast.Program) {
	id := 1
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.ClassDef:
			e.classDefs[n.Name] = n
			e.classIDs[n.Name] = id
			id++
		case *ast.Import:
			e.imports = append(e.imports, n)
		}
	}

	ast.Walk(prog, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Lambda:
			if _, ok := e.lambdaNames[x]; !ok {
				e.lambdaNames[x] = fmt.Sprintf("_lambda_%d", e.lambdaSeq)
				e.lambdaSeq++
			}
		case *ast.Compose:
			if _, ok := e.composeNames[x]; !ok {
				e.composeNames[x] = fmt.Sprintf("compose_%d", e.composeSeq)
				e.composeSeq++
			}
		}
	})
}

// ----- low-level output -----

func (e *Emitter) fail(err error, format string, args ...any) {
	if e.err != nil {
		return
	}
	e.err = err
	e.diags.Errorf(diag.Semantic, e.srcPath, 0, 0, format, args...)
}

func (e *Emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	if _, err := fmt.Fprintf(e.w, format, args...); err != nil {
		e.err = err
	}
}

// line writes one indented line.
func (e *Emitter) line(format string, args ...any) {
	if e.err != nil {
		return
	}
	e.printf("%s%s\n", strings.Repeat("    ", e.indent), fmt.Sprintf(format, args...))
}

func (e *Emitter) blank() {
	e.printf("\n")
}

// checkIdent guards emitted identifiers against the identifier limit.
func (e *Emitter) checkIdent(name string) string {
	if len(name) > maxIdentLen {
		e.fail(cerrs.ErrOversizeIdentifier, "identifier %q exceeds %d characters", name[:32]+"...", maxIdentLen)
	}
	return name
}

// ----- type mapping -----

// ctype maps an inferred type to the C type used for values of it.
func (e *Emitter) ctype(t *types.Type) string {
	if t == nil {
		return "int"
	}
	switch t.Kind {
	case types.Int:
		return "int"
	case types.Float:
		return "double"
	case types.Bool:
		return "bool"
	case types.String:
		return "const char*"
	case types.Void:
		return "void"
	case types.Class:
		return t.Name + "*"
	case types.Array:
		return e.ctype(t.Elem)
	case types.Curried:
		// a partially applied function has no C representation; the
		// emitter aborts rather than writing an unusable unit
		e.fail(cerrs.ErrUnsupportedNode, "partial application has no C lowering")
		return "int"
	case types.Object, types.Null, types.Unknown:
		return "void*"
	}
	return "int"
}

// cdecl renders a declaration of name with the given type; function and
// lambda types become function pointers.
func (e *Emitter) cdecl(t *types.Type, name string) string {
	if t != nil && (t.Kind == types.Function || t.Kind == types.Lambda) {
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = e.ctype(p)
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		return fmt.Sprintf("%s (*%s)(%s)", e.ctype(t.Return), name, strings.Join(params, ", "))
	}
	return fmt.Sprintf("%s %s", e.ctype(t), name)
}
