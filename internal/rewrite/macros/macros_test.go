// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package macros_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/rewrite/macros"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Collector) {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	return parser.New("test.l", lx, diags).Parse(), diags
}

func TestExpand_ExpressionMacro(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, "macro square(x) => x * x;\nmain { print square(4); }")
	out, err := macros.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Decls) != 0 {
		t.Fatalf("macro definitions must be stripped, %d decls remain", len(out.Decls))
	}
	text := ast.Text(out)
	if !strings.Contains(text, "print (4 * 4);") {
		t.Fatalf("expansion missing: %s", text)
	}
}

func TestExpand_BlockMacroSplicesStatements(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, `
macro twice(s) { print s; print s; }
main { twice("hello"); }`)
	out, err := macros.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	text := ast.Text(out)
	if strings.Count(text, `print "hello";`) != 2 {
		t.Fatalf("block splice missing: %s", text)
	}
}

func TestExpand_NestedMacros(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, `
macro square(x) => x * x;
macro quad(x) => square(x) * square(x);
main { print quad(2); }`)
	out, err := macros.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	text := ast.Text(out)
	if strings.Contains(text, "quad") || strings.Contains(text, "square") {
		t.Fatalf("expansion left macro calls behind: %s", text)
	}
}

func TestExpand_Stringify(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, "macro show(x) => #x;\nmain { print show(a + b); }")
	out, err := macros.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	text := ast.Text(out)
	if !strings.Contains(text, `"(a + b)"`) {
		t.Fatalf("stringify missing: %s", text)
	}
}

func TestExpand_Paste(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, "macro getter(name) => get##name;\nmain { x = getter(Width); }")
	out, err := macros.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	text := ast.Text(out)
	if !strings.Contains(text, "getWidth") {
		t.Fatalf("paste missing: %s", text)
	}
}

func TestExpand_ArityMismatchReports(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, "macro square(x) => x * x;\nmain { print square(1, 2); }")
	if _, err := macros.New("test.l", diags).Rewrite(prog); err != nil {
		t.Fatal(err)
	}
	if diags.Errors() == 0 {
		t.Fatal("expected an arity diagnostic")
	}
}

func TestExpand_DepthLimitTrips(t *testing.T) {
	t.Parallel()
	prog, diags := parse(t, "macro loop(x) => loop(x);\nmain { print loop(1); }")
	x := macros.New("test.l", diags)
	x.MaxDepth = 8
	_, err := x.Rewrite(prog)
	if !errors.Is(err, cerrs.ErrExpansionLimit) {
		t.Fatalf("expected ErrExpansionLimit, got %v", err)
	}
}
