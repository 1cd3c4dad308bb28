// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package aspects_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/rewrite/aspects"
)

func weave(t *testing.T, src string) (*ast.Program, *diag.Collector) {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	out, err := aspects.New("test.l", diags).Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	return out, diags
}

func funcNamed(t *testing.T, prog *ast.Program, name string) *ast.FuncDef {
	t.Helper()
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDef); ok && fd.Name == name {
			return fd
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

func TestWeave_BeforeAndAfter(t *testing.T) {
	t.Parallel()
	prog, diags := weave(t, `
aspect Logging {
	pointcut calls: "do_*";
	before calls { print "enter"; }
	after calls { print "exit"; }
}
func do_work() { print "work"; }
func other() { print "other"; }
`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}

	woven := ast.Text(funcNamed(t, prog, "do_work"))
	enter := strings.Index(woven, `print "enter";`)
	work := strings.Index(woven, `print "work";`)
	exit := strings.Index(woven, `print "exit";`)
	if enter < 0 || work < 0 || exit < 0 || !(enter < work && work < exit) {
		t.Fatalf("advice out of order:\n%s", woven)
	}

	untouched := ast.Text(funcNamed(t, prog, "other"))
	if strings.Contains(untouched, "enter") {
		t.Fatalf("non-matching function was woven:\n%s", untouched)
	}
}

func TestWeave_AroundSplicesProceed(t *testing.T) {
	t.Parallel()
	prog, diags := weave(t, `
aspect Timing {
	pointcut all: "do_*";
	around all { print "start"; proceed(); print "stop"; }
}
func do_it() { print "body"; }
`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	woven := ast.Text(funcNamed(t, prog, "do_it"))
	start := strings.Index(woven, `print "start";`)
	body := strings.Index(woven, `print "body";`)
	stop := strings.Index(woven, `print "stop";`)
	if start < 0 || body < 0 || stop < 0 || !(start < body && body < stop) {
		t.Fatalf("around splice out of order:\n%s", woven)
	}
	if strings.Contains(woven, "proceed") {
		t.Fatalf("proceed() must be replaced:\n%s", woven)
	}
}

// first-declared around advice is outermost; each inner layer is the
// proceed() of the next outer one
func TestWeave_MultipleAroundsNestInDeclarationOrder(t *testing.T) {
	t.Parallel()
	prog, diags := weave(t, `
aspect A {
	pointcut all: "do_*";
	around all { print "outer-in"; proceed(); print "outer-out"; }
	around all { print "inner-in"; proceed(); print "inner-out"; }
}
func do_it() { print "body"; }
`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	woven := ast.Text(funcNamed(t, prog, "do_it"))
	order := []string{`"outer-in"`, `"inner-in"`, `"body"`, `"inner-out"`, `"outer-out"`}
	last := -1
	for _, marker := range order {
		idx := strings.Index(woven, marker)
		if idx < 0 || idx < last {
			t.Fatalf("nesting order wrong at %s:\n%s", marker, woven)
		}
		last = idx
	}
}

func TestWeave_ExpressionBodiedFunction(t *testing.T) {
	t.Parallel()
	prog, diags := weave(t, `
aspect Logging {
	pointcut all: "calc*";
	before all { print "enter"; }
}
func calc(x: Int) => x * 2;
`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	fd := funcNamed(t, prog, "calc")
	if fd.ExprBody != nil || fd.Body == nil {
		t.Fatal("woven function must be block-bodied")
	}
	woven := ast.Text(fd)
	if !strings.Contains(woven, `print "enter";`) || !strings.Contains(woven, "return (x * 2);") {
		t.Fatalf("weave result:\n%s", woven)
	}
}

func TestWeave_UnknownPointcutReports(t *testing.T) {
	t.Parallel()
	_, diags := weave(t, `
aspect Broken {
	before missing { print "x"; }
}
func anything() { print 1; }
`)
	if diags.Errors() == 0 {
		t.Fatal("expected a diagnostic for the unknown pointcut")
	}
}

func TestWeave_MethodsAreJoinpoints(t *testing.T) {
	t.Parallel()
	prog, diags := weave(t, `
aspect Logging {
	pointcut all: "area";
	before all { print "enter"; }
}
class Shape {
	side: Float = 1.0;
	func area() { return this.side * this.side; }
}
`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	for _, d := range prog.Decls {
		if cd, ok := d.(*ast.ClassDef); ok {
			woven := ast.Text(cd.Methods[0])
			if !strings.Contains(woven, `print "enter";`) {
				t.Fatalf("method was not woven:\n%s", woven)
			}
			return
		}
	}
	t.Fatal("class not found")
}
