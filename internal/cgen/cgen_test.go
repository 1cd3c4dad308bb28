// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/cgen"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/typecheck"
)

// emit runs the front end and the emitter over source and returns the
// generated C text.
func emit(t *testing.T, src string, exports map[string][]string) string {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	chk := typecheck.New("test.l", diags)
	for mod := range exports {
		chk.Modules[mod] = nil
	}
	chk.CheckProgram(prog)

	e := cgen.New("test.l", chk.Classes(), diags)
	for mod, syms := range exports {
		e.ModuleExports[mod] = syms
	}
	out := filepath.Join(t.TempDir(), "out.c")
	if err := e.Emit(prog, out); err != nil {
		t.Fatalf("emit: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestEmit_BracesBalance(t *testing.T) {
	t.Parallel()
	src := `
class Point {
	x: Float = 0;
	y: Float = 0;
	func dist() => sqrt(this.x * this.x + this.y * this.y);
}
func greet(name: String) -> String { return "hi " + name; }
main {
	p = new Point();
	p.x = 3.0;
	p.y = 4.0;
	print p.dist();
	for i in range(1, 4) print i;
	try { throw "E: msg"; } catch (e) { print e; }
}`
	c := emit(t, src, nil)
	if open, closed := strings.Count(c, "{"), strings.Count(c, "}"); open != closed {
		t.Fatalf("braces unbalanced: %d open, %d close\n%s", open, closed, c)
	}
}

func TestEmit_PrintDispatchesOnType(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { print "hi"; print 42; print 2.5; }`, nil)
	if !strings.Contains(c, `printf("%s\n", "hi");`) {
		t.Fatalf("missing string print:\n%s", c)
	}
	if !strings.Contains(c, `printf("%d\n", 42);`) {
		t.Fatalf("missing int print:\n%s", c)
	}
	if !strings.Contains(c, `printf("%g\n", 2.5);`) {
		t.Fatalf("missing float print:\n%s", c)
	}
}

func TestEmit_ArithmeticAndFirstUseDeclaration(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { a = 2; b = 3; print a + b; }`, nil)
	if !strings.Contains(c, "int a = 2;") || !strings.Contains(c, "int b = 3;") {
		t.Fatalf("first use must declare:\n%s", c)
	}
	if !strings.Contains(c, "(a + b)") {
		t.Fatalf("missing sum:\n%s", c)
	}
}

func TestEmit_IfElse(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { x = 10; if (x > 5) print "big"; else print "small"; }`, nil)
	if !strings.Contains(c, "if ((x > 5)) {") {
		t.Fatalf("missing if:\n%s", c)
	}
	if !strings.Contains(c, "} else {") {
		t.Fatalf("missing else:\n%s", c)
	}
}

func TestEmit_ClassLayoutConstructorAndMethod(t *testing.T) {
	t.Parallel()
	src := `
class Point {
	x: Float = 0;
	y: Float = 0;
	func dist() => sqrt(this.x * this.x + this.y * this.y);
}
main { p = new Point(); p.x = 3.0; print p.dist(); }`
	c := emit(t, src, nil)
	for _, want := range []string{
		"double x;",
		"double y;",
		"} Point;",
		"static Point* new_Point(void) {",
		"calloc(1, sizeof(Point))",
		"static double Point_dist(Point* self) {",
		"Point_dist(p)",
		"p->x = 3;",
	} {
		if !strings.Contains(c, want) {
			t.Fatalf("missing %q in:\n%s", want, c)
		}
	}
}

func TestEmit_RangeForDefaultsStepToOne(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { for i in range(1, 4) print i; }`, nil)
	if !strings.Contains(c, "for (int i = 1; i < 4; i += 1) {") {
		t.Fatalf("missing range loop:\n%s", c)
	}
}

func TestEmit_TryCatchUsesSetjmp(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { try { throw "ValidationError: bad"; } catch (e) { print e; } }`, nil)
	for _, want := range []string{
		"jmp_buf _try_stack[32];",
		"char _error_message[1024];",
		"int _try_slot = _try_depth++;",
		"if (setjmp(_try_stack[_try_slot]) == 0) {",
		`snprintf(_error_message, sizeof(_error_message), "%s", "ValidationError: bad");`,
		"longjmp(_try_stack[_try_depth - 1], 1);",
		"_extract_error_type();",
		"const char* e = _error_message;",
		`printf("%s\n", e);`,
	} {
		if !strings.Contains(c, want) {
			t.Fatalf("missing %q in:\n%s", want, c)
		}
	}
}

func TestEmit_TypedCatchRoutesOnPrefix(t *testing.T) {
	t.Parallel()
	src := `
main {
	try {
		throw "ValidationError: bad";
	} catch (e: ValidationError) {
		print "caught";
	} catch (other) {
		print "other";
	}
}`
	c := emit(t, src, nil)
	if !strings.Contains(c, `strcmp(_error_type, "ValidationError") == 0`) {
		t.Fatalf("missing typed routing:\n%s", c)
	}
}

func TestEmit_FinallySetsSentinel(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { try { print 1; } catch (e) { print e; } finally { print 2; } }`, nil)
	if !strings.Contains(c, "finally_executed = true;") {
		t.Fatalf("missing finally sentinel:\n%s", c)
	}
}

func TestEmit_StringConcatCoercesNumerics(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { n = 5; print "n=" + n; }`, nil)
	if !strings.Contains(c, `concat_any("n=", to_string((double)(n)))`) {
		t.Fatalf("missing coerced concat:\n%s", c)
	}
}

func TestEmit_LambdaIsHoisted(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { f = (x: Int) => x + 1; print f(3); }`, nil)
	if !strings.Contains(c, "static int _lambda_0(int x) {") {
		t.Fatalf("missing hoisted lambda:\n%s", c)
	}
	if !strings.Contains(c, "int (*f)(int) = _lambda_0;") {
		t.Fatalf("missing function-pointer binding:\n%s", c)
	}
}

func TestEmit_ComposeWrapper(t *testing.T) {
	t.Parallel()
	src := `
func inc(x: Int) -> Int { return x + 1; }
func dbl(x: Int) -> Int { return x * 2; }
main { h = inc >> dbl; print h(5); }`
	c := emit(t, src, nil)
	if !strings.Contains(c, "static int compose_0(int a0) {") {
		t.Fatalf("missing compose wrapper:\n%s", c)
	}
	if !strings.Contains(c, "return dbl(inc(a0));") {
		t.Fatalf("compose must call g(f(x)):\n%s", c)
	}
}

func TestEmit_ModuleAliasAndQualifiedCall(t *testing.T) {
	t.Parallel()
	src := `
import math_lib as m;
main { print m.multiply(4, 5); }`
	c := emit(t, src, map[string][]string{"math_lib": {"multiply", "add"}})
	for _, want := range []string{
		"} math_lib_Module;",
		"extern int math_lib_multiply();",
		"#define m_multiply math_lib_multiply",
		"math_lib_multiply(0, 4, 5)",
	} {
		if !strings.Contains(c, want) {
			t.Fatalf("missing %q in:\n%s", want, c)
		}
	}
}

func TestEmit_SelectiveImportDefinesAliases(t *testing.T) {
	t.Parallel()
	src := `
from strings import upper as up;
main { print up("x"); }`
	c := emit(t, src, map[string][]string{"strings": {"upper"}})
	if !strings.Contains(c, "#define up strings_upper") {
		t.Fatalf("missing selective alias:\n%s", c)
	}
	if !strings.Contains(c, `strings_upper(0, "x")`) {
		t.Fatalf("selective call must use the mangled name:\n%s", c)
	}
}

func TestEmit_SwitchPreservesPassthrough(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { x = 1; switch (x) { case 1: print 1; case 2: print 2; break; } }`, nil)
	first := strings.Index(c, "case 1:")
	second := strings.Index(c, "case 2:")
	if first < 0 || second < 0 {
		t.Fatalf("missing cases:\n%s", c)
	}
	between := c[first:second]
	if strings.Contains(between, "break;") {
		t.Fatalf("case 1 must fall through:\n%s", between)
	}
	after := c[second:]
	if !strings.Contains(after, "break;") {
		t.Fatalf("case 2 must break:\n%s", after)
	}
}

func TestEmit_PolymorphicDispatchUsesTypeTag(t *testing.T) {
	t.Parallel()
	src := `
class Shape {
	side: Float = 1.0;
	func area() => 0.0;
}
class Circle extends Shape {
	radius: Float = 1.0;
	func area() => 3.14159 * this.radius * this.radius;
}
func total(s: Shape) -> Float { return s.area(); }
main {
	c = new Circle();
	print total(c);
}`
	c := emit(t, src, nil)
	for _, want := range []string{
		"int type;",
		"self->type = 1;",
		"self->type = 2;",
		"static double Shape_area_dispatch(Shape* self) {",
		"switch (self->type) {",
		"Circle_area((Circle*)self)",
		"Shape_area_dispatch(s)",
	} {
		if !strings.Contains(c, want) {
			t.Fatalf("missing %q in:\n%s", want, c)
		}
	}
	if strings.Contains(c, "vtable") {
		t.Fatalf("no vtable should be generated:\n%s", c)
	}
}

func TestEmit_PreambleHelpers(t *testing.T) {
	t.Parallel()
	c := emit(t, `main { print 1; }`, nil)
	for _, want := range []string{
		"#include <stdio.h>",
		"#include <setjmp.h>",
		"#include <stdbool.h>",
		"#define TRUE true",
		"static const char* to_string(double v) {",
		"static const char* concat_any(const char* a, const char* b) {",
	} {
		if !strings.Contains(c, want) {
			t.Fatalf("missing %q in:\n%s", want, c)
		}
	}
}

// valid L can under-apply a function; there is no C lowering for the
// curried value, so the emitter must abort rather than emit a broken unit
func TestEmit_PartialApplicationAborts(t *testing.T) {
	t.Parallel()
	src := `
func add(a: Int, b: Int, c: Int) -> Int { return a + b + c; }
main {
	f = add(1);
	g = f(2);
	print g(3);
}`
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	chk := typecheck.New("test.l", diags)
	chk.CheckProgram(prog)
	if diags.Errors() != 0 {
		t.Fatalf("currying is valid L: %v", diags.All())
	}

	e := cgen.New("test.l", chk.Classes(), diags)
	err := e.Emit(prog, filepath.Join(t.TempDir(), "out.c"))
	if !errors.Is(err, cerrs.ErrEmitAborted) || !errors.Is(err, cerrs.ErrUnsupportedNode) {
		t.Fatalf("expected ErrEmitAborted wrapping ErrUnsupportedNode, got %v", err)
	}
}

func TestEmit_AbortsOnBadOutputPath(t *testing.T) {
	t.Parallel()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte("main { print 1; }"), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	chk := typecheck.New("test.l", diags)
	chk.CheckProgram(prog)
	e := cgen.New("test.l", chk.Classes(), diags)
	if err := e.Emit(prog, filepath.Join(t.TempDir(), "no", "such", "dir", "out.c")); err == nil {
		t.Fatal("expected an error for an unopenable output path")
	}
}
