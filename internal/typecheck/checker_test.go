// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package typecheck_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/typecheck"
	"github.com/playbymail/lc/internal/types"
)

func check(t *testing.T, src string) (*ast.Program, *typecheck.Checker, *diag.Collector) {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	chk := typecheck.New("test.l", diags)
	chk.CheckProgram(prog)
	return prog, chk, diags
}

func mainExprType(t *testing.T, prog *ast.Program, i int) *types.Type {
	t.Helper()
	switch s := prog.Main.Stmts[i].(type) {
	case *ast.Print:
		return s.Value.InferredType()
	case *ast.ExprStmt:
		return s.X.InferredType()
	case *ast.VarAssign:
		return s.Value.InferredType()
	}
	t.Fatalf("statement %d is %T", i, prog.Main.Stmts[i])
	return nil
}

func TestInfer_Literals(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `main { print 42; print 3.5; print "hi"; print true; print null; }`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	wants := []types.Kind{types.Int, types.Float, types.String, types.Bool, types.Null}
	for i, want := range wants {
		if got := mainExprType(t, prog, i); got.Kind != want {
			t.Fatalf("stmt %d: %s, want %s", i, got, want)
		}
	}
}

func TestInfer_ArithmeticNarrowest(t *testing.T) {
	t.Parallel()
	prog, _, _ := check(t, `main { print 1 + 2; print 1 + 2.5; print 2.5 * 2.5; print "n=" + 1; }`)
	wants := []types.Kind{types.Int, types.Float, types.Float, types.String}
	for i, want := range wants {
		if got := mainExprType(t, prog, i); got.Kind != want {
			t.Fatalf("stmt %d: %s, want %s", i, got, want)
		}
	}
}

func TestInfer_ComparisonAndLogicalAreBool(t *testing.T) {
	t.Parallel()
	prog, _, _ := check(t, `main { print 1 < 2; print 1 == 2; print true && false; }`)
	for i := 0; i < 3; i++ {
		if got := mainExprType(t, prog, i); got.Kind != types.Bool {
			t.Fatalf("stmt %d: %s, want Bool", i, got)
		}
	}
}

func TestInfer_IsIdempotent(t *testing.T) {
	t.Parallel()
	prog, chk, _ := check(t, `main { print 1 + 2; }`)
	val := prog.Main.Stmts[0].(*ast.Print).Value
	first := chk.Infer(val)
	second := chk.Infer(val)
	if first != second {
		t.Fatalf("Infer not stable: %p vs %p", first, second)
	}
}

func TestInfer_UnresolvedIdentifierWarnsAndDegrades(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `main { print mystery; }`)
	if got := mainExprType(t, prog, 0); got.Kind != types.Unknown {
		t.Fatalf("unresolved name: %s, want Unknown", got)
	}
	if diags.Warnings() == 0 {
		t.Fatal("expected a warning for the unresolved name")
	}
	if diags.Errors() != 0 {
		t.Fatalf("unresolved names must not be errors: %v", diags.All())
	}
}

func TestInfer_MemberOnClassChain(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `
class Shape { name: String = "shape"; }
class Circle extends Shape { radius: Float = 1.0; }
main {
	c = new Circle();
	print c.radius;
	print c.name;
}`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	if got := mainExprType(t, prog, 1); got.Kind != types.Float {
		t.Fatalf("c.radius: %s, want Float", got)
	}
	if got := mainExprType(t, prog, 2); got.Kind != types.String {
		t.Fatalf("inherited c.name: %s, want String", got)
	}
}

func TestInfer_MissingMemberIsError(t *testing.T) {
	t.Parallel()
	_, _, diags := check(t, `
class P { x: Int = 0; }
main { p = new P(); print p.missing; }`)
	if diags.Errors() == 0 {
		t.Fatal("expected an error for the missing member")
	}
}

func TestInfer_CurriedCall(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `
func add(a: Int, b: Int, c: Int) -> Int { return a + b + c; }
main {
	f = add(1);
	g = f(2);
	print g(3);
}`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	f := mainExprType(t, prog, 0)
	if f.Kind != types.Curried || f.Applied != 1 {
		t.Fatalf("add(1): %s, want curried applied 1", f)
	}
	g := mainExprType(t, prog, 1)
	if g.Kind != types.Curried || g.Applied != 2 {
		t.Fatalf("f(2): %s, want curried applied 2", g)
	}
	if got := mainExprType(t, prog, 2); got.Kind != types.Int {
		t.Fatalf("g(3): %s, want Int", got)
	}
}

func TestInfer_Compose(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `
func inc(x: Int) -> Int { return x + 1; }
func half(x: Int) -> Float { return x / 2.0; }
main { h = inc >> half; }`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	h := mainExprType(t, prog, 0)
	if h.Kind != types.Function || len(h.Params) != 1 || h.Params[0].Kind != types.Int || h.Return.Kind != types.Float {
		t.Fatalf("inc >> half: %s", h)
	}
}

func TestInfer_ComposeMismatchIsError(t *testing.T) {
	t.Parallel()
	_, _, diags := check(t, `
func name(x: Int) -> String { return "x"; }
func inc(x: Int) -> Int { return x + 1; }
main { h = name >> inc; }`)
	if diags.Errors() == 0 {
		t.Fatal("expected an error: String does not feed Int")
	}
}

func TestInfer_LambdaFromBody(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `main { f = (x: Int) => x * 2; }`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	f := mainExprType(t, prog, 0)
	if f.Kind != types.Lambda || f.Return.Kind != types.Int {
		t.Fatalf("lambda: %s, want Lambda returning Int", f)
	}
}

func TestInfer_LambdaCaptureIsRejected(t *testing.T) {
	t.Parallel()
	_, _, diags := check(t, `
func outer(y: Int) -> Int {
	f = (x: Int) => x + y;
	return f(1);
}`)
	found := false
	for _, d := range diags.All() {
		if d.Severity == diag.Error && strings.Contains(d.Message, "captures") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a capture error, got %v", diags.All())
	}
}

func TestInfer_ArrayLiterals(t *testing.T) {
	t.Parallel()
	prog, _, diags := check(t, `main { a = [1, 2, 3]; b = [1, 2.5]; c = []; }`)
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	a := mainExprType(t, prog, 0)
	if a.Kind != types.Array || a.Elem.Kind != types.Int {
		t.Fatalf("[1,2,3]: %s", a)
	}
	b := mainExprType(t, prog, 1)
	if b.Kind != types.Array || b.Elem.Kind != types.Float {
		t.Fatalf("[1,2.5]: %s", b)
	}
	c := mainExprType(t, prog, 2)
	if c.Kind != types.Array || c.Elem.Kind != types.Unknown {
		t.Fatalf("[]: %s", c)
	}
}

func TestInfer_NewChecksConstructorArity(t *testing.T) {
	t.Parallel()
	_, _, diags := check(t, `
class P {
	x: Int = 0;
	func init(x: Int) { this.x = x; }
}
main { p = new P(); }`)
	if diags.Errors() == 0 {
		t.Fatal("expected an arity error for new P()")
	}
}

func TestCheck_TypeErrorsDoNotHalt(t *testing.T) {
	t.Parallel()
	_, _, diags := check(t, `main { x = 1 - "s"; y = x + 1; print y; }`)
	if diags.Errors() == 0 {
		t.Fatal("expected an operand error")
	}
	// downstream inference proceeded despite the earlier error
	if diags.Errors() > 2 {
		t.Fatalf("error cascade: %v", diags.All())
	}
}
