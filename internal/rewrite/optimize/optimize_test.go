// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package optimize_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/rewrite/optimize"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	lx := lexer.New("test.l", []byte(src), diags)
	prog := parser.New("test.l", lx, diags).Parse()
	if diags.Errors() != 0 {
		t.Fatalf("parse errors: %v", diags.All())
	}
	return prog
}

func optimizeSrc(t *testing.T, src string, level int) (*ast.Program, *optimize.Optimizer) {
	t.Helper()
	prog := parse(t, src)
	o := optimize.New("test.l", level, diag.NewCollector(&bytes.Buffer{}))
	out, err := o.Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	return out, o
}

func TestFold_ArithmeticNarrowest(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { x = 2 + 3 * 4; y = 1.5 * 2.0; }", 1)
	if o.Stats().Folded == 0 {
		t.Fatal("folding did not run")
	}
	x := prog.Main.Stmts[0].(*ast.VarAssign).Value.(*ast.NumberLit)
	if x.Value != 14 || x.IsFloat {
		t.Fatalf("2 + 3*4 folded to %v (float=%v), want int 14", x.Value, x.IsFloat)
	}
	y := prog.Main.Stmts[1].(*ast.VarAssign).Value.(*ast.NumberLit)
	if y.Value != 3 || !y.IsFloat {
		t.Fatalf("1.5 * 2.0 folded to %v (float=%v), want float 3", y.Value, y.IsFloat)
	}
}

func TestFold_ComparisonsAndLogic(t *testing.T) {
	t.Parallel()
	prog, _ := optimizeSrc(t, "main { a = 1 < 2; b = true && false; c = \"x\" + \"y\"; }", 1)
	if v := prog.Main.Stmts[0].(*ast.VarAssign).Value.(*ast.BoolLit); !v.Value {
		t.Fatal("1 < 2 must fold to true")
	}
	if v := prog.Main.Stmts[1].(*ast.VarAssign).Value.(*ast.BoolLit); v.Value {
		t.Fatal("true && false must fold to false")
	}
	if v := prog.Main.Stmts[2].(*ast.VarAssign).Value.(*ast.StringLit); v.Value != "xy" {
		t.Fatalf("string fold = %q", v.Value)
	}
}

func TestFold_DivisionByZeroIsLeftAlone(t *testing.T) {
	t.Parallel()
	prog, _ := optimizeSrc(t, "main { x = 1 / 0; }", 1)
	if _, ok := prog.Main.Stmts[0].(*ast.VarAssign).Value.(*ast.BinOp); !ok {
		t.Fatal("division by zero must not fold")
	}
}

func TestDeadCode_AfterReturn(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "func f() -> Int { return 1; print 2; print 3; }", 1)
	fd := prog.Decls[0].(*ast.FuncDef)
	if len(fd.Body.Stmts) != 1 {
		t.Fatalf("statements after return must be removed, %d remain", len(fd.Body.Stmts))
	}
	if o.Stats().DeadRemoved != 2 {
		t.Fatalf("dead counter = %d, want 2", o.Stats().DeadRemoved)
	}
}

func TestDeadCode_LiteralBranches(t *testing.T) {
	t.Parallel()
	prog, _ := optimizeSrc(t, `main { if (true) print "yes"; else print "no"; while (false) print "never"; }`, 1)
	text := ast.Text(prog)
	if strings.Contains(text, `"no"`) || strings.Contains(text, `"never"`) {
		t.Fatalf("literal branches not eliminated:\n%s", text)
	}
	if !strings.Contains(text, `"yes"`) {
		t.Fatalf("taken branch was lost:\n%s", text)
	}
}

func TestRedundantAssignRemoved(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { x = 1; x = x; print x; }", 2)
	for _, s := range prog.Main.Stmts {
		if va, ok := s.(*ast.VarAssign); ok {
			if id, isIdent := va.Value.(*ast.Ident); isIdent {
				if tid, tok := va.Target.(*ast.Ident); tok && tid.Name == id.Name {
					t.Fatal("x = x survived")
				}
			}
		}
	}
	if o.Stats().RedundantRemoved != 1 {
		t.Fatalf("redundant counter = %d, want 1", o.Stats().RedundantRemoved)
	}
}

func TestConstantPropagation(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { x = 5; print x + 1; }", 2)
	// x + 1 propagates to 5 + 1 and folds to 6
	pr := prog.Main.Stmts[1].(*ast.Print)
	lit, ok := pr.Value.(*ast.NumberLit)
	if !ok || lit.Value != 6 {
		t.Fatalf("propagation+fold produced %s", ast.Text(pr))
	}
	if o.Stats().Propagated == 0 {
		t.Fatal("propagation counter did not move")
	}
}

func TestCSE_HoistsRepeatedSubexpression(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { print a * b + a * b; }", 2)
	if o.Stats().CSEHoisted != 1 {
		t.Fatalf("cse counter = %d, want 1", o.Stats().CSEHoisted)
	}
	text := ast.Text(prog)
	if !strings.Contains(text, "_cse_0") {
		t.Fatalf("missing hoisted temp:\n%s", text)
	}
	if strings.Count(text, "(a * b)") != 1 {
		t.Fatalf("subexpression should survive only in the temp decl:\n%s", text)
	}
}

func TestScopeNarrowing(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { x: Int = 1; { print x; } print 0; }", 2)
	if o.Stats().Narrowed != 1 {
		t.Fatalf("narrow counter = %d, want 1", o.Stats().Narrowed)
	}
	blk, ok := prog.Main.Stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected the nested block first, got %T", prog.Main.Stmts[0])
	}
	if _, ok := blk.Stmts[0].(*ast.VarDecl); !ok {
		t.Fatalf("declaration was not moved into the block: %s", ast.Text(prog))
	}
}

func TestLevelZeroDisablesEverything(t *testing.T) {
	t.Parallel()
	prog, o := optimizeSrc(t, "main { x = 1 + 2; }", 0)
	if _, ok := prog.Main.Stmts[0].(*ast.VarAssign).Value.(*ast.BinOp); !ok {
		t.Fatal("level 0 must not fold")
	}
	if o.Stats().Folded != 0 {
		t.Fatal("level 0 counters must stay zero")
	}
}

func TestPassesAreIdempotent(t *testing.T) {
	t.Parallel()
	prog, _ := optimizeSrc(t, "main { x = 2 + 3; if (false) print 1; print x; }", 2)
	text1 := ast.Text(prog)

	o2 := optimize.New("test.l", 2, diag.NewCollector(&bytes.Buffer{}))
	prog2, err := o2.Rewrite(prog)
	if err != nil {
		t.Fatal(err)
	}
	if text2 := ast.Text(prog2); text1 != text2 {
		t.Fatalf("second run changed the tree:\nfirst:\n%s\nsecond:\n%s", text1, text2)
	}
}
