// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package optimize

import (
	"fmt"

	"github.com/playbymail/lc/internal/ast"
)

// fold evaluates binary and unary operations over literal operands.
func (o *Optimizer) fold(prog *ast.Program) {
	ast.TransformExpr(prog, func(e ast.Expr) ast.Expr {
		switch n := e.(type) {
		case *ast.BinOp:
			if out := foldBinOp(n); out != nil {
				o.stats.Folded++
				return out
			}
		case *ast.UnOp:
			if out := foldUnOp(n); out != nil {
				o.stats.Folded++
				return out
			}
		}
		return e
	})
}

func foldBinOp(n *ast.BinOp) ast.Expr {
	if xs, ok := n.X.(*ast.StringLit); ok && n.Op == ast.OpAdd {
		if ys, isStr := n.Y.(*ast.StringLit); isStr {
			return &ast.StringLit{Meta: ast.Meta{Pos: n.Pos}, Value: xs.Value + ys.Value}
		}
	}
	if xb, ok := n.X.(*ast.BoolLit); ok && ast.IsLogical(n.Op) {
		if yb, isBool := n.Y.(*ast.BoolLit); isBool {
			v := xb.Value && yb.Value
			if n.Op == ast.OpOr {
				v = xb.Value || yb.Value
			}
			return &ast.BoolLit{Meta: ast.Meta{Pos: n.Pos}, Value: v}
		}
	}
	xn, ok := n.X.(*ast.NumberLit)
	if !ok {
		return nil
	}
	yn, ok := n.Y.(*ast.NumberLit)
	if !ok {
		return nil
	}
	isFloat := xn.IsFloat || yn.IsFloat
	switch n.Op {
	case ast.OpAdd:
		return numberLit(n, xn.Value+yn.Value, isFloat)
	case ast.OpSub:
		return numberLit(n, xn.Value-yn.Value, isFloat)
	case ast.OpMul:
		return numberLit(n, xn.Value*yn.Value, isFloat)
	case ast.OpDiv:
		if yn.Value == 0 {
			return nil
		}
		if !isFloat {
			return numberLit(n, float64(int64(xn.Value)/int64(yn.Value)), false)
		}
		return numberLit(n, xn.Value/yn.Value, true)
	case ast.OpLt:
		return boolLit(n, xn.Value < yn.Value)
	case ast.OpGt:
		return boolLit(n, xn.Value > yn.Value)
	case ast.OpLe:
		return boolLit(n, xn.Value <= yn.Value)
	case ast.OpGe:
		return boolLit(n, xn.Value >= yn.Value)
	case ast.OpEq:
		return boolLit(n, xn.Value == yn.Value)
	case ast.OpNe:
		return boolLit(n, xn.Value != yn.Value)
	}
	return nil
}

func foldUnOp(n *ast.UnOp) ast.Expr {
	switch x := n.X.(type) {
	case *ast.NumberLit:
		if n.Op == ast.OpNeg {
			return numberLit(n, -x.Value, x.IsFloat)
		}
	case *ast.BoolLit:
		if n.Op == ast.OpNot {
			return boolLit(n, !x.Value)
		}
	}
	return nil
}

func numberLit(at ast.Expr, v float64, isFloat bool) *ast.NumberLit {
	return &ast.NumberLit{Meta: ast.Meta{Pos: at.NodePos()}, Value: v, IsFloat: isFloat}
}

func boolLit(at ast.Expr, v bool) *ast.BoolLit {
	return &ast.BoolLit{Meta: ast.Meta{Pos: at.NodePos()}, Value: v}
}

// deadCode removes statements after a return or throw in the same block
// and branches whose condition is a literal.
func (o *Optimizer) deadCode(prog *ast.Program) {
	ast.TransformStmts(prog, func(s ast.Stmt) ([]ast.Stmt, bool) {
		switch n := s.(type) {
		case *ast.If:
			if b, ok := n.Cond.(*ast.BoolLit); ok {
				o.stats.DeadRemoved++
				if b.Value {
					return []ast.Stmt{n.Then}, true
				}
				if n.Else != nil {
					return []ast.Stmt{n.Else}, true
				}
				return nil, true
			}
		case *ast.While:
			if b, ok := n.Cond.(*ast.BoolLit); ok && !b.Value {
				o.stats.DeadRemoved++
				return nil, true
			}
		}
		return nil, false
	})

	blocks(prog, func(stmts *[]ast.Stmt) {
		for i, s := range *stmts {
			switch s.(type) {
			case *ast.Return, *ast.Throw:
				if i+1 < len(*stmts) {
					o.stats.DeadRemoved += len(*stmts) - i - 1
					*stmts = (*stmts)[:i+1]
				}
				return
			}
		}
	})
}

// redundantAssign drops x = x assignments.
func (o *Optimizer) redundantAssign(prog *ast.Program) {
	ast.TransformStmts(prog, func(s ast.Stmt) ([]ast.Stmt, bool) {
		va, ok := s.(*ast.VarAssign)
		if !ok || va.Op != 0 {
			return nil, false
		}
		tid, ok := va.Target.(*ast.Ident)
		if !ok {
			return nil, false
		}
		vid, ok := va.Value.(*ast.Ident)
		if !ok || tid.Name != vid.Name {
			return nil, false
		}
		o.stats.RedundantRemoved++
		return nil, true
	})
}

// propagate replaces identifier uses with literal values within
// straight-line code. Any control flow or non-literal reassignment drops
// the binding.
func (o *Optimizer) propagate(prog *ast.Program) {
	blocks(prog, func(stmts *[]ast.Stmt) {
		known := make(map[string]ast.Expr)
		for _, s := range *stmts {
			switch n := s.(type) {
			case *ast.VarDecl:
				o.substKnown(s, known, nil)
				if isLiteral(n.Init) {
					known[n.Name] = n.Init
				} else {
					delete(known, n.Name)
				}
			case *ast.VarAssign:
				target, isIdent := n.Target.(*ast.Ident)
				o.substKnown(s, known, target)
				if isIdent && n.Op == 0 && isLiteral(n.Value) {
					known[target.Name] = n.Value
				} else if isIdent {
					delete(known, target.Name)
				}
			case *ast.Print, *ast.ExprStmt, *ast.Return, *ast.Throw:
				o.substKnown(s, known, nil)
			default:
				// control flow: stop trusting the straight-line facts
				known = make(map[string]ast.Expr)
			}
		}
	})
}

// substKnown rewrites identifier uses from the known-literals map, leaving
// the assignment target alone.
func (o *Optimizer) substKnown(s ast.Stmt, known map[string]ast.Expr, skip *ast.Ident) {
	ast.TransformExpr(s, func(e ast.Expr) ast.Expr {
		id, ok := e.(*ast.Ident)
		if !ok || id == skip {
			return e
		}
		if lit, found := known[id.Name]; found {
			o.stats.Propagated++
			return ast.CloneExpr(lit)
		}
		return e
	})
}

func isLiteral(e ast.Expr) bool {
	switch e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit:
		return true
	}
	return false
}

// cse hoists a repeated pure subexpression within one statement into a
// temporary declared just before it.
func (o *Optimizer) cse(prog *ast.Program) {
	blocks(prog, func(stmts *[]ast.Stmt) {
		var out []ast.Stmt
		for _, s := range *stmts {
			switch s.(type) {
			case *ast.Print, *ast.ExprStmt, *ast.VarAssign, *ast.Return:
				if decl, repl := o.hoistCommon(s); decl != nil {
					out = append(out, decl, repl)
					continue
				}
			}
			out = append(out, s)
		}
		*stmts = out
	})
}

// hoistCommon finds the first pure subtree that occurs more than once in
// the statement's expressions and rewrites the statement to use a
// temporary.
func (o *Optimizer) hoistCommon(s ast.Stmt) (ast.Stmt, ast.Stmt) {
	counts := make(map[string]int)
	var candidate ast.Expr
	ast.TransformExpr(s, func(e ast.Expr) ast.Expr {
		if isPureCompound(e) {
			key := ast.Text(e)
			counts[key]++
			if counts[key] == 2 && candidate == nil {
				candidate = e
			}
		}
		return e
	})
	if candidate == nil {
		return nil, nil
	}

	key := ast.Text(candidate)
	tmp := fmt.Sprintf("_cse_%d", o.tmpSeq)
	o.tmpSeq++
	ast.TransformExpr(s, func(e ast.Expr) ast.Expr {
		if isPureCompound(e) && ast.Text(e) == key {
			return &ast.Ident{Meta: ast.Meta{Pos: e.NodePos()}, Name: tmp}
		}
		return e
	})
	o.stats.CSEHoisted++
	decl := &ast.VarDecl{Meta: ast.Meta{Pos: s.NodePos()}, Name: tmp, Init: ast.CloneExpr(candidate)}
	return decl, s
}

// isPureCompound reports a side-effect-free subtree worth hoisting.
func isPureCompound(e ast.Expr) bool {
	pure := true
	var check func(ast.Expr)
	check = func(x ast.Expr) {
		switch n := x.(type) {
		case *ast.NumberLit, *ast.StringLit, *ast.BoolLit, *ast.NullLit, *ast.Ident, *ast.This:
		case *ast.BinOp:
			check(n.X)
			check(n.Y)
		case *ast.UnOp:
			check(n.X)
		case *ast.Member:
			check(n.X)
		case *ast.Index:
			check(n.X)
			check(n.Idx)
		default:
			pure = false
		}
	}
	switch e.(type) {
	case *ast.BinOp, *ast.Member, *ast.Index:
		check(e)
		return pure
	}
	return false
}

// narrow moves a declaration into the single nested block that uses it.
func (o *Optimizer) narrow(prog *ast.Program) {
	blocks(prog, func(stmts *[]ast.Stmt) {
		for i := 0; i < len(*stmts); i++ {
			vd, ok := (*stmts)[i].(*ast.VarDecl)
			if !ok || !isLiteral(vd.Init) && vd.Init != nil {
				continue
			}
			var usedIn []ast.Stmt
			for _, later := range (*stmts)[i+1:] {
				if usesName(later, vd.Name) {
					usedIn = append(usedIn, later)
				}
			}
			if len(usedIn) != 1 {
				continue
			}
			target, isBlock := usedIn[0].(*ast.Block)
			if !isBlock {
				continue
			}
			target.Stmts = append([]ast.Stmt{vd}, target.Stmts...)
			*stmts = append((*stmts)[:i], (*stmts)[i+1:]...)
			o.stats.Narrowed++
			i--
		}
	})
}

func usesName(s ast.Stmt, name string) bool {
	used := false
	ast.Walk(s, func(n ast.Node) {
		if id, ok := n.(*ast.Ident); ok && id.Name == name {
			used = true
		}
	})
	return used
}
