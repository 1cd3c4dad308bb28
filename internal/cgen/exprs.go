// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/types"
)

// expr renders an expression as C text.
func (e *Emitter) expr(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.NumberLit:
		if n.IsFloat {
			return strconv.FormatFloat(n.Value, 'g', -1, 64)
		}
		return strconv.FormatInt(int64(n.Value), 10)
	case *ast.StringLit:
		return strconv.Quote(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "TRUE"
		}
		return "FALSE"
	case *ast.NullLit:
		return "NULL"
	case *ast.Ident:
		return e.checkIdent(n.Name)
	case *ast.BinOp:
		return e.binOp(n)
	case *ast.UnOp:
		return fmt.Sprintf("%c(%s)", n.Op, e.expr(n.X))
	case *ast.Call:
		return e.call(n)
	case *ast.Member:
		return fmt.Sprintf("%s->%s", e.expr(n.X), n.Name)
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", e.expr(n.X), e.expr(n.Idx))
	case *ast.ArrayLit:
		return e.arrayInit(n)
	case *ast.Lambda:
		return e.lambdaNames[n]
	case *ast.Compose:
		return e.composeNames[n]
	case *ast.New:
		return e.newExpr(n)
	case *ast.This:
		return "self"
	case *ast.Curry:
		e.fail(cerrs.ErrUnsupportedNode, "partial application has no C lowering")
		return "0"
	}
	e.fail(cerrs.ErrUnsupportedNode, "cannot lower %T", x)
	return "0"
}

func (e *Emitter) arrayInit(n *ast.ArrayLit) string {
	elems := make([]string, len(n.Elems))
	for i, el := range n.Elems {
		elems[i] = e.expr(el)
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

// binOp maps the single-character discriminants back to C operators.
// String + becomes concat_any with numeric operands coerced through
// to_string; string equality becomes strcmp.
func (e *Emitter) binOp(n *ast.BinOp) string {
	t := n.InferredType()
	if n.Op == ast.OpAdd && t != nil && t.Kind == types.String {
		return fmt.Sprintf("concat_any(%s, %s)", e.cstring(n.X), e.cstring(n.Y))
	}
	if xt := n.X.InferredType(); xt != nil && xt.Kind == types.String {
		switch n.Op {
		case ast.OpEq:
			return fmt.Sprintf("(strcmp(%s, %s) == 0)", e.expr(n.X), e.expr(n.Y))
		case ast.OpNe:
			return fmt.Sprintf("(strcmp(%s, %s) != 0)", e.expr(n.X), e.expr(n.Y))
		}
	}

	var op string
	switch n.Op {
	case ast.OpEq:
		op = "=="
	case ast.OpNe:
		op = "!="
	case ast.OpGe:
		op = ">="
	case ast.OpLe:
		op = "<="
	case ast.OpAnd:
		op = "&&"
	case ast.OpOr:
		op = "||"
	case ast.OpBitAnd:
		op = "&"
	case ast.OpBitOr:
		op = "|"
	case ast.OpBitXor:
		op = "^"
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpLt, ast.OpGt:
		op = string(n.Op)
	default:
		e.fail(cerrs.ErrUnsupportedNode, "cannot lower operator %q", string(n.Op))
		op = "+"
	}
	return fmt.Sprintf("(%s %s %s)", e.expr(n.X), op, e.expr(n.Y))
}

// cstring renders an expression as a C string value, coercing numerics
// through to_string and booleans through a ternary.
func (e *Emitter) cstring(x ast.Expr) string {
	t := x.InferredType()
	kind := types.Unknown
	if t != nil {
		kind = t.Kind
	}
	switch kind {
	case types.String:
		return e.expr(x)
	case types.Int, types.Float:
		return fmt.Sprintf("to_string((double)(%s))", e.expr(x))
	case types.Bool:
		return fmt.Sprintf("(%s ? \"true\" : \"false\")", e.expr(x))
	}
	return e.expr(x)
}

// call lowers calls: qualified module calls get the mangled name and a
// leading module handle, method calls get the receiver as first argument
// (through the type-tag dispatcher when the hierarchy overrides), and
// composition or lambda callees resolve to their hoisted names.
func (e *Emitter) call(n *ast.Call) string {
	// under-application reaches here as an ordinary call whose inferred
	// type is curried; calls through a curried value are just as
	// unloweable, so both abort
	if t := n.InferredType(); t != nil && t.Kind == types.Curried {
		e.fail(cerrs.ErrUnsupportedNode, "partial application has no C lowering")
		return "0"
	}
	if ct := n.Callee.InferredType(); ct != nil && ct.Kind == types.Curried {
		e.fail(cerrs.ErrUnsupportedNode, "call through a curried value has no C lowering")
		return "0"
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.expr(a)
	}
	arglist := strings.Join(args, ", ")

	switch callee := n.Callee.(type) {
	case *ast.Member:
		// module-qualified call: mod.f(args) -> Mod_f(0, args)
		if id, ok := callee.X.(*ast.Ident); ok {
			if mod, isModule := e.moduleForAlias(id.Name); isModule {
				if arglist == "" {
					return fmt.Sprintf("%s_%s(0)", mod, callee.Name)
				}
				return fmt.Sprintf("%s_%s(0, %s)", mod, callee.Name, arglist)
			}
		}
		// method call: o.m(args) -> C_m(o, args)
		recvType := callee.X.InferredType()
		if recvType == nil || recvType.Kind != types.Class {
			e.fail(cerrs.ErrUnsupportedNode, "method call on non-class value")
			return "0"
		}
		class := recvType.Name
		recv := e.expr(callee.X)
		name := fmt.Sprintf("%s_%s", class, callee.Name)
		if len(e.overriders(class, callee.Name)) > 0 {
			name = fmt.Sprintf("%s_%s_dispatch", class, callee.Name)
		}
		if arglist == "" {
			return fmt.Sprintf("%s(%s)", name, recv)
		}
		return fmt.Sprintf("%s(%s, %s)", name, recv, arglist)
	case *ast.Ident:
		if target, ok := e.selectiveAlias(callee.Name); ok {
			if arglist == "" {
				return fmt.Sprintf("%s(0)", target)
			}
			return fmt.Sprintf("%s(0, %s)", target, arglist)
		}
		return fmt.Sprintf("%s(%s)", e.checkIdent(callee.Name), arglist)
	case *ast.Lambda:
		return fmt.Sprintf("%s(%s)", e.lambdaNames[callee], arglist)
	case *ast.Compose:
		return fmt.Sprintf("%s(%s)", e.composeNames[callee], arglist)
	}
	return fmt.Sprintf("%s(%s)", e.expr(n.Callee), arglist)
}

// newExpr lowers construction: new_C for plain classes, the create wrapper
// when the class defines an init constructor.
func (e *Emitter) newExpr(n *ast.New) string {
	cd, ok := e.classDefs[n.ClassName]
	if !ok {
		e.fail(cerrs.ErrUnsupportedNode, "new of unknown class %s", n.ClassName)
		return "NULL"
	}
	hasInit := false
	for _, m := range cd.Methods {
		if m.Name == "init" {
			hasInit = true
		}
	}
	if hasInit {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = e.expr(a)
		}
		return fmt.Sprintf("%s_create(%s)", n.ClassName, strings.Join(args, ", "))
	}
	return fmt.Sprintf("new_%s()", n.ClassName)
}
