// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package typecheck

import (
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/tokens"
	"github.com/playbymail/lc/internal/types"
)

// builtins are the functions the emitted C preamble provides.
var builtins = map[string]*types.Type{
	"sqrt":          types.NewFunction([]*types.Type{types.FloatType}, types.FloatType),
	"abs":           types.NewFunction([]*types.Type{types.FloatType}, types.FloatType),
	"pow":           types.NewFunction([]*types.Type{types.FloatType, types.FloatType}, types.FloatType),
	"len":           types.NewFunction([]*types.Type{types.UnknownType}, types.IntType),
	"to_string":     types.NewFunction([]*types.Type{types.FloatType}, types.StringType),
	"string_concat": types.NewFunction([]*types.Type{types.StringType, types.StringType}, types.StringType),
}

// Infer annotates the expression (and transitively its subtree) with a type
// and returns it. The result is cached on the node, so Infer is idempotent
// and stable.
func (c *Checker) Infer(e ast.Expr) *types.Type {
	if e == nil {
		return types.UnknownType
	}
	if t := e.InferredType(); t != nil {
		return t
	}
	t := c.inferUncached(e)
	if t == nil {
		t = types.UnknownType
	}
	e.SetInferredType(t)
	return t
}

// Check infers the node and reports an incompatibility if the result is not
// assignment-compatible with expected.
func (c *Checker) Check(e ast.Expr, expected *types.Type) *types.Type {
	got := c.Infer(e)
	if !types.AssignableTo(got, expected) {
		pos := e.NodePos()
		c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "expected %s, found %s", expected, got)
	}
	return got
}

func (c *Checker) inferUncached(e ast.Expr) *types.Type {
	switch n := e.(type) {
	case *ast.NumberLit:
		if n.IsFloat {
			return types.FloatType
		}
		return types.IntType
	case *ast.StringLit:
		return types.StringType
	case *ast.BoolLit:
		return types.BoolType
	case *ast.NullLit:
		return types.NullType
	case *ast.Ident:
		return c.inferIdent(n)
	case *ast.BinOp:
		xt := c.Infer(n.X)
		yt := c.Infer(n.Y)
		return c.checkBinOpTypes(n.Op, xt, yt, n.Pos)
	case *ast.UnOp:
		return c.inferUnOp(n)
	case *ast.Call:
		return c.inferCall(n)
	case *ast.Member:
		return c.inferMember(n)
	case *ast.Index:
		xt := c.Infer(n.X)
		c.Check(n.Idx, types.IntType)
		if xt.Kind == types.Array {
			return xt.Elem
		}
		if xt.Kind != types.Unknown {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot index %s", xt)
		}
		return types.UnknownType
	case *ast.ArrayLit:
		if len(n.Elems) == 0 {
			return types.NewArray(types.UnknownType)
		}
		elem := c.Infer(n.Elems[0])
		for _, el := range n.Elems[1:] {
			elem = types.CommonType(elem, c.Infer(el))
		}
		return types.NewArray(elem)
	case *ast.Lambda:
		return c.inferLambda(n)
	case *ast.Compose:
		return c.inferCompose(n)
	case *ast.Curry:
		ft := c.Infer(n.Fn)
		if !ft.IsCallable() {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot curry %s", ft)
			return types.UnknownType
		}
		for _, a := range n.Args {
			c.Infer(a)
		}
		return types.NewCurried(ft, len(n.Args))
	case *ast.New:
		return c.inferNew(n)
	case *ast.This:
		if c.class == nil {
			c.diags.Errorf(diag.Semantic, c.path, n.Pos.Line, n.Pos.Col, "this outside of a method")
			return types.UnknownType
		}
		return c.class
	}
	return types.UnknownType
}

func (c *Checker) inferIdent(n *ast.Ident) *types.Type {
	sym, ok := c.symbols.Lookup(n.Name)
	if !ok {
		if bt, isBuiltin := builtins[n.Name]; isBuiltin {
			return bt
		}
		if cls, isClass := c.classes[n.Name]; isClass {
			return cls
		}
		if _, isModule := c.Modules[n.Name]; isModule {
			// module references only make sense as the left side of a
			// member access; Object marks them for inferMember
			return types.ObjectType
		}
		c.diags.Warnf(diag.Name, c.path, n.Pos.Line, n.Pos.Col, "unresolved name %s", n.Name)
		return types.UnknownType
	}
	// inside a lambda body, outer locals cannot be captured: the lambda is
	// hoisted to a static C function with no environment
	if len(c.lambdaBounds) > 0 {
		bound := c.lambdaBounds[len(c.lambdaBounds)-1]
		if sym.Depth > 0 && sym.Depth < bound {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "lambda captures outer variable %s", n.Name)
		}
	}
	return sym.Type
}

func (c *Checker) inferUnOp(n *ast.UnOp) *types.Type {
	xt := c.Infer(n.X)
	switch n.Op {
	case ast.OpNot:
		if xt.Kind != types.Bool && xt.Kind != types.Unknown {
			c.diags.Warnf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "operand of ! is %s, not Bool", xt)
		}
		return types.BoolType
	case ast.OpNeg:
		if !xt.IsNumeric() && xt.Kind != types.Unknown {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot negate %s", xt)
			return types.UnknownType
		}
		return xt
	case ast.OpStringify:
		return types.StringType
	}
	return types.UnknownType
}

// checkBinOpTypes applies the operator rules: + concatenates when either
// side is a string, arithmetic takes the common numeric type, comparisons
// and logicals yield Bool.
func (c *Checker) checkBinOpTypes(op byte, xt, yt *types.Type, pos tokens.Position) *types.Type {
	switch {
	case op == ast.OpAdd:
		if xt.Kind == types.String || yt.Kind == types.String {
			return types.StringType
		}
		return c.arith(op, xt, yt, pos)
	case ast.IsArithmetic(op):
		return c.arith(op, xt, yt, pos)
	case ast.IsComparison(op):
		if !types.AssignableTo(xt, yt) && !types.AssignableTo(yt, xt) {
			c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "cannot compare %s with %s", xt, yt)
		}
		return types.BoolType
	case ast.IsLogical(op):
		if xt.Kind != types.Bool && xt.Kind != types.Unknown || yt.Kind != types.Bool && yt.Kind != types.Unknown {
			c.diags.Warnf(diag.Type, c.path, pos.Line, pos.Col, "logical operands should be Bool, found %s and %s", xt, yt)
		}
		return types.BoolType
	case op == ast.OpBitAnd || op == ast.OpBitOr || op == ast.OpBitXor:
		if xt.Kind != types.Int && xt.Kind != types.Unknown || yt.Kind != types.Int && yt.Kind != types.Unknown {
			c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "bitwise operands must be Int, found %s and %s", xt, yt)
		}
		return types.IntType
	case op == ast.OpRange:
		c.checkNumeric(xt, pos)
		c.checkNumeric(yt, pos)
		return types.NewArray(types.IntType)
	}
	return types.UnknownType
}

func (c *Checker) arith(op byte, xt, yt *types.Type, pos tokens.Position) *types.Type {
	if !c.checkNumeric(xt, pos) || !c.checkNumeric(yt, pos) {
		return types.UnknownType
	}
	return types.CommonType(xt, yt)
}

func (c *Checker) checkNumeric(t *types.Type, pos tokens.Position) bool {
	if t.Kind == types.Unknown {
		return true
	}
	if !t.IsNumeric() {
		c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "numeric operand required, found %s", t)
		return false
	}
	return true
}

// inferCall handles plain calls, under-application of curried values, and
// arity/argument checking against the callee's signature.
func (c *Checker) inferCall(n *ast.Call) *types.Type {
	ft := c.Infer(n.Callee)
	for _, a := range n.Args {
		c.Infer(a)
	}
	if ft.Kind == types.Unknown {
		return types.UnknownType
	}
	if !ft.IsCallable() {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot call %s", ft)
		return types.UnknownType
	}

	remaining := ft.Arity()
	if len(n.Args) < remaining {
		// partial application: the result is a curried value
		return types.NewCurried(ft, len(n.Args))
	}
	if len(n.Args) > remaining {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "too many arguments: %d, want %d", len(n.Args), remaining)
	}

	params := ft.Params
	offset := 0
	if ft.Kind == types.Curried {
		params = ft.Underlying.Params
		offset = ft.Applied
	}
	for i, a := range n.Args {
		if offset+i >= len(params) {
			break
		}
		if got := c.Infer(a); !types.AssignableTo(got, params[offset+i]) {
			pos := a.NodePos()
			c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "argument %d is %s, want %s", i+1, got, params[offset+i])
		}
	}

	if ft.Kind == types.Curried {
		return ft.Underlying.Return
	}
	return ft.Return
}

func (c *Checker) inferMember(n *ast.Member) *types.Type {
	// module-qualified reference: mod.f
	if id, ok := n.X.(*ast.Ident); ok {
		if exports, isModule := c.Modules[id.Name]; isModule {
			if _, shadowed := c.symbols.Lookup(id.Name); !shadowed {
				id.SetInferredType(types.ObjectType)
				if t, found := exports[n.Name]; found {
					return t
				}
				c.diags.Errorf(diag.Name, c.path, n.Pos.Line, n.Pos.Col, "module %s has no export %s", id.Name, n.Name)
				return types.UnknownType
			}
		}
	}

	xt := c.Infer(n.X)
	if xt.Kind == types.Unknown {
		return types.UnknownType
	}
	if xt.Kind != types.Class {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "%s has no members", xt)
		return types.UnknownType
	}
	if ft, ok := xt.FieldType(n.Name); ok {
		return ft
	}
	if mt, ok := xt.MethodType(n.Name); ok {
		return mt
	}
	c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "%s has no member %s", xt.Name, n.Name)
	return types.UnknownType
}

func (c *Checker) inferLambda(n *ast.Lambda) *types.Type {
	params := make([]*types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = c.resolveTypeName(p.TypeName)
	}

	c.symbols.EnterScope()
	c.lambdaBounds = append(c.lambdaBounds, c.symbols.Depth())
	defer func() {
		c.lambdaBounds = c.lambdaBounds[:len(c.lambdaBounds)-1]
		c.symbols.ExitScope()
	}()
	for i, p := range n.Params {
		if err := c.symbols.Add(p.Name, params[i]); err != nil {
			c.diags.Errorf(diag.Name, c.path, p.Pos.Line, p.Pos.Col, "redeclaration of parameter %s", p.Name)
		}
	}

	ret := c.resolveTypeName(n.ReturnName)
	if n.ExprBody != nil {
		got := c.Infer(n.ExprBody)
		if n.ReturnName == "" {
			ret = got
		}
	} else if n.Body != nil {
		got := c.checkBlock(n.Body, false)
		if n.ReturnName == "" {
			if got != nil {
				ret = got
			} else {
				ret = types.VoidType
			}
		}
	}
	return types.NewLambda(params, ret)
}

// inferCompose checks f >> g: both sides callable, f's return feeding g's
// first parameter. The result takes f's parameters and g's return.
func (c *Checker) inferCompose(n *ast.Compose) *types.Type {
	ft := c.Infer(n.F)
	gt := c.Infer(n.G)
	if ft.Kind == types.Unknown || gt.Kind == types.Unknown {
		return types.UnknownType
	}
	if !ft.IsCallable() || !gt.IsCallable() {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "compose requires functions, found %s and %s", ft, gt)
		return types.UnknownType
	}
	if len(gt.Params) != 1 {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "right side of >> must take one argument, takes %d", len(gt.Params))
		return types.UnknownType
	}
	if !types.AssignableTo(ft.Return, gt.Params[0]) {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "compose mismatch: %s feeds %s", ft.Return, gt.Params[0])
	}
	return types.NewFunction(append([]*types.Type(nil), ft.Params...), gt.Return)
}

func (c *Checker) inferNew(n *ast.New) *types.Type {
	cls, ok := c.classes[n.ClassName]
	if !ok {
		c.diags.Errorf(diag.Name, c.path, n.Pos.Line, n.Pos.Col, "unknown class %s", n.ClassName)
		return types.UnknownType
	}
	for _, a := range n.Args {
		c.Infer(a)
	}
	if ctor, found := cls.MethodType("init"); found {
		if len(n.Args) != len(ctor.Params) {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "%s constructor takes %d arguments, found %d", n.ClassName, len(ctor.Params), len(n.Args))
		} else {
			for i, a := range n.Args {
				if got := c.Infer(a); !types.AssignableTo(got, ctor.Params[i]) {
					pos := a.NodePos()
					c.diags.Errorf(diag.Type, c.path, pos.Line, pos.Col, "constructor argument %d is %s, want %s", i+1, got, ctor.Params[i])
				}
			}
		}
	} else if len(n.Args) > 0 {
		c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "%s has no constructor but %d arguments given", n.ClassName, len(n.Args))
	}
	return cls
}
