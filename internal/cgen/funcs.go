// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import (
	"fmt"
	"strings"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/types"
)

// funcSig resolves the signature the emitter uses for a function or
// method.
func (e *Emitter) funcSig(f *ast.FuncDef, class string) *types.Type {
	sig := f.InferredType()
	if class != "" {
		sig = e.methodSignature(class, f)
	}
	if sig == nil || !sig.IsCallable() {
		sig = types.NewFunction(nil, types.VoidType)
	}
	return sig
}

// funcHeader renders the C signature for a function or method, without the
// trailing brace or semicolon.
func (e *Emitter) funcHeader(f *ast.FuncDef, class string) string {
	sig := e.funcSig(f, class)
	var header strings.Builder
	name := f.Name
	if class != "" {
		name = fmt.Sprintf("%s_%s", class, f.Name)
	}
	fmt.Fprintf(&header, "static %s %s(", e.ctype(sig.Return), e.checkIdent(name))
	first := true
	if class != "" {
		fmt.Fprintf(&header, "%s* self", class)
		first = false
	}
	for i, p := range f.Params {
		if !first {
			header.WriteString(", ")
		}
		first = false
		var pt *types.Type
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		header.WriteString(e.cdecl(pt, e.checkIdent(p.Name)))
	}
	if first {
		header.WriteString("void")
	}
	header.WriteString(")")
	return header.String()
}

// classInit returns the init constructor of a class, if any.
func (e *Emitter) classInit(name string) *ast.FuncDef {
	cd := e.classDefs[name]
	for _, m := range cd.Methods {
		if m.Name == "init" {
			return m
		}
	}
	return nil
}

// createHeader renders the signature of the C_create wrapper emitted for
// classes with an init constructor.
func (e *Emitter) createHeader(name string, init *ast.FuncDef) (header, args string) {
	sig := e.methodSignature(name, init)
	params := ""
	for i, p := range init.Params {
		var pt *types.Type
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		if i > 0 {
			params += ", "
		}
		params += e.cdecl(pt, p.Name)
		args += ", " + p.Name
	}
	if params == "" {
		params = "void"
	}
	return fmt.Sprintf("static %s* %s_create(%s)", name, name, params), args
}

// emitPrototypes forward-declares every method, dispatcher, free function,
// and create wrapper so that hoisted lambdas and out-of-order references
// compile.
func (e *Emitter) emitPrototypes(prog *ast.Program) {
	for _, name := range e.classOrder() {
		cd := e.classDefs[name]
		for _, m := range cd.Methods {
			e.line("%s;", e.funcHeader(m, name))
		}
		if init := e.classInit(name); init != nil {
			header, _ := e.createHeader(name, init)
			e.line("%s;", header)
		}
	}
	for _, name := range e.classOrder() {
		if !e.hasSubclasses(name) {
			continue
		}
		cd := e.classDefs[name]
		for _, m := range cd.Methods {
			if len(e.overriders(name, m.Name)) == 0 {
				continue
			}
			e.line("static %s;", e.dispatchHeader(name, m, e.methodSignature(name, m)))
		}
	}
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDef); ok {
			e.line("%s;", e.funcHeader(fd, ""))
		}
	}
	e.blank()
}

// emitFuncDef writes one function or method body. Methods take the
// receiver as their first parameter, named self, and are mangled
// Class_method.
func (e *Emitter) emitFuncDef(f *ast.FuncDef, class string) {
	sig := e.funcSig(f, class)

	saved := e.vars
	e.vars = make(map[string]*cvar)
	defer func() { e.vars = saved }()
	for i, p := range f.Params {
		var pt *types.Type
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		e.vars[p.Name] = &cvar{ctype: e.ctype(pt), declared: true, pointer: pt != nil && pt.Kind == types.Class}
	}

	e.line("%s {", e.funcHeader(f, class))
	e.indent++
	if f.ExprBody != nil {
		if sig.Return != nil && sig.Return.Kind == types.Void {
			e.line("%s;", e.expr(f.ExprBody))
		} else {
			e.line("return %s;", e.expr(f.ExprBody))
		}
	} else if f.Body != nil {
		for _, s := range f.Body.Stmts {
			e.stmt(s)
		}
	}
	e.indent--
	e.line("}")
	e.blank()
}

// emitLambdas hoists every lambda in the program to a uniquely named
// static function, and every composition to a compose_N wrapper. Both are
// emitted before the functions that reference them.
func (e *Emitter) emitLambdas(prog *ast.Program) {
	var lambdas []*ast.Lambda
	var composes []*ast.Compose
	ast.Walk(prog, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Lambda:
			lambdas = append(lambdas, x)
		case *ast.Compose:
			composes = append(composes, x)
		}
	})

	for _, lam := range lambdas {
		e.emitLambda(lam)
		e.stats.Lambdas++
	}
	for _, cmp := range composes {
		e.emitCompose(cmp)
		e.stats.Composes++
	}
}

func (e *Emitter) emitLambda(lam *ast.Lambda) {
	sig := lam.InferredType()
	if sig == nil || !sig.IsCallable() {
		sig = types.NewLambda(make([]*types.Type, len(lam.Params)), types.UnknownType)
	}

	saved := e.vars
	e.vars = make(map[string]*cvar)
	defer func() { e.vars = saved }()

	params := ""
	for i, p := range lam.Params {
		var pt *types.Type
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		if i > 0 {
			params += ", "
		}
		params += e.cdecl(pt, p.Name)
		e.vars[p.Name] = &cvar{ctype: e.ctype(pt), declared: true}
	}
	if params == "" {
		params = "void"
	}

	e.line("static %s %s(%s) {", e.ctype(sig.Return), e.lambdaNames[lam], params)
	e.indent++
	if lam.ExprBody != nil {
		if sig.Return != nil && sig.Return.Kind == types.Void {
			e.line("%s;", e.expr(lam.ExprBody))
		} else {
			e.line("return %s;", e.expr(lam.ExprBody))
		}
	} else if lam.Body != nil {
		for _, s := range lam.Body.Stmts {
			e.stmt(s)
		}
	}
	e.indent--
	e.line("}")
	e.blank()
}

// emitCompose hoists f >> g into a wrapper that calls g(f(args)).
func (e *Emitter) emitCompose(cmp *ast.Compose) {
	sig := cmp.InferredType()
	if sig == nil || !sig.IsCallable() {
		sig = types.NewFunction([]*types.Type{types.UnknownType}, types.UnknownType)
	}

	params := ""
	args := ""
	for i, pt := range sig.Params {
		if i > 0 {
			params += ", "
			args += ", "
		}
		pname := fmt.Sprintf("a%d", i)
		params += e.cdecl(pt, pname)
		args += pname
	}
	if params == "" {
		params = "void"
	}

	e.line("static %s %s(%s) {", e.ctype(sig.Return), e.composeNames[cmp], params)
	e.indent++
	e.line("return %s(%s(%s));", e.callee(cmp.G), e.callee(cmp.F), args)
	e.indent--
	e.line("}")
	e.blank()
}

// callee renders an expression used in call position.
func (e *Emitter) callee(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.Lambda:
		return e.lambdaNames[n]
	case *ast.Compose:
		return e.composeNames[n]
	}
	return e.expr(x)
}

// emitFunctions writes the create wrappers and the free functions in
// source order, after classes.
func (e *Emitter) emitFunctions(prog *ast.Program) {
	for _, name := range e.classOrder() {
		init := e.classInit(name)
		if init == nil {
			continue
		}
		header, args := e.createHeader(name, init)
		e.line("%s {", header)
		e.indent++
		e.line("%s* self = new_%s();", name, name)
		e.line("%s_init(self%s);", name, args)
		e.line("return self;")
		e.indent--
		e.line("}")
		e.blank()
	}

	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDef); ok {
			e.emitFuncDef(fd, "")
			e.stats.Functions++
		}
	}
}

// emitMain lowers the program's top-level statements. Declarations are
// introduced at first use inside main rather than through a pre-allocated
// scratch bank.
func (e *Emitter) emitMain(prog *ast.Program) {
	saved := e.vars
	e.vars = make(map[string]*cvar)
	defer func() { e.vars = saved }()

	e.line("int main(void) {")
	e.indent++
	if prog.Main != nil {
		for _, s := range prog.Main.Stmts {
			e.stmt(s)
		}
	}
	e.line("return 0;")
	e.indent--
	e.line("}")
}
