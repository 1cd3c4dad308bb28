// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package typecheck

import (
	"errors"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/symtab"
	"github.com/playbymail/lc/internal/types"
)

// Checker annotates an AST with inferred types. It never aborts: a failed
// inference reports a diagnostic, degrades to Unknown, and continues, so a
// single run surfaces every type error in the file.
type Checker struct {
	path    string
	symbols *symtab.Table
	classes map[string]*types.Type
	diags   *diag.Collector

	// Modules maps an import alias (or module name) to the types of the
	// module's exported symbols. Populated by the driver from the resolver.
	Modules map[string]map[string]*types.Type

	// current class, for this/self resolution inside methods
	class *types.Type

	// scope depths at which lambda bodies begin; used to reject closures
	// over outer locals, which the code generator cannot lower
	lambdaBounds []int
}

// New returns a checker reporting to diags.
func New(path string, diags *diag.Collector) *Checker {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Checker{
		path:    path,
		symbols: symtab.New(),
		classes: make(map[string]*types.Type),
		diags:   diags,
		Modules: make(map[string]map[string]*types.Type),
	}
}

// Symbols exposes the table so the code generator can share bindings.
func (c *Checker) Symbols() *symtab.Table { return c.symbols }

// Classes returns the class types declared by the checked program.
func (c *Checker) Classes() map[string]*types.Type { return c.classes }

// CheckProgram declares all top-level names, then infers every function
// body and the main block.
func (c *Checker) CheckProgram(prog *ast.Program) {
	// declare class names first so bases and fields can refer forward
	for _, d := range prog.Decls {
		if cd, ok := d.(*ast.ClassDef); ok {
			c.classes[cd.Name] = types.NewClass(cd.Name, nil, nil, nil)
		}
	}
	for _, d := range prog.Decls {
		if cd, ok := d.(*ast.ClassDef); ok {
			c.resolveClass(cd)
		}
	}
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDef); ok {
			c.declareFunc(fd, nil)
		}
	}

	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDef:
			c.checkFunc(n, nil)
		case *ast.ClassDef:
			cls := c.classes[n.Name]
			for _, m := range n.Methods {
				c.checkFunc(m, cls)
			}
		}
	}
	if prog.Main != nil {
		c.checkBlock(prog.Main, true)
	}
}

func (c *Checker) resolveClass(cd *ast.ClassDef) {
	cls := c.classes[cd.Name]
	if cd.Extends != "" {
		if base, ok := c.classes[cd.Extends]; ok {
			cls.Base = base
		} else {
			c.diags.Errorf(diag.Name, c.path, cd.Pos.Line, cd.Pos.Col, "unknown base class %s", cd.Extends)
		}
	}
	for _, f := range cd.Fields {
		ft := c.resolveTypeName(f.TypeName)
		if ft.Kind == types.Unknown && f.Init != nil {
			ft = c.Infer(f.Init)
		}
		cls.Fields = append(cls.Fields, types.Field{Name: f.Name, Type: ft})
	}
	for _, m := range cd.Methods {
		// the method node and the class share one signature instance, so
		// patching an inferred return type updates both
		sig := c.funcSignature(m)
		m.SetInferredType(sig)
		cls.Methods = append(cls.Methods, types.Method{Name: m.Name, Signature: sig})
	}
}

func (c *Checker) funcSignature(fd *ast.FuncDef) *types.Type {
	params := make([]*types.Type, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = c.resolveTypeName(p.TypeName)
	}
	return types.NewFunction(params, c.resolveTypeName(fd.ReturnName))
}

func (c *Checker) declareFunc(fd *ast.FuncDef, cls *types.Type) {
	sig := c.funcSignature(fd)
	fd.SetInferredType(sig)
	if cls == nil {
		if err := c.symbols.Add(fd.Name, sig); err != nil && errors.Is(err, cerrs.ErrRedeclaration) {
			c.diags.Errorf(diag.Name, c.path, fd.Pos.Line, fd.Pos.Col, "redeclaration of %s", fd.Name)
		}
	}
}

// checkFunc infers a function or method body. If the return annotation was
// empty, the signature's return type is patched from the body.
func (c *Checker) checkFunc(fd *ast.FuncDef, cls *types.Type) {
	sig := fd.InferredType()
	if sig == nil || !sig.IsCallable() {
		sig = c.funcSignature(fd)
		fd.SetInferredType(sig)
	}

	prevClass := c.class
	c.class = cls
	c.symbols.EnterScope()
	defer func() {
		c.symbols.ExitScope()
		c.class = prevClass
	}()

	if cls != nil {
		_ = c.symbols.Add("self", cls)
	}
	for i, p := range fd.Params {
		if err := c.symbols.Add(p.Name, sig.Params[i]); err != nil {
			c.diags.Errorf(diag.Name, c.path, p.Pos.Line, p.Pos.Col, "redeclaration of parameter %s", p.Name)
		}
	}

	if fd.ExprBody != nil {
		got := c.Infer(fd.ExprBody)
		if fd.ReturnName == "" {
			sig.Return = got
		} else if !types.AssignableTo(got, sig.Return) {
			c.diags.Errorf(diag.Type, c.path, fd.Pos.Line, fd.Pos.Col, "%s returns %s, declared %s", fd.Name, got, sig.Return)
		}
		return
	}

	ret := c.checkBlock(fd.Body, true)
	if fd.ReturnName == "" {
		if ret != nil {
			sig.Return = ret
		} else {
			sig.Return = types.VoidType
		}
	}
}

// checkBlock infers the statements of a block. It returns the type of the
// first return statement seen, or nil if the block cannot return a value.
// When ownScope is false the block shares the current scope (catch and
// lambda bodies, whose scope the caller has already entered).
func (c *Checker) checkBlock(b *ast.Block, ownScope bool) *types.Type {
	if b == nil {
		return nil
	}
	if ownScope {
		c.symbols.EnterScope()
		defer c.symbols.ExitScope()
	}
	var ret *types.Type
	for _, s := range b.Stmts {
		if t := c.checkStmt(s); t != nil && ret == nil {
			ret = t
		}
	}
	return ret
}

func (c *Checker) checkStmt(s ast.Stmt) *types.Type {
	switch n := s.(type) {
	case *ast.Block:
		return c.checkBlock(n, true)
	case *ast.If:
		c.wantBool(n.Cond)
		r1 := c.checkStmt(n.Then)
		var r2 *types.Type
		if n.Else != nil {
			r2 = c.checkStmt(n.Else)
		}
		if r1 != nil {
			return r1
		}
		return r2
	case *ast.While:
		c.wantBool(n.Cond)
		return c.checkStmt(n.Body)
	case *ast.DoWhile:
		r := c.checkStmt(n.Body)
		c.wantBool(n.Cond)
		return r
	case *ast.For:
		c.symbols.EnterScope()
		defer c.symbols.ExitScope()
		switch n.Kind {
		case ast.ForRange:
			c.Check(n.From, types.IntType)
			c.Check(n.To, types.IntType)
			if n.Step != nil {
				c.Check(n.Step, types.IntType)
			}
			_ = c.symbols.Add(n.Var, types.IntType)
		case ast.ForCollection:
			ct := c.Infer(n.Coll)
			elem := types.UnknownType
			if ct.Kind == types.Array {
				elem = ct.Elem
			} else if ct.Kind != types.Unknown {
				c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot iterate %s", ct)
			}
			_ = c.symbols.Add(n.Var, elem)
		case ast.ForTraditional:
			if n.Init != nil {
				c.checkStmt(n.Init)
			}
			if n.Cond != nil {
				c.wantBool(n.Cond)
			}
			if n.Post != nil {
				c.checkStmt(n.Post)
			}
		}
		return c.checkStmt(n.Body)
	case *ast.Switch:
		tag := c.Infer(n.Tag)
		for _, cl := range n.Cases {
			for _, v := range cl.Values {
				vt := c.Infer(v)
				if !types.AssignableTo(vt, tag) && !types.AssignableTo(tag, vt) {
					c.diags.Errorf(diag.Type, c.path, v.NodePos().Line, v.NodePos().Col, "case %s does not match switch tag %s", vt, tag)
				}
			}
			for _, bs := range cl.Body {
				c.checkStmt(bs)
			}
		}
		if n.Default != nil {
			for _, bs := range n.Default.Body {
				c.checkStmt(bs)
			}
		}
		return nil
	case *ast.Return:
		if n.Value != nil {
			return c.Infer(n.Value)
		}
		return types.VoidType
	case *ast.VarDecl:
		var t *types.Type
		if n.TypeName != "" {
			t = c.resolveTypeName(n.TypeName)
			if n.Init != nil {
				c.Check(n.Init, t)
			}
		} else if n.Init != nil {
			t = c.Infer(n.Init)
		} else {
			t = types.UnknownType
		}
		n.SetInferredType(t)
		if err := c.symbols.Add(n.Name, t); err != nil {
			c.diags.Errorf(diag.Name, c.path, n.Pos.Line, n.Pos.Col, "redeclaration of %s", n.Name)
		}
		return nil
	case *ast.VarAssign:
		vt := c.Infer(n.Value)
		if id, ok := n.Target.(*ast.Ident); ok {
			if sym, found := c.symbols.Lookup(id.Name); found {
				if n.Op != 0 {
					c.checkBinOpTypes(n.Op, sym.Type, vt, n.Pos)
				} else if !types.AssignableTo(vt, sym.Type) {
					c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot assign %s to %s %s", vt, id.Name, sym.Type)
				}
				id.SetInferredType(sym.Type)
			} else {
				// first assignment introduces the variable
				_ = c.symbols.Add(id.Name, vt)
				id.SetInferredType(vt)
			}
			return nil
		}
		tt := c.Infer(n.Target)
		if !types.AssignableTo(vt, tt) {
			c.diags.Errorf(diag.Type, c.path, n.Pos.Line, n.Pos.Col, "cannot assign %s to %s", vt, tt)
		}
		return nil
	case *ast.Print:
		c.Infer(n.Value)
		return nil
	case *ast.Break, *ast.Continue:
		return nil
	case *ast.Try:
		c.checkBlock(n.Body, true)
		for _, cl := range n.Catches {
			c.symbols.EnterScope()
			if cl.Var != "" {
				_ = c.symbols.Add(cl.Var, types.StringType)
			}
			c.checkBlock(cl.Body, false)
			c.symbols.ExitScope()
		}
		if n.Finally != nil {
			c.checkBlock(n.Finally, true)
		}
		return nil
	case *ast.Throw:
		c.Infer(n.Value)
		return nil
	case *ast.Match:
		st := c.Infer(n.Subject)
		for _, cl := range n.Cases {
			pt := c.Infer(cl.Pattern)
			if !types.AssignableTo(pt, st) && !types.AssignableTo(st, pt) {
				c.diags.Errorf(diag.Type, c.path, cl.Pos.Line, cl.Pos.Col, "pattern %s does not match subject %s", pt, st)
			}
			if cl.Guard != nil {
				c.wantBool(cl.Guard)
			}
			c.checkBlock(cl.Body, true)
		}
		if n.Otherwise != nil {
			c.checkBlock(n.Otherwise, true)
		}
		return nil
	case *ast.ExprStmt:
		c.Infer(n.X)
		return nil
	}
	return nil
}

func (c *Checker) wantBool(e ast.Expr) {
	t := c.Infer(e)
	if t.Kind != types.Bool && t.Kind != types.Unknown {
		c.diags.Warnf(diag.Type, c.path, e.NodePos().Line, e.NodePos().Col, "condition is %s, not Bool", t)
	}
}

// resolveTypeName maps a source annotation to a type. An empty name is
// Unknown. A trailing [] denotes an array of the named type.
func (c *Checker) resolveTypeName(name string) *types.Type {
	if name == "" {
		return types.UnknownType
	}
	if len(name) > 2 && name[len(name)-2:] == "[]" {
		return types.NewArray(c.resolveTypeName(name[:len(name)-2]))
	}
	switch name {
	case "Int":
		return types.IntType
	case "Float":
		return types.FloatType
	case "Bool":
		return types.BoolType
	case "String":
		return types.StringType
	case "Void":
		return types.VoidType
	case "Object":
		return types.ObjectType
	}
	if cls, ok := c.classes[name]; ok {
		return cls
	}
	return types.UnknownType
}
