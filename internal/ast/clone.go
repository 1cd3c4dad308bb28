// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package ast

import "fmt"

// Cloning produces a fully disjoint tree. The template instantiator depends
// on this: a clone shares no nodes with the original, so substitutions never
// leak back. Inferred types are not carried over; a clone is re-inferred.

// CloneProgram deep-copies a program.
func CloneProgram(p *Program) *Program {
	if p == nil {
		return nil
	}
	out := &Program{Meta: Meta{Pos: p.Pos}, Path: p.Path}
	if p.Module != nil {
		out.Module = &Module{Meta: Meta{Pos: p.Module.Pos}, Name: p.Module.Name}
	}
	for _, d := range p.Decls {
		out.Decls = append(out.Decls, CloneDecl(d))
	}
	out.Main = CloneBlock(p.Main)
	return out
}

// CloneDecl deep-copies a declaration.
func CloneDecl(d Decl) Decl {
	switch n := d.(type) {
	case nil:
		return nil
	case *Module:
		return &Module{Meta: Meta{Pos: n.Pos}, Name: n.Name}
	case *Import:
		out := &Import{Meta: Meta{Pos: n.Pos}, Module: n.Module, Alias: n.Alias}
		out.Selective = append(out.Selective, n.Selective...)
		return out
	case *FuncDef:
		return CloneFunc(n)
	case *ClassDef:
		out := &ClassDef{Meta: Meta{Pos: n.Pos}, Name: n.Name, Extends: n.Extends, Exported: n.Exported}
		for _, f := range n.Fields {
			out.Fields = append(out.Fields, FieldDef{Name: f.Name, TypeName: f.TypeName, Init: CloneExpr(f.Init), Pos: f.Pos})
		}
		for _, m := range n.Methods {
			out.Methods = append(out.Methods, CloneFunc(m))
		}
		return out
	case *AspectDef:
		out := &AspectDef{Meta: Meta{Pos: n.Pos}, Name: n.Name}
		for _, p := range n.Pointcuts {
			out.Pointcuts = append(out.Pointcuts, &Pointcut{Meta: Meta{Pos: p.Pos}, Name: p.Name, Pattern: p.Pattern})
		}
		for _, a := range n.Advices {
			out.Advices = append(out.Advices, &Advice{Meta: Meta{Pos: a.Pos}, Kind: a.Kind, PointcutName: a.PointcutName, Body: CloneBlock(a.Body)})
		}
		return out
	case *MacroDef:
		return &MacroDef{Meta: Meta{Pos: n.Pos}, Name: n.Name, Params: append([]string(nil), n.Params...), Body: CloneNode(n.Body)}
	case *TemplateDef:
		return &TemplateDef{Meta: Meta{Pos: n.Pos}, Name: n.Name, TypeParams: append([]TypeParam(nil), n.TypeParams...), Body: CloneDecl(n.Body)}
	}
	panic(fmt.Sprintf("assert(decl kind != %T)", d))
}

// CloneFunc deep-copies a function definition.
func CloneFunc(f *FuncDef) *FuncDef {
	if f == nil {
		return nil
	}
	return &FuncDef{
		Meta:       Meta{Pos: f.Pos},
		Name:       f.Name,
		Params:     append([]Param(nil), f.Params...),
		ReturnName: f.ReturnName,
		Body:       CloneBlock(f.Body),
		ExprBody:   CloneExpr(f.ExprBody),
		Exported:   f.Exported,
	}
}

// CloneBlock deep-copies a block.
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Meta: Meta{Pos: b.Pos}}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, CloneStmt(s))
	}
	return out
}

// CloneStmt deep-copies a statement.
func CloneStmt(s Stmt) Stmt {
	switch n := s.(type) {
	case nil:
		return nil
	case *Block:
		return CloneBlock(n)
	case *If:
		return &If{Meta: Meta{Pos: n.Pos}, Cond: CloneExpr(n.Cond), Then: CloneStmt(n.Then), Else: CloneStmt(n.Else)}
	case *While:
		return &While{Meta: Meta{Pos: n.Pos}, Cond: CloneExpr(n.Cond), Body: CloneStmt(n.Body)}
	case *DoWhile:
		return &DoWhile{Meta: Meta{Pos: n.Pos}, Body: CloneStmt(n.Body), Cond: CloneExpr(n.Cond)}
	case *For:
		return &For{
			Meta: Meta{Pos: n.Pos},
			Kind: n.Kind,
			Var:  n.Var,
			From: CloneExpr(n.From),
			To:   CloneExpr(n.To),
			Step: CloneExpr(n.Step),
			Coll: CloneExpr(n.Coll),
			Init: CloneStmt(n.Init),
			Cond: CloneExpr(n.Cond),
			Post: CloneStmt(n.Post),
			Body: CloneStmt(n.Body),
		}
	case *Switch:
		out := &Switch{Meta: Meta{Pos: n.Pos}, Tag: CloneExpr(n.Tag)}
		for _, c := range n.Cases {
			out.Cases = append(out.Cases, cloneCase(c))
		}
		out.Default = cloneCase(n.Default)
		return out
	case *Return:
		return &Return{Meta: Meta{Pos: n.Pos}, Value: CloneExpr(n.Value)}
	case *VarDecl:
		return &VarDecl{Meta: Meta{Pos: n.Pos}, Name: n.Name, TypeName: n.TypeName, Init: CloneExpr(n.Init)}
	case *VarAssign:
		return &VarAssign{Meta: Meta{Pos: n.Pos}, Target: CloneExpr(n.Target), Op: n.Op, Value: CloneExpr(n.Value)}
	case *Print:
		return &Print{Meta: Meta{Pos: n.Pos}, Value: CloneExpr(n.Value)}
	case *Break:
		return &Break{Meta: Meta{Pos: n.Pos}}
	case *Continue:
		return &Continue{Meta: Meta{Pos: n.Pos}}
	case *Try:
		out := &Try{Meta: Meta{Pos: n.Pos}, Body: CloneBlock(n.Body), Finally: CloneBlock(n.Finally)}
		for _, c := range n.Catches {
			out.Catches = append(out.Catches, &CatchClause{Meta: Meta{Pos: c.Pos}, Var: c.Var, TypeName: c.TypeName, Body: CloneBlock(c.Body)})
		}
		return out
	case *Throw:
		return &Throw{Meta: Meta{Pos: n.Pos}, Value: CloneExpr(n.Value)}
	case *Match:
		out := &Match{Meta: Meta{Pos: n.Pos}, Subject: CloneExpr(n.Subject), Otherwise: CloneBlock(n.Otherwise)}
		for _, c := range n.Cases {
			out.Cases = append(out.Cases, &MatchCase{Meta: Meta{Pos: c.Pos}, Pattern: CloneExpr(c.Pattern), Guard: CloneExpr(c.Guard), Body: CloneBlock(c.Body)})
		}
		return out
	case *ExprStmt:
		return &ExprStmt{Meta: Meta{Pos: n.Pos}, X: CloneExpr(n.X)}
	}
	panic(fmt.Sprintf("assert(stmt kind != %T)", s))
}

func cloneCase(c *CaseClause) *CaseClause {
	if c == nil {
		return nil
	}
	out := &CaseClause{Meta: Meta{Pos: c.Pos}, Fallthrough: c.Fallthrough}
	for _, v := range c.Values {
		out.Values = append(out.Values, CloneExpr(v))
	}
	for _, s := range c.Body {
		out.Body = append(out.Body, CloneStmt(s))
	}
	return out
}

// CloneExpr deep-copies an expression.
func CloneExpr(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *NumberLit:
		return &NumberLit{Meta: Meta{Pos: n.Pos}, Value: n.Value, IsFloat: n.IsFloat}
	case *StringLit:
		return &StringLit{Meta: Meta{Pos: n.Pos}, Value: n.Value}
	case *BoolLit:
		return &BoolLit{Meta: Meta{Pos: n.Pos}, Value: n.Value}
	case *NullLit:
		return &NullLit{Meta: Meta{Pos: n.Pos}}
	case *Ident:
		return &Ident{Meta: Meta{Pos: n.Pos}, Name: n.Name}
	case *BinOp:
		return &BinOp{Meta: Meta{Pos: n.Pos}, Op: n.Op, X: CloneExpr(n.X), Y: CloneExpr(n.Y)}
	case *UnOp:
		return &UnOp{Meta: Meta{Pos: n.Pos}, Op: n.Op, X: CloneExpr(n.X)}
	case *Call:
		out := &Call{Meta: Meta{Pos: n.Pos}, Callee: CloneExpr(n.Callee)}
		for _, a := range n.Args {
			out.Args = append(out.Args, CloneExpr(a))
		}
		return out
	case *Member:
		return &Member{Meta: Meta{Pos: n.Pos}, X: CloneExpr(n.X), Name: n.Name}
	case *Index:
		return &Index{Meta: Meta{Pos: n.Pos}, X: CloneExpr(n.X), Idx: CloneExpr(n.Idx)}
	case *ArrayLit:
		out := &ArrayLit{Meta: Meta{Pos: n.Pos}}
		for _, el := range n.Elems {
			out.Elems = append(out.Elems, CloneExpr(el))
		}
		return out
	case *Lambda:
		return &Lambda{
			Meta:       Meta{Pos: n.Pos},
			Params:     append([]Param(nil), n.Params...),
			ReturnName: n.ReturnName,
			ExprBody:   CloneExpr(n.ExprBody),
			Body:       CloneBlock(n.Body),
		}
	case *Compose:
		return &Compose{Meta: Meta{Pos: n.Pos}, F: CloneExpr(n.F), G: CloneExpr(n.G)}
	case *Curry:
		out := &Curry{Meta: Meta{Pos: n.Pos}, Fn: CloneExpr(n.Fn)}
		for _, a := range n.Args {
			out.Args = append(out.Args, CloneExpr(a))
		}
		return out
	case *New:
		out := &New{Meta: Meta{Pos: n.Pos}, ClassName: n.ClassName}
		for _, a := range n.Args {
			out.Args = append(out.Args, CloneExpr(a))
		}
		return out
	case *This:
		return &This{Meta: Meta{Pos: n.Pos}}
	}
	panic(fmt.Sprintf("assert(expr kind != %T)", e))
}

// CloneNode clones any node; macro bodies may be a declaration, a
// statement, or a bare expression.
func CloneNode(n Node) Node {
	switch x := n.(type) {
	case nil:
		return nil
	case *Program:
		return CloneProgram(x)
	case Decl:
		return CloneDecl(x)
	case Stmt:
		return CloneStmt(x)
	case Expr:
		return CloneExpr(x)
	}
	panic(fmt.Sprintf("assert(node kind != %T)", n))
}
