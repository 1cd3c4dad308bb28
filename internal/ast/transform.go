// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package ast

// TransformExpr rewrites every expression under root bottom-up: children
// are transformed first, then f is applied to the rewritten node. f must
// return its argument unchanged when it has nothing to do.
func TransformExpr(root Node, f func(Expr) Expr) {
	switch x := root.(type) {
	case nil:
	case *Program:
		for _, d := range x.Decls {
			TransformExpr(d, f)
		}
		if x.Main != nil {
			TransformExpr(x.Main, f)
		}
	case *FuncDef:
		if x.Body != nil {
			TransformExpr(x.Body, f)
		}
		if x.ExprBody != nil {
			x.ExprBody = mapExpr(x.ExprBody, f)
		}
	case *ClassDef:
		for i := range x.Fields {
			if x.Fields[i].Init != nil {
				x.Fields[i].Init = mapExpr(x.Fields[i].Init, f)
			}
		}
		for _, m := range x.Methods {
			TransformExpr(m, f)
		}
	case *AspectDef:
		for _, a := range x.Advices {
			TransformExpr(a.Body, f)
		}
	case *MacroDef:
		TransformExpr(x.Body, f)
	case *TemplateDef:
		TransformExpr(x.Body, f)
	case *Block:
		for _, s := range x.Stmts {
			TransformExpr(s, f)
		}
	case *If:
		x.Cond = mapExpr(x.Cond, f)
		TransformExpr(x.Then, f)
		if x.Else != nil {
			TransformExpr(x.Else, f)
		}
	case *While:
		x.Cond = mapExpr(x.Cond, f)
		TransformExpr(x.Body, f)
	case *DoWhile:
		TransformExpr(x.Body, f)
		x.Cond = mapExpr(x.Cond, f)
	case *For:
		if x.From != nil {
			x.From = mapExpr(x.From, f)
		}
		if x.To != nil {
			x.To = mapExpr(x.To, f)
		}
		if x.Step != nil {
			x.Step = mapExpr(x.Step, f)
		}
		if x.Coll != nil {
			x.Coll = mapExpr(x.Coll, f)
		}
		if x.Init != nil {
			TransformExpr(x.Init, f)
		}
		if x.Cond != nil {
			x.Cond = mapExpr(x.Cond, f)
		}
		if x.Post != nil {
			TransformExpr(x.Post, f)
		}
		TransformExpr(x.Body, f)
	case *Switch:
		x.Tag = mapExpr(x.Tag, f)
		for _, c := range x.Cases {
			for i := range c.Values {
				c.Values[i] = mapExpr(c.Values[i], f)
			}
			for _, s := range c.Body {
				TransformExpr(s, f)
			}
		}
		if x.Default != nil {
			for _, s := range x.Default.Body {
				TransformExpr(s, f)
			}
		}
	case *Return:
		if x.Value != nil {
			x.Value = mapExpr(x.Value, f)
		}
	case *VarDecl:
		if x.Init != nil {
			x.Init = mapExpr(x.Init, f)
		}
	case *VarAssign:
		x.Target = mapExpr(x.Target, f)
		x.Value = mapExpr(x.Value, f)
	case *Print:
		x.Value = mapExpr(x.Value, f)
	case *Try:
		TransformExpr(x.Body, f)
		for _, c := range x.Catches {
			TransformExpr(c.Body, f)
		}
		if x.Finally != nil {
			TransformExpr(x.Finally, f)
		}
	case *Throw:
		x.Value = mapExpr(x.Value, f)
	case *Match:
		x.Subject = mapExpr(x.Subject, f)
		for _, c := range x.Cases {
			c.Pattern = mapExpr(c.Pattern, f)
			if c.Guard != nil {
				c.Guard = mapExpr(c.Guard, f)
			}
			TransformExpr(c.Body, f)
		}
		if x.Otherwise != nil {
			TransformExpr(x.Otherwise, f)
		}
	case *ExprStmt:
		x.X = mapExpr(x.X, f)
	}
}

// mapExpr transforms an expression's children, then the node itself.
func mapExpr(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *BinOp:
		x.X = mapExpr(x.X, f)
		x.Y = mapExpr(x.Y, f)
	case *UnOp:
		x.X = mapExpr(x.X, f)
	case *Call:
		x.Callee = mapExpr(x.Callee, f)
		for i := range x.Args {
			x.Args[i] = mapExpr(x.Args[i], f)
		}
	case *Member:
		x.X = mapExpr(x.X, f)
	case *Index:
		x.X = mapExpr(x.X, f)
		x.Idx = mapExpr(x.Idx, f)
	case *ArrayLit:
		for i := range x.Elems {
			x.Elems[i] = mapExpr(x.Elems[i], f)
		}
	case *Lambda:
		if x.ExprBody != nil {
			x.ExprBody = mapExpr(x.ExprBody, f)
		}
		if x.Body != nil {
			TransformExpr(x.Body, f)
		}
	case *Compose:
		x.F = mapExpr(x.F, f)
		x.G = mapExpr(x.G, f)
	case *Curry:
		x.Fn = mapExpr(x.Fn, f)
		for i := range x.Args {
			x.Args[i] = mapExpr(x.Args[i], f)
		}
	case *New:
		for i := range x.Args {
			x.Args[i] = mapExpr(x.Args[i], f)
		}
	}
	return f(e)
}

// TransformStmts rewrites every statement list under root. f receives each
// statement and reports a replacement list; returning ok=false keeps the
// original statement. Replacements are not re-visited, which keeps
// expansion loops in the callers' hands.
func TransformStmts(root Node, f func(Stmt) ([]Stmt, bool)) {
	switch x := root.(type) {
	case nil:
	case *Program:
		for _, d := range x.Decls {
			TransformStmts(d, f)
		}
		if x.Main != nil {
			TransformStmts(x.Main, f)
		}
	case *FuncDef:
		if x.Body != nil {
			TransformStmts(x.Body, f)
		}
	case *ClassDef:
		for _, m := range x.Methods {
			TransformStmts(m, f)
		}
	case *AspectDef:
		for _, a := range x.Advices {
			TransformStmts(a.Body, f)
		}
	case *Block:
		x.Stmts = mapStmtList(x.Stmts, f)
	case *If:
		TransformStmts(x.Then, f)
		if x.Else != nil {
			TransformStmts(x.Else, f)
		}
	case *While:
		TransformStmts(x.Body, f)
	case *DoWhile:
		TransformStmts(x.Body, f)
	case *For:
		TransformStmts(x.Body, f)
	case *Switch:
		for _, c := range x.Cases {
			c.Body = mapStmtList(c.Body, f)
		}
		if x.Default != nil {
			x.Default.Body = mapStmtList(x.Default.Body, f)
		}
	case *Try:
		TransformStmts(x.Body, f)
		for _, c := range x.Catches {
			TransformStmts(c.Body, f)
		}
		if x.Finally != nil {
			TransformStmts(x.Finally, f)
		}
	case *Match:
		for _, c := range x.Cases {
			TransformStmts(c.Body, f)
		}
		if x.Otherwise != nil {
			TransformStmts(x.Otherwise, f)
		}
	}
}

func mapStmtList(stmts []Stmt, f func(Stmt) ([]Stmt, bool)) []Stmt {
	var out []Stmt
	for _, s := range stmts {
		TransformStmts(s, f)
		if repl, ok := f(s); ok {
			out = append(out, repl...)
		} else {
			out = append(out, s)
		}
	}
	return out
}
