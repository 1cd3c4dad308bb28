// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package macros

import (
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
)

// DefaultMaxDepth bounds recursive expansion.
const DefaultMaxDepth = 64

// Expander expands macro calls bottom-up until no more remain or the depth
// limit trips.
type Expander struct {
	path     string
	diags    *diag.Collector
	MaxDepth int

	defs map[string]*ast.MacroDef
}

// New returns a macro expander with the default depth limit.
func New(path string, diags *diag.Collector) *Expander {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Expander{path: path, diags: diags, MaxDepth: DefaultMaxDepth}
}

// Name implements the Rewriter interface.
func (x *Expander) Name() string { return "macros" }

// Rewrite strips macro definitions from the program and expands every call
// to one. Expansion repeats until a pass changes nothing; each pass counts
// against the depth limit so mutually recursive macros cannot loop.
func (x *Expander) Rewrite(prog *ast.Program) (*ast.Program, error) {
	x.defs = make(map[string]*ast.MacroDef)
	var kept []ast.Decl
	for _, d := range prog.Decls {
		if md, ok := d.(*ast.MacroDef); ok {
			x.defs[md.Name] = md
			continue
		}
		kept = append(kept, d)
	}
	prog.Decls = kept
	if len(x.defs) == 0 {
		return prog, nil
	}

	for depth := 0; ; depth++ {
		if depth >= x.MaxDepth {
			x.diags.Errorf(diag.Limit, x.path, 0, 0, "macro expansion exceeded %d passes", x.MaxDepth)
			return prog, cerrs.ErrExpansionLimit
		}
		if !x.expandOnce(prog) {
			break
		}
	}
	return prog, nil
}

// expandOnce performs one expansion pass and reports whether anything
// changed.
func (x *Expander) expandOnce(prog *ast.Program) bool {
	changed := false

	// statement-position calls whose macro body is a block splice the
	// block's statements in place
	ast.TransformStmts(prog, func(s ast.Stmt) ([]ast.Stmt, bool) {
		es, ok := s.(*ast.ExprStmt)
		if !ok {
			return nil, false
		}
		call, def := x.macroCall(es.X)
		if def == nil {
			return nil, false
		}
		body, ok := def.Body.(*ast.Block)
		if !ok {
			return nil, false
		}
		sub := x.bindArgs(def, call)
		expanded := ast.CloneBlock(body)
		x.substitute(expanded, sub)
		changed = true
		return expanded.Stmts, true
	})

	// expression-position calls substitute the macro's expression body
	ast.TransformExpr(prog, func(e ast.Expr) ast.Expr {
		call, def := x.macroCall(e)
		if def == nil {
			return e
		}
		body, ok := def.Body.(ast.Expr)
		if !ok {
			return e
		}
		sub := x.bindArgs(def, call)
		expanded := ast.CloneExpr(body)
		out := x.substituteExpr(expanded, sub)
		changed = true
		return out
	})

	return changed
}

// macroCall reports whether e is a call to a defined macro with matching
// arity.
func (x *Expander) macroCall(e ast.Expr) (*ast.Call, *ast.MacroDef) {
	call, ok := e.(*ast.Call)
	if !ok {
		return nil, nil
	}
	id, ok := call.Callee.(*ast.Ident)
	if !ok {
		return nil, nil
	}
	def, ok := x.defs[id.Name]
	if !ok {
		return nil, nil
	}
	if len(call.Args) != len(def.Params) {
		x.diags.Errorf(diag.Semantic, x.path, call.Pos.Line, call.Pos.Col,
			"macro %s takes %d arguments, found %d", def.Name, len(def.Params), len(call.Args))
		return nil, nil
	}
	return call, def
}

func (x *Expander) bindArgs(def *ast.MacroDef, call *ast.Call) map[string]ast.Expr {
	sub := make(map[string]ast.Expr, len(def.Params))
	for i, p := range def.Params {
		sub[p] = call.Args[i]
	}
	return sub
}

// substitute rewrites a cloned macro body: parameter identifiers become
// argument ASTs, #x stringifies the argument's source text, and x##y
// pastes two names into a fresh identifier.
func (x *Expander) substitute(root ast.Node, sub map[string]ast.Expr) {
	ast.TransformExpr(root, func(e ast.Expr) ast.Expr {
		return x.applySubst(e, sub)
	})
}

func (x *Expander) substituteExpr(e ast.Expr, sub map[string]ast.Expr) ast.Expr {
	// bottom-up over the cloned expression tree
	wrapper := &ast.ExprStmt{X: e}
	x.substitute(wrapper, sub)
	return wrapper.X
}

func (x *Expander) applySubst(e ast.Expr, sub map[string]ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident:
		if arg, ok := sub[n.Name]; ok {
			return ast.CloneExpr(arg)
		}
	case *ast.UnOp:
		if n.Op == ast.OpStringify {
			return &ast.StringLit{Meta: ast.Meta{Pos: n.Pos}, Value: ast.Text(n.X)}
		}
	case *ast.BinOp:
		if n.Op == ast.OpPaste {
			left, lok := pasteName(n.X)
			right, rok := pasteName(n.Y)
			if lok && rok {
				return &ast.Ident{Meta: ast.Meta{Pos: n.Pos}, Name: left + right}
			}
			x.diags.Errorf(diag.Semantic, x.path, n.Pos.Line, n.Pos.Col, "## requires identifier operands")
		}
	}
	return e
}

// pasteName extracts the token text usable on either side of ##.
func pasteName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, true
	case *ast.StringLit:
		return n.Value, true
	case *ast.NumberLit:
		return ast.Text(n), true
	}
	return "", false
}
