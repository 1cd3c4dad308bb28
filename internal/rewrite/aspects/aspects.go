// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package aspects

import (
	"path"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
)

// Weaver applies aspect advice to every function whose name matches a
// pointcut pattern.
type Weaver struct {
	path  string
	diags *diag.Collector
}

// New returns an aspect weaver.
func New(srcPath string, diags *diag.Collector) *Weaver {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Weaver{path: srcPath, diags: diags}
}

// Name implements the Rewriter interface.
func (w *Weaver) Name() string { return "aspects" }

// matched holds the advice bound to one joinpoint, in declaration order.
type matched struct {
	befores []*ast.Advice
	afters  []*ast.Advice
	arounds []*ast.Advice
}

// Rewrite strips aspect definitions and weaves their advice into matching
// functions and methods. When several around advices match one joinpoint
// they nest in declaration order, first declared outermost: each inner
// layer becomes the proceed() of the next outer one.
func (w *Weaver) Rewrite(prog *ast.Program) (*ast.Program, error) {
	var aspects []*ast.AspectDef
	var kept []ast.Decl
	for _, d := range prog.Decls {
		if ad, ok := d.(*ast.AspectDef); ok {
			aspects = append(aspects, ad)
			continue
		}
		kept = append(kept, d)
	}
	prog.Decls = kept
	if len(aspects) == 0 {
		return prog, nil
	}

	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.FuncDef:
			w.weave(n, aspects)
		case *ast.ClassDef:
			for _, m := range n.Methods {
				w.weave(m, aspects)
			}
		}
	}
	return prog, nil
}

// collect gathers the advice whose pointcuts match the function name.
func (w *Weaver) collect(name string, aspects []*ast.AspectDef) matched {
	var m matched
	for _, a := range aspects {
		patterns := make(map[string]string, len(a.Pointcuts))
		for _, pc := range a.Pointcuts {
			patterns[pc.Name] = pc.Pattern
		}
		for _, adv := range a.Advices {
			pat, ok := patterns[adv.PointcutName]
			if !ok {
				w.diags.Errorf(diag.Name, w.path, adv.Pos.Line, adv.Pos.Col,
					"advice references unknown pointcut %s", adv.PointcutName)
				continue
			}
			hit, err := path.Match(pat, name)
			if err != nil {
				w.diags.Errorf(diag.Semantic, w.path, adv.Pos.Line, adv.Pos.Col,
					"bad pointcut pattern %q: %v", pat, err)
				continue
			}
			if !hit {
				continue
			}
			switch adv.Kind {
			case ast.Before:
				m.befores = append(m.befores, adv)
			case ast.After:
				m.afters = append(m.afters, adv)
			case ast.Around:
				m.arounds = append(m.arounds, adv)
			}
		}
	}
	return m
}

func (w *Weaver) weave(fn *ast.FuncDef, aspects []*ast.AspectDef) {
	m := w.collect(fn.Name, aspects)
	if len(m.befores) == 0 && len(m.afters) == 0 && len(m.arounds) == 0 {
		return
	}

	// expression-bodied functions become block-bodied before weaving
	if fn.ExprBody != nil {
		fn.Body = &ast.Block{
			Meta:  ast.Meta{Pos: fn.Pos},
			Stmts: []ast.Stmt{&ast.Return{Meta: ast.Meta{Pos: fn.Pos}, Value: fn.ExprBody}},
		}
		fn.ExprBody = nil
	}
	if fn.Body == nil {
		fn.Body = &ast.Block{Meta: ast.Meta{Pos: fn.Pos}}
	}

	body := fn.Body.Stmts
	for i := len(m.arounds) - 1; i >= 0; i-- {
		body = w.splice(m.arounds[i], body)
	}

	var out []ast.Stmt
	for _, adv := range m.befores {
		out = append(out, ast.CloneBlock(adv.Body).Stmts...)
	}
	out = append(out, body...)
	for _, adv := range m.afters {
		out = append(out, ast.CloneBlock(adv.Body).Stmts...)
	}
	fn.Body.Stmts = out
}

// splice clones an around-advice body and replaces each statement-position
// proceed() call with the wrapped statements.
func (w *Weaver) splice(adv *ast.Advice, inner []ast.Stmt) []ast.Stmt {
	body := ast.CloneBlock(adv.Body)
	found := false
	ast.TransformStmts(body, func(s ast.Stmt) ([]ast.Stmt, bool) {
		es, ok := s.(*ast.ExprStmt)
		if !ok {
			return nil, false
		}
		call, isCall := es.X.(*ast.Call)
		if !isCall {
			return nil, false
		}
		id, isIdent := call.Callee.(*ast.Ident)
		if !isIdent || id.Name != "proceed" {
			return nil, false
		}
		found = true
		var repl []ast.Stmt
		for _, ws := range inner {
			repl = append(repl, ast.CloneStmt(ws))
		}
		return repl, true
	})
	if !found {
		w.diags.Warnf(diag.Semantic, w.path, adv.Pos.Line, adv.Pos.Col,
			"around advice has no proceed(); original body dropped")
	}
	return body.Stmts
}
