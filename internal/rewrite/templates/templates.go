// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package templates

import (
	"fmt"
	"strings"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/types"
)

// Instantiator expands template definitions into concrete declarations.
type Instantiator struct {
	path  string
	diags *diag.Collector

	defs      map[string]*ast.TemplateDef
	instances []ast.Decl
}

// New returns a template instantiator.
func New(srcPath string, diags *diag.Collector) *Instantiator {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Instantiator{path: srcPath, diags: diags, defs: make(map[string]*ast.TemplateDef)}
}

// Name implements the Rewriter interface.
func (t *Instantiator) Name() string { return "templates" }

// Rewrite strips template definitions from the program and appends any
// instances produced through Instantiate since the last run.
func (t *Instantiator) Rewrite(prog *ast.Program) (*ast.Program, error) {
	var kept []ast.Decl
	for _, d := range prog.Decls {
		if td, ok := d.(*ast.TemplateDef); ok {
			t.defs[td.Name] = td
			continue
		}
		kept = append(kept, d)
	}
	prog.Decls = append(kept, t.instances...)
	t.instances = nil
	return prog, nil
}

// Define registers a template built programmatically.
func (t *Instantiator) Define(def *ast.TemplateDef) {
	t.defs[def.Name] = def
}

// Instantiate clones a template body, substitutes the type parameters with
// the concrete types, validates constraints, and runs the type-directed
// specializations. The instance is also queued for the next Rewrite.
func (t *Instantiator) Instantiate(name string, args []*types.Type) (ast.Decl, error) {
	def, ok := t.defs[name]
	if !ok {
		return nil, cerrs.ErrNotImplemented
	}
	if len(args) != len(def.TypeParams) {
		t.diags.Errorf(diag.Type, t.path, def.Pos.Line, def.Pos.Col,
			"template %s takes %d type arguments, found %d", name, len(def.TypeParams), len(args))
		return nil, cerrs.ErrTemplateArity
	}

	sub := make(map[string]string, len(args))
	for i, tp := range def.TypeParams {
		if tp.Constraint != "" {
			want := constraintType(tp.Constraint)
			if !types.AssignableTo(args[i], want) {
				t.diags.Errorf(diag.Type, t.path, def.Pos.Line, def.Pos.Col,
					"type argument %s does not satisfy constraint %s", args[i], tp.Constraint)
				return nil, cerrs.ErrTemplateConstraint
			}
		}
		sub[tp.Name] = typeName(args[i])
	}

	inst := ast.CloneDecl(def.Body)
	substituteTypes(inst, sub)
	mangle(inst, args)
	t.specialize(inst, args)
	t.instances = append(t.instances, inst)
	return inst, nil
}

func constraintType(name string) *types.Type {
	switch name {
	case "Int":
		return types.IntType
	case "Float":
		return types.FloatType
	case "Bool":
		return types.BoolType
	case "String":
		return types.StringType
	}
	return types.UnknownType
}

func typeName(t *types.Type) string {
	if t.Kind == types.Class {
		return t.Name
	}
	return t.Kind.String()
}

// substituteTypes rewrites type-parameter names wherever they appear: in
// annotations and in identifier references that name types.
func substituteTypes(d ast.Decl, sub map[string]string) {
	switch n := d.(type) {
	case *ast.FuncDef:
		for i := range n.Params {
			if repl, ok := sub[n.Params[i].TypeName]; ok {
				n.Params[i].TypeName = repl
			}
		}
		if repl, ok := sub[n.ReturnName]; ok {
			n.ReturnName = repl
		}
	case *ast.ClassDef:
		for i := range n.Fields {
			if repl, ok := sub[n.Fields[i].TypeName]; ok {
				n.Fields[i].TypeName = repl
			}
		}
		for _, m := range n.Methods {
			substituteTypes(m, sub)
		}
	}

	ast.TransformStmts(d, func(s ast.Stmt) ([]ast.Stmt, bool) {
		if vd, ok := s.(*ast.VarDecl); ok {
			if repl, found := sub[vd.TypeName]; found {
				vd.TypeName = repl
			}
		}
		return nil, false
	})
	ast.TransformExpr(d, func(e ast.Expr) ast.Expr {
		switch x := e.(type) {
		case *ast.Ident:
			if repl, ok := sub[x.Name]; ok {
				return &ast.Ident{Meta: ast.Meta{Pos: x.Pos}, Name: repl}
			}
		case *ast.New:
			if repl, ok := sub[x.ClassName]; ok {
				x.ClassName = repl
			}
		}
		return e
	})
}

// mangle suffixes the instance name with its type arguments.
func mangle(d ast.Decl, args []*types.Type) {
	suffix := ""
	for _, a := range args {
		suffix += "_" + strings.ToLower(typeName(a))
	}
	switch n := d.(type) {
	case *ast.FuncDef:
		n.Name += suffix
	case *ast.ClassDef:
		n.Name += suffix
	}
}

// specialize applies the type-directed rewrites: + over strings becomes
// string_concat, and swap calls pick the typed variant for primitive
// element types.
func (t *Instantiator) specialize(d ast.Decl, args []*types.Type) {
	stringy := false
	var prim *types.Type
	for _, a := range args {
		if a.Kind == types.String {
			stringy = true
		}
		if prim == nil && a.IsPrimitive() {
			prim = a
		}
	}

	ast.TransformExpr(d, func(e ast.Expr) ast.Expr {
		switch x := e.(type) {
		case *ast.BinOp:
			if x.Op == ast.OpAdd && stringy {
				return &ast.Call{
					Meta:   ast.Meta{Pos: x.Pos},
					Callee: &ast.Ident{Meta: ast.Meta{Pos: x.Pos}, Name: "string_concat"},
					Args:   []ast.Expr{x.X, x.Y},
				}
			}
		case *ast.Call:
			if id, ok := x.Callee.(*ast.Ident); ok && id.Name == "swap" && prim != nil {
				switch prim.Kind {
				case types.Int:
					id.Name = "swap_int"
				case types.Float:
					id.Name = "swap_float"
				default:
					id.Name = fmt.Sprintf("swap_%s", strings.ToLower(prim.Kind.String()))
				}
			}
		}
		return e
	})
}
