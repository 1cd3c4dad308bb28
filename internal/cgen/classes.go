// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import (
	"fmt"
	"sort"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/types"
)

// classOrder returns the class names in declaration order.
func (e *Emitter) classOrder() []string {
	names := make([]string, 0, len(e.classIDs))
	for name := range e.classIDs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return e.classIDs[names[i]] < e.classIDs[names[j]] })
	return names
}

// hasSubclasses reports whether any declared class extends name, directly
// or transitively.
func (e *Emitter) hasSubclasses(name string) bool {
	for _, cd := range e.classDefs {
		for base := cd.Extends; base != ""; {
			if base == name {
				return true
			}
			bd, ok := e.classDefs[base]
			if !ok {
				break
			}
			base = bd.Extends
		}
	}
	return false
}

// emitClassLayouts writes one struct per class. Inherited fields are
// flattened into the subclass struct rather than composing a base struct.
// Classes that head a hierarchy carry an integer type tag as the first
// member; subclasses repeat it so the tag stays at offset zero across the
// hierarchy and polymorphic dispatch can read it through a base pointer.
func (e *Emitter) emitClassLayouts() {
	for _, name := range e.classOrder() {
		cd := e.classDefs[name]
		tagged := e.hasSubclasses(name) || e.rootOf(name) != name
		e.line("typedef struct {")
		e.indent++
		if tagged {
			e.line("int type;")
		}
		for _, f := range cd.Fields {
			e.line("%s;", e.cdecl(e.fieldType(name, f.Name), e.checkIdent(f.Name)))
		}
		for base := cd.Extends; base != ""; {
			bd, ok := e.classDefs[base]
			if !ok {
				break
			}
			for _, f := range bd.Fields {
				e.line("%s;", e.cdecl(e.fieldType(base, f.Name), f.Name))
			}
			base = bd.Extends
		}
		if !tagged && len(cd.Fields) == 0 && cd.Extends == "" {
			e.line("int _unused;")
		}
		e.indent--
		e.line("} %s;", e.checkIdent(name))
		e.blank()
		e.stats.Classes++
	}
}

// rootOf walks the base chain to the hierarchy root.
func (e *Emitter) rootOf(name string) string {
	for {
		cd, ok := e.classDefs[name]
		if !ok || cd.Extends == "" {
			return name
		}
		name = cd.Extends
	}
}

func (e *Emitter) fieldType(class, field string) *types.Type {
	if cls, ok := e.classes[class]; ok {
		if ft, found := cls.FieldType(field); found {
			return ft
		}
	}
	return types.UnknownType
}

// emitConstructors writes the new_C allocator for each class: allocate,
// zero-initialize, stamp the type tag, apply field initializers.
func (e *Emitter) emitConstructors() {
	for _, name := range e.classOrder() {
		cd := e.classDefs[name]
		tagged := e.hasSubclasses(name) || e.rootOf(name) != name
		e.line("static %s* new_%s(void) {", name, name)
		e.indent++
		e.line("%s* self = calloc(1, sizeof(%s));", name, name)
		e.line("if (self == NULL) {")
		e.line("    fprintf(stderr, \"out of memory\\n\");")
		e.line("    exit(1);")
		e.line("}")
		if tagged {
			e.line("self->type = %d;", e.classIDs[name])
		}
		for _, f := range cd.Fields {
			if f.Init != nil {
				e.line("self->%s = %s;", f.Name, e.expr(f.Init))
			}
		}
		e.line("return self;")
		e.indent--
		e.line("}")
		e.blank()
	}
}

// emitMethods writes each method C::m as a free function C_m with the
// receiver as the first parameter, then a dispatcher for every method that
// subclasses override.
func (e *Emitter) emitMethods() {
	for _, name := range e.classOrder() {
		cd := e.classDefs[name]
		for _, m := range cd.Methods {
			e.emitFuncDef(m, name)
			e.stats.Methods++
		}
	}
	e.emitDispatchers()
}

// overriders returns the subclasses of root that define method m,
// innermost declaration order.
func (e *Emitter) overriders(root, method string) []string {
	var out []string
	for _, name := range e.classOrder() {
		if name == root {
			continue
		}
		if e.rootOf(name) != e.rootOf(root) {
			continue
		}
		cd := e.classDefs[name]
		for _, m := range cd.Methods {
			if m.Name == method {
				out = append(out, name)
			}
		}
	}
	return out
}

// emitDispatchers writes the type-tag dispatch functions used for
// polymorphic calls; no vtable is generated.
func (e *Emitter) emitDispatchers() {
	for _, name := range e.classOrder() {
		if !e.hasSubclasses(name) {
			continue
		}
		cd := e.classDefs[name]
		for _, m := range cd.Methods {
			subs := e.overriders(name, m.Name)
			if len(subs) == 0 {
				continue
			}
			sig := e.methodSignature(name, m)
			e.line("static %s {", e.dispatchHeader(name, m, sig))
			e.indent++
			e.line("switch (self->type) {")
			for _, sub := range subs {
				e.line("case %d:", e.classIDs[sub])
				e.line("    %s%s_%s((%s*)self%s);", returnKeyword(sig.Return), sub, m.Name, sub, e.forwardArgs(m))
				if sig.Return.Kind == types.Void {
					e.line("    return;")
				}
			}
			e.line("default:")
			e.line("    %s%s_%s(self%s);", returnKeyword(sig.Return), name, m.Name, e.forwardArgs(m))
			if sig.Return.Kind == types.Void {
				e.line("    return;")
			}
			e.line("}")
			e.indent--
			e.line("}")
			e.blank()
		}
	}
}

func returnKeyword(ret *types.Type) string {
	if ret != nil && ret.Kind == types.Void {
		return ""
	}
	return "return "
}

func (e *Emitter) methodSignature(class string, m *ast.FuncDef) *types.Type {
	if cls, ok := e.classes[class]; ok {
		if sig, found := cls.MethodType(m.Name); found {
			return sig
		}
	}
	if t := m.InferredType(); t != nil && t.IsCallable() {
		return t
	}
	return types.NewFunction(nil, types.UnknownType)
}

func (e *Emitter) dispatchHeader(class string, m *ast.FuncDef, sig *types.Type) string {
	params := fmt.Sprintf("%s* self", class)
	for i, p := range m.Params {
		var pt *types.Type
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		params += ", " + e.cdecl(pt, p.Name)
	}
	return fmt.Sprintf("%s %s_%s_dispatch(%s)", e.ctype(sig.Return), class, m.Name, params)
}

func (e *Emitter) forwardArgs(m *ast.FuncDef) string {
	out := ""
	for _, p := range m.Params {
		out += ", " + p.Name
	}
	return out
}
