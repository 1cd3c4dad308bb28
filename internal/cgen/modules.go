// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import "fmt"

// emitModules lowers each import to the three-part module surface:
//
//  1. a struct type <Mod>_Module holding function pointers for the
//     module's exported symbols,
//  2. extern declarations for those symbols under their mangled names
//     <Mod>_<symbol>, and
//  3. a constant instance of the struct initialized from the mangled
//     functions.
//
// Selective imports with aliases emit a #define per symbol. Qualified uses
// mod.f(args) lower at the call site to <Mod>_f(0, args).
func (e *Emitter) emitModules() {
	for _, imp := range e.imports {
		mod := e.checkIdent(imp.Module)
		exports := e.ModuleExports[mod]
		if len(imp.Selective) > 0 {
			for _, sym := range imp.Selective {
				e.line("extern int %s_%s();", mod, e.checkIdent(sym.Name))
				alias := sym.Alias
				if alias == "" {
					alias = sym.Name
				}
				e.line("#define %s %s_%s", e.checkIdent(alias), mod, sym.Name)
			}
			e.blank()
			continue
		}

		structName := fmt.Sprintf("%s_Module", mod)
		e.line("typedef struct {")
		e.indent++
		for _, sym := range exports {
			e.line("int (*%s)();", e.checkIdent(sym))
		}
		if len(exports) == 0 {
			e.line("int _unused;")
		}
		e.indent--
		e.line("} %s;", structName)
		for _, sym := range exports {
			e.line("extern int %s_%s();", mod, sym)
		}
		instance := imp.Alias
		if instance == "" {
			instance = mod
		}
		if len(exports) > 0 {
			e.printf("static const %s _%s_instance = { ", structName, instance)
			for i, sym := range exports {
				if i > 0 {
					e.printf(", ")
				}
				e.printf("%s_%s", mod, sym)
			}
			e.printf(" };\n")
		}
		if imp.Alias != "" {
			for _, sym := range exports {
				e.line("#define %s_%s %s_%s", e.checkIdent(imp.Alias), sym, mod, sym)
			}
		}
		e.blank()
	}
}

// moduleForAlias resolves an identifier used as the left side of a
// qualified reference to the module it names, honoring aliases.
func (e *Emitter) moduleForAlias(name string) (string, bool) {
	for _, imp := range e.imports {
		if imp.Alias == name || (imp.Alias == "" && imp.Module == name) {
			return imp.Module, true
		}
	}
	return "", false
}

// selectiveAlias reports whether name was introduced by a selective import
// and returns the mangled target.
func (e *Emitter) selectiveAlias(name string) (string, bool) {
	for _, imp := range e.imports {
		for _, sym := range imp.Selective {
			alias := sym.Alias
			if alias == "" {
				alias = sym.Name
			}
			if alias == name {
				return fmt.Sprintf("%s_%s", imp.Module, sym.Name), true
			}
		}
	}
	return "", false
}
