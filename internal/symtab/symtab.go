// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package symtab

import (
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/types"
)

// Symbol is a named binding with the depth of the scope that owns it.
type Symbol struct {
	Name  string
	Type  *types.Type
	Depth int
}

type scope struct {
	names map[string]*Symbol
}

// Table is a stack of scopes. Lookup returns the innermost match; shadowing
// an outer name is permitted, redeclaring within one scope is not.
type Table struct {
	scopes []scope
}

// New returns a table with the outermost (global) scope already entered.
func New() *Table {
	t := &Table{}
	t.EnterScope()
	return t
}

// Depth returns the current scope depth. The global scope is depth 0.
func (t *Table) Depth() int {
	return len(t.scopes) - 1
}

// EnterScope pushes a new innermost scope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, scope{names: make(map[string]*Symbol)})
}

// ExitScope pops the innermost scope, dropping its symbols.
// It panics if only the global scope remains.
func (t *Table) ExitScope() {
	if len(t.scopes) <= 1 {
		panic("assert(depth > 0)")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Add binds a name in the current scope.
// Returns ErrRedeclaration if the name is already bound at this depth.
func (t *Table) Add(name string, typ *types.Type) error {
	s := t.scopes[len(t.scopes)-1]
	if _, ok := s.names[name]; ok {
		return cerrs.ErrRedeclaration
	}
	s.names[name] = &Symbol{Name: name, Type: typ, Depth: t.Depth()}
	return nil
}

// Lookup returns the innermost binding for name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent returns the binding for name in the current scope only.
func (t *Table) LookupCurrent(name string) (*Symbol, bool) {
	sym, ok := t.scopes[len(t.scopes)-1].names[name]
	return sym, ok
}
