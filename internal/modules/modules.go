// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package modules

import (
	"github.com/maloquacious/semver"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/types"
)

// LoadState tracks a module through resolution. A module in state Loading
// must never be entered recursively; that is the cycle detector.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

// String implements the Stringer interface.
func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "unknown"
}

// Visibility tags an exported symbol.
type Visibility int

const (
	Private Visibility = iota
	Internal
	Public
)

// String implements the Stringer interface.
func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Internal:
		return "internal"
	case Public:
		return "public"
	}
	return "unknown"
}

// Export is one symbol a module makes available.
type Export struct {
	Name       string
	Visibility Visibility
	Type       *types.Type
}

// ImportRef records one import found in the module source.
type ImportRef struct {
	Module    string
	Alias     string
	Selective []ast.ImportSym
}

// Module is a named compilation unit.
type Module struct {
	Name         string
	Path         string
	ContentHash  string
	Exports      []Export
	Imports      []ImportRef
	Dependencies []string
	Root         *ast.Program
	State        LoadState
	Version      semver.Version
	Metadata     map[string]string
}

// ExportTypes returns the public and internal exports as a name-to-type
// map, the shape the type checker consumes for qualified references.
func (m *Module) ExportTypes() map[string]*types.Type {
	out := make(map[string]*types.Type, len(m.Exports))
	for _, x := range m.Exports {
		if x.Visibility == Private {
			continue
		}
		out[x.Name] = x.Type
	}
	return out
}

// ExportNames returns the non-private export names in declaration order,
// the shape the code generator consumes for module struct emission.
func (m *Module) ExportNames() []string {
	out := make([]string, 0, len(m.Exports))
	for _, x := range m.Exports {
		if x.Visibility == Private {
			continue
		}
		out = append(out, x.Name)
	}
	return out
}
