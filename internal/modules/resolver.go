// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package modules

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/maloquacious/semver"
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/parser"
	"github.com/playbymail/lc/internal/stdlib"
	"github.com/playbymail/lc/internal/typecheck"
	"github.com/playbymail/lc/stores/sqlite"
)

// Cache is the store surface the resolver consults. It is best-effort:
// the module is always parsed; a hit is only logged, and a miss or an
// error changes nothing.
type Cache interface {
	GetModule(name, contentHash string) (*sqlite.ModuleRow, error)
	SaveModule(row sqlite.ModuleRow) error
}

// Resolver loads and links imported modules. Load transitions a module
// unloaded -> loading -> loaded; a module found in state loading is a
// circular import, reported and returned partially loaded so callers can
// still link shallowly against its declared exports.
type Resolver struct {
	paths   []string
	diags   *diag.Collector
	cache   Cache
	runID   string
	version semver.Version
	debug   int

	mods map[string]*Module
}

// NewResolver returns a resolver over the given search paths.
// The cache may be nil.
func NewResolver(paths []string, cache Cache, version semver.Version, runID string, diags *diag.Collector) *Resolver {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return &Resolver{
		paths:   paths,
		diags:   diags,
		cache:   cache,
		runID:   runID,
		version: version,
		mods:    make(map[string]*Module),
	}
}

// SetDebugLevel adjusts diagnostic verbosity.
func (r *Resolver) SetDebugLevel(k int) { r.debug = k }

// Modules returns every module touched by this run.
func (r *Resolver) Modules() map[string]*Module { return r.mods }

// Load returns the named module in state Loaded. A circular dependency is
// reported and the partially loaded module returned. Only a hard I/O
// failure transitions the module back to Unloaded.
func (r *Resolver) Load(name string) (*Module, error) {
	if m, ok := r.mods[name]; ok {
		if m.State == Loading {
			r.diags.Errorf(diag.Semantic, m.Path, 0, 0, "circular import of module %s", name)
			return m, cerrs.ErrCircularImport
		}
		return m, nil
	}

	path, err := r.find(name)
	if err != nil {
		r.diags.Errorf(diag.IO, name, 0, 0, "module %s not found on search paths", name)
		return nil, err
	}

	m := &Module{Name: name, Path: path, State: Loading, Version: r.version, Metadata: map[string]string{"run": r.runID}}
	r.mods[name] = m

	src, err := os.ReadFile(path)
	if err != nil {
		m.State = Unloaded
		r.diags.Errorf(diag.IO, path, 0, 0, "read %s: %v", path, err)
		return nil, err
	}
	if hash, err := stdlib.HashFile(path); err == nil {
		m.ContentHash = hash
	}

	if r.cache != nil {
		if row, err := r.cache.GetModule(name, m.ContentHash); err == nil && row != nil && r.debug >= 1 {
			log.Printf("[modules] %s: cache hit for %s\n", name, row.ContentHash[:12])
		}
	}

	prog := r.parse(path, src)
	m.Root = prog
	r.link(m, prog)

	// dependencies load while this module is still in state Loading, so a
	// back-edge to it trips the cycle detector
	for _, dep := range m.Dependencies {
		if _, err := r.Load(dep); err != nil && !errors.Is(err, cerrs.ErrCircularImport) {
			r.diags.Errorf(diag.IO, path, 0, 0, "dependency %s of %s failed: %v", dep, name, err)
		}
	}
	m.State = Loaded

	if r.cache != nil {
		row := sqlite.ModuleRow{
			Name:         m.Name,
			Path:         m.Path,
			ContentHash:  m.ContentHash,
			Exports:      m.ExportNames(),
			Dependencies: m.Dependencies,
			Version:      m.Version.Short(),
			Compiler:     r.version.Short(),
			RunID:        r.runID,
		}
		if err := r.cache.SaveModule(row); err != nil && r.debug >= 1 {
			log.Printf("[modules] %s: cache save failed: %v\n", name, err)
		}
	}
	return m, nil
}

// find consults the search paths for <name>.l.
func (r *Resolver) find(name string) (string, error) {
	for _, dir := range r.paths {
		path := filepath.Join(dir, name+".l")
		if ok, err := stdlib.IsFileExists(path); err == nil && ok {
			return path, nil
		}
	}
	return "", cerrs.ErrModuleNotFound
}

// parse runs the front end over module source. The module name falls back
// to the file stem when the source opens with a bare main block.
func (r *Resolver) parse(path string, src []byte) *ast.Program {
	lx := lexer.New(path, src, r.diags)
	p := parser.New(path, lx, r.diags)
	p.SetDebugLevel(r.debug)
	prog := p.Parse()
	if prog.Module == nil {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		prog.Module = &ast.Module{Name: stem}
	}
	return prog
}

// link records the module's exports, imports, and dependency names from
// its parsed declarations, typing the exports with a fresh checker.
func (r *Resolver) link(m *Module, prog *ast.Program) {
	chk := typecheck.New(m.Path, r.diags)
	chk.CheckProgram(prog)

	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.Import:
			m.Imports = append(m.Imports, ImportRef{Module: n.Module, Alias: n.Alias, Selective: n.Selective})
			m.Dependencies = append(m.Dependencies, n.Module)
		case *ast.FuncDef:
			m.Exports = append(m.Exports, Export{
				Name:       n.Name,
				Visibility: visibilityOf(n.Name, n.Exported),
				Type:       n.InferredType(),
			})
		case *ast.ClassDef:
			m.Exports = append(m.Exports, Export{
				Name:       n.Name,
				Visibility: visibilityOf(n.Name, n.Exported),
				Type:       chk.Classes()[n.Name],
			})
		}
	}
}

// visibilityOf maps the export keyword and the leading-underscore
// convention onto the three-way visibility tag.
func visibilityOf(name string, exported bool) Visibility {
	if exported {
		return Public
	}
	if strings.HasPrefix(name, "_") {
		return Private
	}
	return Internal
}
