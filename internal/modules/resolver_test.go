// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package modules_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/maloquacious/semver"
	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/modules"
	"github.com/playbymail/lc/internal/types"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".l"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newResolver(t *testing.T, dir string) (*modules.Resolver, *diag.Collector) {
	t.Helper()
	diags := diag.NewCollector(&bytes.Buffer{})
	v := semver.Version{Major: 0, Minor: 1}
	return modules.NewResolver([]string{dir}, nil, v, "test-run", diags), diags
}

func TestLoad_ExportsAndVisibility(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeModule(t, dir, "math_lib", `
module math_lib;
export func multiply(a: Int, b: Int) -> Int { return a * b; }
func add(a: Int, b: Int) -> Int { return a + b; }
func _scratch() { print 0; }
`)
	r, diags := newResolver(t, dir)
	mod, err := r.Load("math_lib")
	if err != nil {
		t.Fatal(err)
	}
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	if mod.State != modules.Loaded {
		t.Fatalf("state = %s, want loaded", mod.State)
	}
	if mod.ContentHash == "" {
		t.Fatal("content hash must be recorded")
	}

	// private symbols stay out of the export surface
	if diff := deep.Equal(mod.ExportNames(), []string{"multiply", "add"}); diff != nil {
		t.Fatal(diff)
	}
	var vis []string
	for _, x := range mod.Exports {
		vis = append(vis, x.Visibility.String())
	}
	if diff := deep.Equal(vis, []string{"public", "internal", "private"}); diff != nil {
		t.Fatal(diff)
	}

	et := mod.ExportTypes()
	mult := et["multiply"]
	if mult == nil || mult.Kind != types.Function || mult.Return.Kind != types.Int {
		t.Fatalf("multiply type: %s", mult)
	}
}

func TestLoad_NameDerivedFromFileStem(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeModule(t, dir, "scriptish", "main { print 1; }")
	r, _ := newResolver(t, dir)
	mod, err := r.Load("scriptish")
	if err != nil {
		t.Fatal(err)
	}
	if mod.Root.Module == nil || mod.Root.Module.Name != "scriptish" {
		t.Fatalf("module name = %+v, want scriptish", mod.Root.Module)
	}
}

func TestLoad_MissingModule(t *testing.T) {
	t.Parallel()
	r, _ := newResolver(t, t.TempDir())
	if _, err := r.Load("nope"); !errors.Is(err, cerrs.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestLoad_DependenciesFollowImports(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeModule(t, dir, "a", "module a;\nimport b;\nexport func fa() { print 1; }")
	writeModule(t, dir, "b", "module b;\nexport func fb() { print 2; }")
	r, diags := newResolver(t, dir)
	mod, err := r.Load("a")
	if err != nil {
		t.Fatal(err)
	}
	if diags.Errors() != 0 {
		t.Fatalf("errors: %v", diags.All())
	}
	if diff := deep.Equal(mod.Dependencies, []string{"b"}); diff != nil {
		t.Fatal(diff)
	}
	if b, ok := r.Modules()["b"]; !ok || b.State != modules.Loaded {
		t.Fatal("dependency b was not loaded")
	}
}

// a module in state loading must never be entered recursively
func TestLoad_CycleIsReportedAndPartial(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeModule(t, dir, "a", "module a;\nimport b;\nexport func fa() { print 1; }")
	writeModule(t, dir, "b", "module b;\nimport a;\nexport func fb() { print 2; }")
	r, diags := newResolver(t, dir)

	mod, err := r.Load("a")
	if err != nil {
		t.Fatalf("outer load must succeed, got %v", err)
	}
	if diags.Errors() == 0 {
		t.Fatal("expected a circular-import diagnostic")
	}
	if mod.State != modules.Loaded {
		t.Fatalf("a should finish loading, state = %s", mod.State)
	}
	// the partially loaded module still exposed its declared exports
	b := r.Modules()["b"]
	if b == nil || len(b.ExportNames()) == 0 {
		t.Fatal("b should expose exports for shallow linking")
	}
}

func TestLoad_IsMemoized(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeModule(t, dir, "m", "module m;\nexport func f() { print 1; }")
	r, _ := newResolver(t, dir)
	first, err := r.Load("m")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Load("m")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("repeat loads must return the same module")
	}
}
