// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package optimize

import (
	"log"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
)

// PassStats counts the rewrites applied by each pass.
type PassStats struct {
	Folded           int
	DeadRemoved      int
	RedundantRemoved int
	Propagated       int
	CSEHoisted       int
	Narrowed         int
}

// Passes selects the individual passes. Level 1 enables folding and dead
// code; level 2 enables everything.
type Passes struct {
	Folding         bool
	DeadCode        bool
	RedundantAssign bool
	ConstProp       bool
	CSE             bool
	ScopeNarrow     bool
}

// ForLevel maps an optimizer level to its pass set.
func ForLevel(level int) Passes {
	switch {
	case level <= 0:
		return Passes{}
	case level == 1:
		return Passes{Folding: true, DeadCode: true}
	}
	return Passes{
		Folding:         true,
		DeadCode:        true,
		RedundantAssign: true,
		ConstProp:       true,
		CSE:             true,
		ScopeNarrow:     true,
	}
}

// Optimizer runs the configured passes. Each pass is idempotent; a second
// run of the same pass finds nothing left to do.
type Optimizer struct {
	path   string
	diags  *diag.Collector
	passes Passes
	debug  int
	stats  PassStats
	tmpSeq int
}

// New returns an optimizer with the pass set for the given level.
func New(srcPath string, level int, diags *diag.Collector) *Optimizer {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Optimizer{path: srcPath, diags: diags, passes: ForLevel(level)}
}

// SetPasses overrides the level-derived pass selection.
func (o *Optimizer) SetPasses(p Passes) { o.passes = p }

// SetDebugLevel adjusts diagnostic verbosity.
func (o *Optimizer) SetDebugLevel(k int) { o.debug = k }

// Stats returns the counters accumulated across runs.
func (o *Optimizer) Stats() PassStats { return o.stats }

// Name implements the Rewriter interface.
func (o *Optimizer) Name() string { return "optimizer" }

// Rewrite applies the enabled passes in a fixed order: folding first so
// later passes see literals, then dead-code and redundant-assignment
// removal, then constant propagation (which feeds more folding) over the
// statements that remain, then CSE and scope narrowing.
func (o *Optimizer) Rewrite(prog *ast.Program) (*ast.Program, error) {
	if o.passes.Folding {
		o.fold(prog)
	}
	if o.passes.DeadCode {
		o.deadCode(prog)
	}
	if o.passes.RedundantAssign {
		o.redundantAssign(prog)
	}
	if o.passes.ConstProp {
		o.propagate(prog)
		if o.passes.Folding {
			o.fold(prog)
		}
	}
	if o.passes.CSE {
		o.cse(prog)
	}
	if o.passes.ScopeNarrow {
		o.narrow(prog)
	}
	if o.debug >= 1 {
		log.Printf("[optimize] folded=%d dead=%d redundant=%d propagated=%d cse=%d narrowed=%d\n",
			o.stats.Folded, o.stats.DeadRemoved, o.stats.RedundantRemoved,
			o.stats.Propagated, o.stats.CSEHoisted, o.stats.Narrowed)
	}
	return prog, nil
}

// blocks visits every statement list in the program, allowing in-place
// list surgery.
func blocks(prog *ast.Program, f func(*[]ast.Stmt)) {
	ast.Walk(prog, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Block:
			f(&x.Stmts)
		case *ast.Switch:
			for _, c := range x.Cases {
				f(&c.Body)
			}
			if x.Default != nil {
				f(&x.Default.Body)
			}
		}
	})
}
