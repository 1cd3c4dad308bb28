// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package rewrite

import (
	"log"

	"github.com/playbymail/lc/internal/ast"
)

// Rewriter is an AST-to-AST transformation run before code generation.
type Rewriter interface {
	Name() string
	Rewrite(*ast.Program) (*ast.Program, error)
}

// Pipeline runs rewriters in order, stopping on the first error. The
// canonical order is macros, templates, aspects, optimizer.
type Pipeline struct {
	rewriters []Rewriter
	debug     int
}

// NewPipeline returns a pipeline over the given rewriters.
func NewPipeline(rewriters ...Rewriter) *Pipeline {
	return &Pipeline{rewriters: rewriters}
}

// SetDebugLevel adjusts diagnostic verbosity.
func (p *Pipeline) SetDebugLevel(k int) { p.debug = k }

// Run applies each rewriter in order.
func (p *Pipeline) Run(prog *ast.Program) (*ast.Program, error) {
	for _, r := range p.rewriters {
		out, err := r.Rewrite(prog)
		if err != nil {
			return prog, err
		}
		if p.debug >= 1 {
			log.Printf("[rewrite] %s applied\n", r.Name())
		}
		prog = out
	}
	return prog, nil
}
