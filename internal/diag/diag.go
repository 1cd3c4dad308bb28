// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diag

import (
	"fmt"
	"io"
	"os"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Syntax Kind = iota
	Semantic
	Type
	Name
	Memory
	IO
	Limit
	Runtime
	Undefined
)

// String implements the Stringer interface.
func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case Semantic:
		return "Semantic"
	case Type:
		return "Type"
	case Name:
		return "Name"
	case Memory:
		return "Memory"
	case IO:
		return "IO"
	case Limit:
		return "Limit"
	case Runtime:
		return "Runtime"
	case Undefined:
		return "Undefined"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Severity separates errors from warnings. Only errors count toward the
// compiler's exit status.
type Severity int

const (
	Error Severity = iota
	Warning
)

// String implements the Stringer interface.
func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single message tied to a source position.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Path     string
	Line     int
	Col      int
	Message  string
}

// String formats the diagnostic the way the CLI prints it on stderr.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s: %s", d.Path, d.Line, d.Col, d.Severity, d.Kind, d.Message)
}

// Collector accumulates diagnostics for one compilation run. Every error is
// printed once, in the order it was reported, and counted so the driver can
// return a nonzero exit status.
type Collector struct {
	w        io.Writer
	all      []Diagnostic
	errors   int
	warnings int
}

// NewCollector returns a collector that prints to w.
// Passing nil selects stderr.
func NewCollector(w io.Writer) *Collector {
	if w == nil {
		w = os.Stderr
	}
	return &Collector{w: w}
}

// Report adds a diagnostic and prints it.
func (c *Collector) Report(d Diagnostic) {
	c.all = append(c.all, d)
	if d.Severity == Warning {
		c.warnings++
	} else {
		c.errors++
	}
	_, _ = fmt.Fprintf(c.w, "%s\n", d)
}

// Errorf reports an error diagnostic.
func (c *Collector) Errorf(kind Kind, path string, line, col int, format string, args ...any) {
	c.Report(Diagnostic{Severity: Error, Kind: kind, Path: path, Line: line, Col: col, Message: fmt.Sprintf(format, args...)})
}

// Warnf reports a warning diagnostic.
func (c *Collector) Warnf(kind Kind, path string, line, col int, format string, args ...any) {
	c.Report(Diagnostic{Severity: Warning, Kind: kind, Path: path, Line: line, Col: col, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the number of errors reported so far.
func (c *Collector) Errors() int { return c.errors }

// Warnings returns the number of warnings reported so far.
func (c *Collector) Warnings() int { return c.warnings }

// All returns the diagnostics in report order.
// The slice is owned by the collector and must not be altered.
func (c *Collector) All() []Diagnostic { return c.all }
