// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package ast defines the abstract syntax tree for L programs.
//
// The tree is a sum over node structs: declarations, statements, and
// expressions, each embedding Meta for the source position and the inferred
// type slot filled in by the type checker. Parents exclusively own their
// children and there are no back-edges; cloning produces a fully disjoint
// tree, which the template instantiator relies on.
package ast
