// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package cgen implements the C code generator.
//
// Emit writes one translation unit per input program: a fixed preamble of
// includes and helper inlines, the imported-module surface, flattened class
// struct layouts with constructors, hoisted lambda and composition
// functions, methods as free functions with an explicit receiver, and a
// main function holding the lowered top-level statements. Exceptions lower
// onto a fixed-depth setjmp/longjmp stack with a shared error buffer.
//
// The emitter aborts on the first fault: a partially written C file is not
// useful, so unlike the front end there is no recovery.
package cgen
