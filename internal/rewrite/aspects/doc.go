// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package aspects implements the aspect weaver. Pointcuts select functions
// by glob pattern over their names; before and after advice bracket the
// body, and around advice replaces it, with proceed() splicing the
// original statements back in.
package aspects
