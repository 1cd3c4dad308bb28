// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package typecheck implements type inference and validation for L ASTs.
//
// Infer caches its result on each node, so inference is idempotent. Type
// errors never halt compilation: the offending node degrades to Unknown and
// downstream inference proceeds, which lets one run report every type error
// in the file.
package typecheck
