// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package macros implements the macro expander. A macro binds a name and
// parameter list to a template AST; expansion substitutes argument ASTs
// for parameter identifiers, # stringifies an argument, and ## pastes
// adjacent names into a new identifier. Expansion runs bottom-up until no
// macro calls remain, bounded by a configurable pass limit.
package macros
