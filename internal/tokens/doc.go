// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package tokens defines the token kinds, positions, and keyword tables
// shared by the lexer and parser.
package tokens
