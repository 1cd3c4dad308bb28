// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package lexer implements the lexer for L source files.
//
// The lexer produces tokens on demand and keeps every scanned token in a
// buffer, so the parser can peek arbitrarily far ahead and rewind to a saved
// checkpoint when a speculative parse fails. The only faults it can detect
// are an unterminated string literal and a stray character that begins no
// token; both produce an Invalid token and scanning continues.
package lexer
