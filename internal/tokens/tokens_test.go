// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package tokens_test

import (
	"testing"

	"github.com/playbymail/lc/internal/tokens"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	cases := []struct {
		ident string
		want  tokens.Kind
	}{
		{"if", tokens.KwIf},
		{"otherwise", tokens.KwOtherwise},
		{"pointcut", tokens.KwPointcut},
		{"macro", tokens.KwMacro},
		{"true", tokens.Boolean},
		{"false", tokens.Boolean},
		{"null", tokens.Null},
		{"iffy", tokens.Identifier},
		{"x", tokens.Identifier},
	}
	for _, tc := range cases {
		if got := tokens.Lookup(tc.ident); got != tc.want {
			t.Errorf("Lookup(%q) = %s, want %s", tc.ident, got, tc.want)
		}
	}
}

func TestKindStrings(t *testing.T) {
	t.Parallel()
	if got := tokens.Compose.String(); got != ">>" {
		t.Errorf("Compose = %q", got)
	}
	if got := tokens.HashHash.String(); got != "##" {
		t.Errorf("HashHash = %q", got)
	}
	if got := tokens.EOF.String(); got != "EOF" {
		t.Errorf("EOF = %q", got)
	}
}

func TestIsAssignOp(t *testing.T) {
	t.Parallel()
	if !(tokens.Token{Kind: tokens.PlusAssign}).IsAssignOp() {
		t.Error("+= must be an assign op")
	}
	if (tokens.Token{Kind: tokens.Assign}).IsAssignOp() {
		t.Error("plain = is not a compound assign op")
	}
}
