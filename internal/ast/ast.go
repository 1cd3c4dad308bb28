// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package ast

import (
	"github.com/playbymail/lc/internal/tokens"
	"github.com/playbymail/lc/internal/types"
)

// Node is implemented by every AST node. Nodes record their source position
// and, after type analysis, their inferred type. Child nodes are owned by
// their parent; a program is a tree with no back-edges. Symbol references
// are by name, resolved through the symbol table, never by pointer.
type Node interface {
	NodePos() tokens.Position
	InferredType() *types.Type
	SetInferredType(*types.Type)
}

// Decl is a top-level form.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Meta is embedded by every node and carries the position and the inferred
// type slot.
type Meta struct {
	Pos tokens.Position
	Typ *types.Type
}

// NodePos implements the Node interface.
func (m *Meta) NodePos() tokens.Position { return m.Pos }

// InferredType implements the Node interface.
func (m *Meta) InferredType() *types.Type { return m.Typ }

// SetInferredType implements the Node interface.
func (m *Meta) SetInferredType(t *types.Type) { m.Typ = t }

// Binary and unary operators are stored as single-character discriminants.
// This encoding is a contract between the parser, the rewriters, and the
// code generator: multi-character source operators are folded to one byte.
const (
	OpAdd       = '+'
	OpSub       = '-'
	OpMul       = '*'
	OpDiv       = '/'
	OpLt        = '<'
	OpGt        = '>'
	OpEq        = 'E' // ==
	OpNe        = 'N' // !=
	OpGe        = 'G' // >=
	OpLe        = 'L' // <=
	OpAnd       = '&' // &&
	OpOr        = '|' // ||
	OpBitAnd    = 'a'
	OpBitOr     = 'o'
	OpBitXor    = 'x'
	OpRange     = 'R' // ..
	OpPaste     = 'P' // ## token paste, macro bodies only
	OpNeg       = '-'
	OpNot       = '!'
	OpStringify = '#' // macro bodies only
)

// OpText returns the source spelling for an operator discriminant.
func OpText(op byte) string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpRange:
		return ".."
	case OpPaste:
		return "##"
	}
	return string(op)
}

// IsComparison reports whether the operator yields Bool.
func IsComparison(op byte) bool {
	switch op {
	case OpLt, OpGt, OpEq, OpNe, OpGe, OpLe:
		return true
	}
	return false
}

// IsLogical reports whether the operator is && or ||.
func IsLogical(op byte) bool {
	return op == OpAnd || op == OpOr
}

// IsArithmetic reports whether the operator is +, -, *, or /.
func IsArithmetic(op byte) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}
