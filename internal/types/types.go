// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the type representations.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
	Void
	Null
	Unknown
	Array
	Class
	Function
	Lambda
	Curried
	Object // reserved for reflection use
)

// String implements the Stringer interface.
func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Void:
		return "Void"
	case Null:
		return "Null"
	case Unknown:
		return "Unknown"
	case Array:
		return "Array"
	case Class:
		return "Class"
	case Function:
		return "Function"
	case Lambda:
		return "Lambda"
	case Curried:
		return "Curried"
	case Object:
		return "Object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field is a named field of a class type.
type Field struct {
	Name string
	Type *Type
}

// Method is a named method of a class type.
// The signature's first parameter is not the receiver; the receiver is
// implicit and supplied by the code generator.
type Method struct {
	Name      string
	Signature *Type // Function kind
}

// Type is the canonical type representation. Primitives are interned
// singletons (see intern.go) and are never modified, so pointer identity is
// meaningful for them. Compound types are not frozen: the checker sets class
// bases, appends fields and methods, and patches inferred return types after
// construction.
type Type struct {
	Kind Kind

	Elem *Type // Array element; non-nil for Array

	// Class attributes. The base chain is finite and acyclic.
	Name    string
	Base    *Type
	Fields  []Field
	Methods []Method

	// Function and Lambda attributes. len(Params) is the arity.
	Params []*Type
	Return *Type

	// Curried attributes. Applied < Underlying arity.
	Underlying *Type
	Applied    int
}

// String renders the type for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Array:
		return fmt.Sprintf("Array[%s]", t.Elem)
	case Class:
		return t.Name
	case Function, Lambda:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.Return)
	case Curried:
		return fmt.Sprintf("%s applied %d", t.Underlying, t.Applied)
	}
	return t.Kind.String()
}

// IsPrimitive reports whether the type is one of the interned singletons.
func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case Int, Float, Bool, String, Void, Null, Unknown, Object:
		return true
	}
	return false
}

// IsNumeric reports whether the type is Int or Float.
func (t *Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// IsCallable reports whether the type can appear as the callee of a call.
func (t *Type) IsCallable() bool {
	switch t.Kind {
	case Function, Lambda, Curried:
		return true
	}
	return false
}

// Arity returns the number of parameters still expected by a callable.
// For a curried type this is the remaining, unapplied count.
func (t *Type) Arity() int {
	switch t.Kind {
	case Function, Lambda:
		return len(t.Params)
	case Curried:
		return len(t.Underlying.Params) - t.Applied
	}
	return 0
}

// FieldType looks up a field along the base chain.
func (t *Type) FieldType(name string) (*Type, bool) {
	for c := t; c != nil && c.Kind == Class; c = c.Base {
		for _, f := range c.Fields {
			if f.Name == name {
				return f.Type, true
			}
		}
	}
	return nil, false
}

// MethodType looks up a method along the base chain.
func (t *Type) MethodType(name string) (*Type, bool) {
	for c := t; c != nil && c.Kind == Class; c = c.Base {
		for _, m := range c.Methods {
			if m.Name == name {
				return m.Signature, true
			}
		}
	}
	return nil, false
}

// Equal reports type equality: structural for primitives, arrays, functions,
// and curried types; nominal (by class name) for classes.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Array:
		return Equal(a.Elem, b.Elem)
	case Class:
		return a.Name == b.Name
	case Function, Lambda:
		if len(a.Params) != len(b.Params) || !Equal(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	case Curried:
		return a.Applied == b.Applied && Equal(a.Underlying, b.Underlying)
	}
	// primitives share a kind
	return true
}

// AssignableTo reports assignment compatibility of a value of type a to a
// slot of type b.
//
// Unknown is permissive in both directions so that inference can proceed
// after an earlier error. Numeric widening Int -> Float is permitted here
// and only here. Class subtyping walks the base chain. Array element types
// and function parameter/return types are invariant.
func AssignableTo(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == Unknown || b.Kind == Unknown {
		return true
	}
	if Equal(a, b) {
		return true
	}
	if a.Kind == Int && b.Kind == Float {
		return true
	}
	if a.Kind == Null && (b.Kind == Class || b.Kind == Object) {
		return true
	}
	if a.Kind == Class && b.Kind == Class {
		for c := a.Base; c != nil; c = c.Base {
			if c.Name == b.Name {
				return true
			}
		}
	}
	return false
}

// CommonType returns the least upper bound used by arithmetic and by array
// literals: Int with Float widens to Float; String absorbs numerics (string
// promotion; the checker types + with a String operand before reaching
// here, so it meets this rule through array literals). Unknown absorbs
// nothing and yields Unknown.
func CommonType(a, b *Type) *Type {
	if a == nil || b == nil || a.Kind == Unknown || b.Kind == Unknown {
		return UnknownType
	}
	if Equal(a, b) {
		return a
	}
	if a.IsNumeric() && b.IsNumeric() {
		return FloatType
	}
	if a.Kind == String && b.IsNumeric() || b.Kind == String && a.IsNumeric() {
		return StringType
	}
	return UnknownType
}

// Reduce collapses a curried type whose applied count has reached the
// underlying arity to the underlying return type. Other types are returned
// unchanged.
func Reduce(t *Type) *Type {
	if t != nil && t.Kind == Curried && t.Applied >= len(t.Underlying.Params) {
		return t.Underlying.Return
	}
	return t
}
