// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package types_test

import (
	"testing"

	"github.com/playbymail/lc/internal/types"
)

func TestPrimitiveInterning(t *testing.T) {
	t.Parallel()
	if types.Primitive(types.Int) != types.IntType {
		t.Fatal("Primitive(Int) is not the singleton")
	}
	if types.Clone(types.IntType) != types.IntType {
		t.Fatal("Clone of a primitive must return the same instance")
	}
	if types.Clone(types.StringType) != types.StringType {
		t.Fatal("Clone of a primitive must return the same instance")
	}
}

func TestCloneCompoundIsDisjoint(t *testing.T) {
	t.Parallel()
	arr := types.NewArray(types.NewArray(types.IntType))
	dup := types.Clone(arr)
	if dup == arr || dup.Elem == arr.Elem {
		t.Fatal("Clone of a compound must allocate fresh nodes")
	}
	if !types.Equal(arr, dup) {
		t.Fatal("Clone must preserve structure")
	}
}

func TestEquality(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		a, b *types.Type
		want bool
	}{
		{"int_int", types.IntType, types.IntType, true},
		{"int_float", types.IntType, types.FloatType, false},
		{"array_same_elem", types.NewArray(types.IntType), types.NewArray(types.IntType), true},
		{"array_diff_elem", types.NewArray(types.IntType), types.NewArray(types.FloatType), false},
		{
			"func_same",
			types.NewFunction([]*types.Type{types.IntType}, types.BoolType),
			types.NewFunction([]*types.Type{types.IntType}, types.BoolType),
			true,
		},
		{
			"func_diff_arity",
			types.NewFunction([]*types.Type{types.IntType}, types.BoolType),
			types.NewFunction([]*types.Type{types.IntType, types.IntType}, types.BoolType),
			false,
		},
		{
			"class_nominal",
			types.NewClass("Point", nil, []types.Field{{Name: "x", Type: types.IntType}}, nil),
			types.NewClass("Point", nil, nil, nil),
			true,
		},
		{
			"class_diff_name",
			types.NewClass("Point", nil, nil, nil),
			types.NewClass("Shape", nil, nil, nil),
			false,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := types.Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestAssignability(t *testing.T) {
	t.Parallel()
	base := types.NewClass("Shape", nil, nil, nil)
	circle := types.NewClass("Circle", base, nil, nil)

	cases := []struct {
		name string
		a, b *types.Type
		want bool
	}{
		{"identity", types.IntType, types.IntType, true},
		{"int_widens_to_float", types.IntType, types.FloatType, true},
		{"float_does_not_narrow", types.FloatType, types.IntType, false},
		{"unknown_is_permissive_lhs", types.UnknownType, types.BoolType, true},
		{"unknown_is_permissive_rhs", types.BoolType, types.UnknownType, true},
		{"subclass_to_base", circle, base, true},
		{"base_to_subclass", base, circle, false},
		{"null_to_class", types.NullType, base, true},
		{"array_invariant", types.NewArray(types.IntType), types.NewArray(types.FloatType), false},
		{
			"function_invariant",
			types.NewFunction([]*types.Type{types.IntType}, types.IntType),
			types.NewFunction([]*types.Type{types.IntType}, types.FloatType),
			false,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := types.AssignableTo(tc.a, tc.b); got != tc.want {
				t.Fatalf("AssignableTo(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCommonType(t *testing.T) {
	t.Parallel()
	if got := types.CommonType(types.IntType, types.FloatType); got != types.FloatType {
		t.Fatalf("Int v Float = %s, want Float", got)
	}
	if got := types.CommonType(types.IntType, types.IntType); got != types.IntType {
		t.Fatalf("Int v Int = %s, want Int", got)
	}
	if got := types.CommonType(types.StringType, types.IntType); got != types.StringType {
		t.Fatalf("String v Int = %s, want String", got)
	}
	if got := types.CommonType(types.BoolType, types.IntType); got != types.UnknownType {
		t.Fatalf("Bool v Int = %s, want Unknown", got)
	}
}

func TestCurried(t *testing.T) {
	t.Parallel()
	add3 := types.NewFunction([]*types.Type{types.IntType, types.IntType, types.IntType}, types.IntType)

	c1 := types.NewCurried(add3, 1)
	if c1.Kind != types.Curried || c1.Applied != 1 || c1.Arity() != 2 {
		t.Fatalf("curried(1) = %s arity=%d", c1, c1.Arity())
	}

	// applying the rest through the curried value accumulates
	c2 := types.NewCurried(c1, 1)
	if c2.Kind != types.Curried || c2.Applied != 2 || c2.Arity() != 1 {
		t.Fatalf("curried(2) = %s arity=%d", c2, c2.Arity())
	}

	// full application reduces to the return type
	c3 := types.NewCurried(c2, 1)
	if c3 != types.IntType {
		t.Fatalf("full application = %s, want Int", c3)
	}
	if got := types.Reduce(&types.Type{Kind: types.Curried, Underlying: add3, Applied: 3}); got != types.IntType {
		t.Fatalf("Reduce = %s, want Int", got)
	}
}

func TestFieldLookupWalksBaseChain(t *testing.T) {
	t.Parallel()
	base := types.NewClass("Shape", nil, []types.Field{{Name: "area", Type: types.FloatType}}, nil)
	circle := types.NewClass("Circle", base, []types.Field{{Name: "radius", Type: types.FloatType}}, nil)

	if ft, ok := circle.FieldType("radius"); !ok || ft != types.FloatType {
		t.Fatalf("radius: %v %v", ft, ok)
	}
	if ft, ok := circle.FieldType("area"); !ok || ft != types.FloatType {
		t.Fatalf("inherited area: %v %v", ft, ok)
	}
	if _, ok := circle.FieldType("missing"); ok {
		t.Fatal("missing field should not resolve")
	}
}
