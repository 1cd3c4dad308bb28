// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package types implements the L type representations: primitives, arrays,
// nominal classes with single inheritance, function and lambda types, and
// curried partial applications.
//
// Equality is structural except for classes, which compare by name.
// Assignment compatibility adds Int -> Float widening and permissive Unknown
// in both directions so inference can continue past earlier errors.
// Primitive types are interned singletons; Clone preserves their identity.
package types
