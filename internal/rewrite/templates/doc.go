// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package templates implements the template instantiator. A template binds
// a name, a list of constrained type parameters, and a body declaration;
// instantiation clones the body, substitutes the type parameters, checks
// the constraints, and specializes string concatenation and swap calls for
// the concrete types.
package templates
