// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package symtab implements the scope-aware name-to-type mapping used by
// the type checker and the code generator. The table is a stack of scopes
// with its lifecycle bound to one compilation run.
package symtab
