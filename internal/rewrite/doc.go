// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package rewrite defines the AST-to-AST rewriter interface and the
// ordered pipeline that runs macro expansion, template instantiation,
// aspect weaving, and the optimizer passes before code generation.
package rewrite
