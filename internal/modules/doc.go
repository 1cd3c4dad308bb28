// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package modules implements the module resolver: locating module source
// on the configured search paths, parsing and typing their exports,
// detecting import cycles, and consulting the best-effort sqlite cache
// keyed by content hash.
package modules
