// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package stdlib provides file discovery and filesystem utilities for
// finding L module source files. It returns file metadata including the
// module name, SHA256 content hash, and modification time, and provides
// generic existence-checking functions for directories and files.
package stdlib
