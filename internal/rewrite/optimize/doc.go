// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package optimize implements the configurable AST optimizer passes:
// constant folding, dead-code elimination, redundant-assignment removal,
// constant propagation in straight-line code, common-subexpression
// hoisting, and scope narrowing. Level 1 enables folding and dead code;
// level 2 enables all passes. Every pass is idempotent and increments a
// counter in the statistics record.
package optimize
