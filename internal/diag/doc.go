// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package diag implements the diagnostics collector shared by every stage of
// the compiler. A diagnostic carries kind, file path, line, column, and a
// human-readable message. The collector maintains separate error and warning
// counters; the CLI returns a nonzero status when the error counter is
// positive at the end of the run.
package diag
