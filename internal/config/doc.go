// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package config loads the compiler's JSON configuration file: debug
// flags, optimizer level and per-pass toggles, and module search paths.
// Values merge over defaults; command-line flags override both.
package config
