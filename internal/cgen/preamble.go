// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

// emitPreamble writes the fixed include set and the helper inlines every
// translation unit depends on: numeric-to-string conversion, string
// concatenation, the boolean constants, and the setjmp machinery backing
// try/catch lowering.
func (e *Emitter) emitPreamble() {
	e.line("/* generated by lc; do not edit */")
	e.blank()
	e.line("#include <stdio.h>")
	e.line("#include <stdlib.h>")
	e.line("#include <string.h>")
	e.line("#include <math.h>")
	e.line("#include <setjmp.h>")
	e.line("#include <stdbool.h>")
	e.line("#include <stddef.h>")
	e.blank()
	e.line("#define TRUE true")
	e.line("#define FALSE false")
	e.blank()
	e.line("static char _strbuf[64][64];")
	e.line("static int _strbuf_next = 0;")
	e.blank()
	e.line("static const char* to_string(double v) {")
	e.line("    char* buf = _strbuf[_strbuf_next];")
	e.line("    _strbuf_next = (_strbuf_next + 1) % 64;")
	e.line("    if (v == (long long)v) {")
	e.line("        snprintf(buf, 64, \"%%lld\", (long long)v);")
	e.line("    } else {")
	e.line("        snprintf(buf, 64, \"%%g\", v);")
	e.line("    }")
	e.line("    return buf;")
	e.line("}")
	e.blank()
	e.line("static const char* concat_any(const char* a, const char* b) {")
	e.line("    size_t na = strlen(a), nb = strlen(b);")
	e.line("    char* out = malloc(na + nb + 1);")
	e.line("    if (out == NULL) {")
	e.line("        fprintf(stderr, \"out of memory\\n\");")
	e.line("        exit(1);")
	e.line("    }")
	e.line("    memcpy(out, a, na);")
	e.line("    memcpy(out + na, b, nb + 1);")
	e.line("    return out;")
	e.line("}")
	e.blank()
	e.line("#define string_concat concat_any")
	e.blank()
	e.line("static jmp_buf _try_stack[32];")
	e.line("static int _try_depth = 0;")
	e.line("static char _error_message[1024];")
	e.line("static char _error_type[256];")
	e.line("static bool finally_executed = false;")
	e.blank()
	e.line("static void _extract_error_type(void) {")
	e.line("    const char* colon = strchr(_error_message, ':');")
	e.line("    size_t n = colon ? (size_t)(colon - _error_message) : strlen(_error_message);")
	e.line("    if (n >= sizeof(_error_type)) {")
	e.line("        n = sizeof(_error_type) - 1;")
	e.line("    }")
	e.line("    memcpy(_error_type, _error_message, n);")
	e.line("    _error_type[n] = 0;")
	e.line("}")
	e.blank()
}
