// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cgen

import (
	"fmt"

	"github.com/playbymail/lc/cerrs"
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/types"
)

// stmt lowers one statement. Nested emissions restore the indent level
// before returning.
func (e *Emitter) stmt(s ast.Stmt) {
	if e.err != nil {
		return
	}
	e.stats.Statements++
	switch n := s.(type) {
	case *ast.Block:
		e.line("{")
		e.indent++
		for _, inner := range n.Stmts {
			e.stmt(inner)
		}
		e.indent--
		e.line("}")
	case *ast.If:
		e.line("if (%s) {", e.expr(n.Cond))
		e.indent++
		e.stmtBody(n.Then)
		e.indent--
		if n.Else != nil {
			e.line("} else {")
			e.indent++
			e.stmtBody(n.Else)
			e.indent--
		}
		e.line("}")
	case *ast.While:
		e.line("while (%s) {", e.expr(n.Cond))
		e.indent++
		e.stmtBody(n.Body)
		e.indent--
		e.line("}")
	case *ast.DoWhile:
		e.line("do {")
		e.indent++
		e.stmtBody(n.Body)
		e.indent--
		e.line("} while (%s);", e.expr(n.Cond))
	case *ast.For:
		e.forStmt(n)
	case *ast.Switch:
		e.switchStmt(n)
	case *ast.Return:
		if n.Value != nil {
			e.line("return %s;", e.expr(n.Value))
		} else {
			e.line("return;")
		}
	case *ast.VarDecl:
		e.varDecl(n)
	case *ast.VarAssign:
		e.varAssign(n)
	case *ast.Print:
		e.printStmt(n)
	case *ast.Break:
		e.line("break;")
	case *ast.Continue:
		e.line("continue;")
	case *ast.Try:
		e.tryStmt(n)
	case *ast.Throw:
		e.throwStmt(n)
	case *ast.Match:
		e.matchStmt(n)
	case *ast.ExprStmt:
		e.line("%s;", e.expr(n.X))
	default:
		e.fail(cerrs.ErrUnsupportedNode, "cannot lower %T", s)
	}
}

// stmtBody flattens a block body so control-flow statements own the braces.
func (e *Emitter) stmtBody(s ast.Stmt) {
	if b, ok := s.(*ast.Block); ok {
		for _, inner := range b.Stmts {
			e.stmt(inner)
		}
		return
	}
	e.stmt(s)
}

// forStmt lowers the three loop flavors. Range loops default the step to 1.
func (e *Emitter) forStmt(n *ast.For) {
	switch n.Kind {
	case ast.ForRange:
		step := "1"
		if n.Step != nil {
			step = e.expr(n.Step)
		}
		e.vars[n.Var] = &cvar{ctype: "int", declared: true}
		e.line("for (int %s = %s; %s < %s; %s += %s) {", n.Var, e.expr(n.From), n.Var, e.expr(n.To), n.Var, step)
		e.indent++
		e.stmtBody(n.Body)
		e.indent--
		e.line("}")
	case ast.ForCollection:
		id, ok := n.Coll.(*ast.Ident)
		if !ok {
			e.fail(cerrs.ErrUnsupportedNode, "collection loop requires a named array")
			return
		}
		cv := e.vars[id.Name]
		if cv == nil || cv.arrayLen <= 0 {
			e.fail(cerrs.ErrUnsupportedNode, "collection loop over %s: unknown length", id.Name)
			return
		}
		elem := "int"
		if ct := n.Coll.InferredType(); ct != nil && ct.Kind == types.Array {
			elem = e.ctype(ct.Elem)
		}
		idx := fmt.Sprintf("_i_%s", n.Var)
		e.vars[n.Var] = &cvar{ctype: elem, declared: true}
		e.line("for (int %s = 0; %s < %d; %s++) {", idx, idx, cv.arrayLen, idx)
		e.indent++
		e.line("%s %s = %s[%s];", elem, n.Var, id.Name, idx)
		e.stmtBody(n.Body)
		e.indent--
		e.line("}")
	case ast.ForTraditional:
		init := ""
		if n.Init != nil {
			init = e.simpleStmtText(n.Init)
		}
		cond := ""
		if n.Cond != nil {
			cond = e.expr(n.Cond)
		}
		post := ""
		if n.Post != nil {
			post = e.simpleStmtText(n.Post)
		}
		e.line("for (%s; %s; %s) {", init, cond, post)
		e.indent++
		e.stmtBody(n.Body)
		e.indent--
		e.line("}")
	}
}

// simpleStmtText renders an assignment or expression for a for-header.
func (e *Emitter) simpleStmtText(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.VarAssign:
		target := e.expr(n.Target)
		if id, ok := n.Target.(*ast.Ident); ok {
			if cv := e.vars[id.Name]; cv == nil || !cv.declared {
				ct := e.ctype(n.Value.InferredType())
				e.vars[id.Name] = &cvar{ctype: ct, declared: true}
				return fmt.Sprintf("%s %s = %s", ct, id.Name, e.expr(n.Value))
			}
		}
		if n.Op != 0 {
			return fmt.Sprintf("%s %c= %s", target, n.Op, e.expr(n.Value))
		}
		return fmt.Sprintf("%s = %s", target, e.expr(n.Value))
	case *ast.ExprStmt:
		return e.expr(n.X)
	}
	e.fail(cerrs.ErrUnsupportedNode, "cannot lower %T in for header", s)
	return ""
}

// switchStmt appends an explicit break per case unless the source omitted
// one, preserving passthrough.
func (e *Emitter) switchStmt(n *ast.Switch) {
	e.line("switch (%s) {", e.expr(n.Tag))
	for _, c := range n.Cases {
		for _, v := range c.Values {
			e.line("case %s:", e.expr(v))
		}
		e.indent++
		for _, s := range c.Body {
			e.stmt(s)
		}
		if !c.Fallthrough {
			e.line("break;")
		}
		e.indent--
	}
	if n.Default != nil {
		e.line("default:")
		e.indent++
		for _, s := range n.Default.Body {
			e.stmt(s)
		}
		if !n.Default.Fallthrough {
			e.line("break;")
		}
		e.indent--
	}
	e.line("}")
}

func (e *Emitter) varDecl(n *ast.VarDecl) {
	t := n.InferredType()
	if arr, ok := n.Init.(*ast.ArrayLit); ok {
		elem := "int"
		if t != nil && t.Kind == types.Array {
			elem = e.ctype(t.Elem)
		}
		e.vars[n.Name] = &cvar{ctype: elem, declared: true, arrayLen: len(arr.Elems)}
		e.line("%s %s[] = %s;", elem, e.checkIdent(n.Name), e.arrayInit(arr))
		return
	}
	ct := e.ctype(t)
	cv := e.vars[n.Name]
	if cv == nil || !cv.declared {
		e.vars[n.Name] = &cvar{ctype: ct, declared: true, pointer: t != nil && t.Kind == types.Class}
		if n.Init != nil {
			e.line("%s = %s;", e.cdecl(t, e.checkIdent(n.Name)), e.expr(n.Init))
		} else {
			e.line("%s;", e.cdecl(t, e.checkIdent(n.Name)))
		}
		return
	}
	if n.Init != nil {
		e.line("%s = %s;", n.Name, e.expr(n.Init))
	}
}

// varAssign declares on first occurrence in the current function, assigns
// otherwise.
func (e *Emitter) varAssign(n *ast.VarAssign) {
	if id, ok := n.Target.(*ast.Ident); ok {
		if arr, isArr := n.Value.(*ast.ArrayLit); isArr {
			elem := "int"
			if t := n.Value.InferredType(); t != nil && t.Kind == types.Array {
				elem = e.ctype(t.Elem)
			}
			e.vars[id.Name] = &cvar{ctype: elem, declared: true, arrayLen: len(arr.Elems)}
			e.line("%s %s[] = %s;", elem, e.checkIdent(id.Name), e.arrayInit(arr))
			return
		}
		cv := e.vars[id.Name]
		if cv == nil || !cv.declared {
			t := n.Value.InferredType()
			if id.InferredType() != nil {
				t = id.InferredType()
			}
			e.vars[id.Name] = &cvar{ctype: e.ctype(t), declared: true, pointer: t != nil && t.Kind == types.Class}
			e.line("%s = %s;", e.cdecl(t, e.checkIdent(id.Name)), e.expr(n.Value))
			return
		}
		if n.Op != 0 {
			e.line("%s %c= %s;", id.Name, n.Op, e.expr(n.Value))
			return
		}
		e.line("%s = %s;", id.Name, e.expr(n.Value))
		return
	}
	if n.Op != 0 {
		e.line("%s %c= %s;", e.expr(n.Target), n.Op, e.expr(n.Value))
		return
	}
	e.line("%s = %s;", e.expr(n.Target), e.expr(n.Value))
}

// printStmt dispatches on the inferred type. Composite expressions are
// materialized into a temporary first.
func (e *Emitter) printStmt(n *ast.Print) {
	t := n.Value.InferredType()
	text := e.expr(n.Value)

	simple := false
	switch n.Value.(type) {
	case *ast.Ident, *ast.NumberLit, *ast.StringLit, *ast.BoolLit:
		simple = true
	}
	if !simple {
		tmp := fmt.Sprintf("_print_%d", e.stats.Statements)
		e.line("{")
		e.indent++
		e.line("%s = %s;", e.cdecl(t, tmp), text)
		e.printValue(t, tmp)
		e.indent--
		e.line("}")
		return
	}
	e.printValue(t, text)
}

func (e *Emitter) printValue(t *types.Type, text string) {
	kind := types.Unknown
	if t != nil {
		kind = t.Kind
	}
	switch kind {
	case types.Int:
		e.line("printf(\"%%d\\n\", %s);", text)
	case types.Float:
		e.line("printf(\"%%g\\n\", %s);", text)
	case types.String:
		e.line("printf(\"%%s\\n\", %s);", text)
	case types.Bool:
		e.line("printf(\"%%s\\n\", %s ? \"true\" : \"false\");", text)
	case types.Class, types.Object:
		e.line("printf(\"%%p\\n\", (void*)%s);", text)
	default:
		e.line("printf(\"%%d\\n\", (int)%s);", text)
	}
}

// tryStmt lowers try/catch/finally onto the fixed-depth jmp_buf stack.
// The try body runs in the setjmp zero branch; a throw lands in the
// nonzero branch where the error-type prefix routes to the matching typed
// catch. The finally body runs on both paths and stamps the sentinel.
func (e *Emitter) tryStmt(n *ast.Try) {
	e.line("{")
	e.indent++
	e.line("int _try_slot = _try_depth++;")
	e.line("if (setjmp(_try_stack[_try_slot]) == 0) {")
	e.indent++
	for _, s := range n.Body.Stmts {
		e.stmt(s)
	}
	e.line("_try_depth--;")
	e.indent--
	e.line("} else {")
	e.indent++
	e.line("_try_depth--;")
	e.line("_extract_error_type();")

	wroteTyped := false
	var catchAll *ast.CatchClause
	for _, c := range n.Catches {
		if c.TypeName == "" {
			if catchAll == nil {
				catchAll = c
			}
			continue
		}
		if wroteTyped {
			e.line("} else if (strcmp(_error_type, %q) == 0) {", c.TypeName)
		} else {
			e.line("if (strcmp(_error_type, %q) == 0) {", c.TypeName)
			wroteTyped = true
		}
		e.indent++
		e.catchBody(c)
		e.indent--
	}
	if catchAll != nil {
		if wroteTyped {
			e.line("} else {")
			e.indent++
			e.catchBody(catchAll)
			e.indent--
			e.line("}")
		} else {
			e.catchBody(catchAll)
		}
	} else if wroteTyped {
		e.line("} else {")
		e.line("    longjmp(_try_stack[_try_depth - 1], 1);")
		e.line("}")
	}
	e.indent--
	e.line("}")

	if n.Finally != nil {
		for _, s := range n.Finally.Stmts {
			e.stmt(s)
		}
		e.line("finally_executed = true;")
	}
	e.indent--
	e.line("}")
}

func (e *Emitter) catchBody(c *ast.CatchClause) {
	if c.Var != "" {
		e.line("const char* %s = _error_message;", e.checkIdent(c.Var))
		e.vars[c.Var] = &cvar{ctype: "const char*", declared: true}
	}
	for _, s := range c.Body.Stmts {
		e.stmt(s)
	}
}

// throwStmt copies the string form of the value into the shared error
// buffer and unwinds to the innermost active try.
func (e *Emitter) throwStmt(n *ast.Throw) {
	e.line("snprintf(_error_message, sizeof(_error_message), \"%%s\", %s);", e.cstring(n.Value))
	e.line("longjmp(_try_stack[_try_depth - 1], 1);")
}

// matchStmt lowers pattern cases to an if/else chain over the subject,
// comparing strings with strcmp and everything else with ==. Guards join
// the pattern test with &&.
func (e *Emitter) matchStmt(n *ast.Match) {
	t := n.Subject.InferredType()
	tmp := fmt.Sprintf("_match_%d", e.stats.Statements)
	e.line("{")
	e.indent++
	e.line("%s = %s;", e.cdecl(t, tmp), e.expr(n.Subject))
	for i, c := range n.Cases {
		var test string
		if t != nil && t.Kind == types.String {
			test = fmt.Sprintf("strcmp(%s, %s) == 0", tmp, e.expr(c.Pattern))
		} else {
			test = fmt.Sprintf("%s == %s", tmp, e.expr(c.Pattern))
		}
		if c.Guard != nil {
			test = fmt.Sprintf("(%s) && (%s)", test, e.expr(c.Guard))
		}
		if i == 0 {
			e.line("if (%s) {", test)
		} else {
			e.line("} else if (%s) {", test)
		}
		e.indent++
		for _, s := range c.Body.Stmts {
			e.stmt(s)
		}
		e.indent--
	}
	if n.Otherwise != nil {
		if len(n.Cases) > 0 {
			e.line("} else {")
		} else {
			e.line("{")
		}
		e.indent++
		for _, s := range n.Otherwise.Stmts {
			e.stmt(s)
		}
		e.indent--
	}
	if len(n.Cases) > 0 || n.Otherwise != nil {
		e.line("}")
	}
	e.indent--
	e.line("}")
}
