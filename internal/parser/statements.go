// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import (
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/tokens"
)

func (p *Parser) parseBlock() *ast.Block {
	lb := p.expect(tokens.LBrace, "{")
	out := &ast.Block{Meta: ast.Meta{Pos: lb.Pos}}
	for !p.at(tokens.RBrace) && !p.at(tokens.EOF) {
		before := p.lx.Save()
		if s := p.parseStmt(); s != nil {
			out.Stmts = append(out.Stmts, s)
		}
		if p.lx.Save() == before {
			p.advance()
		}
	}
	p.expect(tokens.RBrace, "}")
	return out
}

func (p *Parser) parseStmt() ast.Stmt {
	switch t := p.cur(); t.Kind {
	case tokens.LBrace:
		return p.parseBlock()
	case tokens.KwIf:
		return p.parseIf()
	case tokens.KwWhile:
		p.advance()
		p.expect(tokens.LParen, "(")
		cond := p.parseExpr()
		p.expect(tokens.RParen, ")")
		return &ast.While{Meta: ast.Meta{Pos: t.Pos}, Cond: cond, Body: p.parseStmt()}
	case tokens.KwDo:
		p.advance()
		body := p.parseStmt()
		p.expect(tokens.KwWhile, "while")
		p.expect(tokens.LParen, "(")
		cond := p.parseExpr()
		p.expect(tokens.RParen, ")")
		p.accept(tokens.Semicolon)
		return &ast.DoWhile{Meta: ast.Meta{Pos: t.Pos}, Body: body, Cond: cond}
	case tokens.KwFor:
		return p.parseFor()
	case tokens.KwSwitch:
		return p.parseSwitch()
	case tokens.KwReturn:
		p.advance()
		out := &ast.Return{Meta: ast.Meta{Pos: t.Pos}}
		if !p.at(tokens.Semicolon) && !p.at(tokens.RBrace) {
			out.Value = p.parseExpr()
		}
		p.accept(tokens.Semicolon)
		return out
	case tokens.KwPrint:
		p.advance()
		out := &ast.Print{Meta: ast.Meta{Pos: t.Pos}, Value: p.parseExpr()}
		p.accept(tokens.Semicolon)
		return out
	case tokens.KwBreak:
		p.advance()
		p.accept(tokens.Semicolon)
		return &ast.Break{Meta: ast.Meta{Pos: t.Pos}}
	case tokens.KwContinue:
		p.advance()
		p.accept(tokens.Semicolon)
		return &ast.Continue{Meta: ast.Meta{Pos: t.Pos}}
	case tokens.KwTry:
		return p.parseTry()
	case tokens.KwThrow:
		p.advance()
		out := &ast.Throw{Meta: ast.Meta{Pos: t.Pos}, Value: p.parseExpr()}
		p.accept(tokens.Semicolon)
		return out
	case tokens.KwMatch:
		return p.parseMatch()
	case tokens.Semicolon:
		p.advance()
		return nil
	}
	return p.parseSimpleStmt()
}

// parseSimpleStmt disambiguates the statement forms that begin with an
// expression. A bare identifier followed by = is an assignment, followed by
// ( is a call, followed by : is a declaration with annotation; anything
// else is an expression statement. The lexer checkpoint lets us speculate
// on the declaration form and rewind.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	t := p.cur()

	if t.Kind == tokens.Identifier {
		mark := p.lx.Save()
		name := p.advance()
		if p.at(tokens.Colon) {
			p.advance()
			if p.at(tokens.Identifier) {
				out := &ast.VarDecl{Meta: ast.Meta{Pos: name.Pos}, Name: name.Lexeme, TypeName: p.parseTypeName()}
				if p.accept(tokens.Assign) {
					out.Init = p.parseExpr()
				}
				p.expect(tokens.Semicolon, ";")
				return out
			}
		}
		// not a declaration; rewind and parse as an expression
		p.lx.Restore(mark)
	}

	target := p.parseExpr()
	switch cur := p.cur(); {
	case cur.Kind == tokens.Assign:
		p.advance()
		out := &ast.VarAssign{Meta: ast.Meta{Pos: t.Pos}, Target: target, Value: p.parseExpr()}
		p.expect(tokens.Semicolon, ";")
		return out
	case cur.IsAssignOp():
		p.advance()
		var op byte
		switch cur.Kind {
		case tokens.PlusAssign:
			op = ast.OpAdd
		case tokens.MinusAssign:
			op = ast.OpSub
		case tokens.StarAssign:
			op = ast.OpMul
		case tokens.SlashAssign:
			op = ast.OpDiv
		}
		out := &ast.VarAssign{Meta: ast.Meta{Pos: t.Pos}, Target: target, Op: op, Value: p.parseExpr()}
		p.expect(tokens.Semicolon, ";")
		return out
	}
	p.expect(tokens.Semicolon, ";")
	return &ast.ExprStmt{Meta: ast.Meta{Pos: t.Pos}, X: target}
}

func (p *Parser) parseIf() ast.Stmt {
	kw := p.expect(tokens.KwIf, "if")
	p.expect(tokens.LParen, "(")
	cond := p.parseExpr()
	p.expect(tokens.RParen, ")")
	out := &ast.If{Meta: ast.Meta{Pos: kw.Pos}, Cond: cond, Then: p.parseStmt()}
	if p.accept(tokens.KwElse) {
		out.Else = p.parseStmt()
	}
	return out
}

// parseFor covers the three loop flavors. After in, a call to range selects
// the range form; any other expression is a collection loop.
func (p *Parser) parseFor() ast.Stmt {
	kw := p.expect(tokens.KwFor, "for")
	out := &ast.For{Meta: ast.Meta{Pos: kw.Pos}}

	if p.accept(tokens.LParen) {
		out.Kind = ast.ForTraditional
		if !p.at(tokens.Semicolon) {
			out.Init = p.parseSimpleStmtNoSemi()
		}
		p.expect(tokens.Semicolon, ";")
		if !p.at(tokens.Semicolon) {
			out.Cond = p.parseExpr()
		}
		p.expect(tokens.Semicolon, ";")
		if !p.at(tokens.RParen) {
			out.Post = p.parseSimpleStmtNoSemi()
		}
		p.expect(tokens.RParen, ")")
		out.Body = p.parseStmt()
		return out
	}

	v := p.expect(tokens.Identifier, "loop variable")
	out.Var = v.Lexeme
	p.expect(tokens.KwIn, "in")
	coll := p.parseExpr()

	if call, ok := coll.(*ast.Call); ok {
		if id, isIdent := call.Callee.(*ast.Ident); isIdent && id.Name == "range" {
			out.Kind = ast.ForRange
			if len(call.Args) >= 1 {
				out.From = call.Args[0]
			}
			if len(call.Args) >= 2 {
				out.To = call.Args[1]
			}
			if len(call.Args) >= 3 {
				out.Step = call.Args[2]
			}
			if len(call.Args) < 2 || len(call.Args) > 3 {
				p.errorf(call.Pos, "range takes 2 or 3 arguments, found %d", len(call.Args))
			}
			out.Body = p.parseStmt()
			return out
		}
	}
	out.Kind = ast.ForCollection
	out.Coll = coll
	out.Body = p.parseStmt()
	return out
}

// parseSimpleStmtNoSemi parses an assignment or expression without the
// trailing semicolon, for traditional for-loop headers.
func (p *Parser) parseSimpleStmtNoSemi() ast.Stmt {
	t := p.cur()
	target := p.parseExpr()
	if p.accept(tokens.Assign) {
		return &ast.VarAssign{Meta: ast.Meta{Pos: t.Pos}, Target: target, Value: p.parseExpr()}
	}
	if cur := p.cur(); cur.IsAssignOp() {
		p.advance()
		var op byte
		switch cur.Kind {
		case tokens.PlusAssign:
			op = ast.OpAdd
		case tokens.MinusAssign:
			op = ast.OpSub
		case tokens.StarAssign:
			op = ast.OpMul
		case tokens.SlashAssign:
			op = ast.OpDiv
		}
		return &ast.VarAssign{Meta: ast.Meta{Pos: t.Pos}, Target: target, Op: op, Value: p.parseExpr()}
	}
	return &ast.ExprStmt{Meta: ast.Meta{Pos: t.Pos}, X: target}
}

// parseSwitch records, per case, whether the source body ended with a break
// so the generator can preserve passthrough.
func (p *Parser) parseSwitch() ast.Stmt {
	kw := p.expect(tokens.KwSwitch, "switch")
	p.expect(tokens.LParen, "(")
	tag := p.parseExpr()
	p.expect(tokens.RParen, ")")
	out := &ast.Switch{Meta: ast.Meta{Pos: kw.Pos}, Tag: tag}
	p.expect(tokens.LBrace, "{")
	for !p.at(tokens.RBrace) && !p.at(tokens.EOF) {
		switch t := p.cur(); t.Kind {
		case tokens.KwCase:
			p.advance()
			c := &ast.CaseClause{Meta: ast.Meta{Pos: t.Pos}}
			for {
				c.Values = append(c.Values, p.parseExpr())
				if !p.accept(tokens.Comma) {
					break
				}
			}
			p.expect(tokens.Colon, ":")
			p.parseCaseBody(c)
			out.Cases = append(out.Cases, c)
		case tokens.KwDefault:
			p.advance()
			p.expect(tokens.Colon, ":")
			c := &ast.CaseClause{Meta: ast.Meta{Pos: t.Pos}}
			p.parseCaseBody(c)
			out.Default = c
		default:
			p.errorf(t.Pos, "expected case or default, found %s", t)
			p.syncStmt()
		}
	}
	p.expect(tokens.RBrace, "}")
	return out
}

// parseCaseBody reads statements up to the next case label. A trailing
// break ends the arm; its absence marks passthrough.
func (p *Parser) parseCaseBody(c *ast.CaseClause) {
	c.Fallthrough = true
	for {
		switch p.cur().Kind {
		case tokens.KwCase, tokens.KwDefault, tokens.RBrace, tokens.EOF:
			return
		case tokens.KwBreak:
			p.advance()
			p.accept(tokens.Semicolon)
			c.Fallthrough = false
			return
		}
		before := p.lx.Save()
		if s := p.parseStmt(); s != nil {
			c.Body = append(c.Body, s)
		}
		if p.lx.Save() == before {
			p.advance()
		}
	}
}

// parseTry accepts catch clauses in both the parenthesized and the bare
// form, with an optional typed catch: catch (e: ValidationError).
func (p *Parser) parseTry() ast.Stmt {
	kw := p.expect(tokens.KwTry, "try")
	out := &ast.Try{Meta: ast.Meta{Pos: kw.Pos}, Body: p.parseBlock()}
	for p.at(tokens.KwCatch) {
		t := p.advance()
		c := &ast.CatchClause{Meta: ast.Meta{Pos: t.Pos}}
		if p.accept(tokens.LParen) {
			c.Var = p.expect(tokens.Identifier, "catch variable").Lexeme
			if p.accept(tokens.Colon) {
				c.TypeName = p.expect(tokens.Identifier, "error type").Lexeme
			}
			p.expect(tokens.RParen, ")")
		} else {
			c.Var = p.expect(tokens.Identifier, "catch variable").Lexeme
		}
		c.Body = p.parseBlock()
		out.Catches = append(out.Catches, c)
	}
	if p.accept(tokens.KwFinally) {
		out.Finally = p.parseBlock()
	}
	return out
}

// parseMatch handles pattern cases with optional when-guards and an
// otherwise arm.
func (p *Parser) parseMatch() ast.Stmt {
	kw := p.expect(tokens.KwMatch, "match")
	p.expect(tokens.LParen, "(")
	subject := p.parseExpr()
	p.expect(tokens.RParen, ")")
	out := &ast.Match{Meta: ast.Meta{Pos: kw.Pos}, Subject: subject}
	p.expect(tokens.LBrace, "{")
	for !p.at(tokens.RBrace) && !p.at(tokens.EOF) {
		switch t := p.cur(); t.Kind {
		case tokens.KwCase:
			p.advance()
			c := &ast.MatchCase{Meta: ast.Meta{Pos: t.Pos}, Pattern: p.parseExpr()}
			if p.accept(tokens.KwWhen) {
				c.Guard = p.parseExpr()
			}
			p.expect(tokens.Colon, ":")
			c.Body = p.parseBlock()
			out.Cases = append(out.Cases, c)
		case tokens.KwOtherwise:
			p.advance()
			p.expect(tokens.Colon, ":")
			out.Otherwise = p.parseBlock()
		default:
			p.errorf(t.Pos, "expected case or otherwise, found %s", t)
			p.syncStmt()
		}
	}
	p.expect(tokens.RBrace, "}")
	return out
}
