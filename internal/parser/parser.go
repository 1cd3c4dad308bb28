// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import (
	"log"

	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/lexer"
	"github.com/playbymail/lc/internal/tokens"
)

// Parser consumes the lexer and builds a Program AST.
//
// On a syntax error the parser reports the error with position and the
// expected token, then skips to the next statement boundary and continues,
// so one run reports every syntax error in the file.
type Parser struct {
	path  string
	lx    *lexer.Lexer
	diags *diag.Collector
	debug int
}

// New returns a parser over the lexer. Passing a nil collector discards
// diagnostics.
func New(path string, lx *lexer.Lexer, diags *diag.Collector) *Parser {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Parser{path: path, lx: lx, diags: diags}
}

// SetDebugLevel adjusts diagnostic verbosity.
func (p *Parser) SetDebugLevel(k int) {
	p.debug = k
	p.lx.SetDebugLevel(k)
}

// Parse reads the whole token stream and returns the program.
// Top-level statements outside an explicit main block are collected into
// the main block in source order.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{Meta: ast.Meta{Pos: p.cur().Pos}, Path: p.path}

	if p.at(tokens.KwModule) {
		mod := p.advance()
		name := p.expect(tokens.Identifier, "module name")
		p.accept(tokens.Semicolon)
		prog.Module = &ast.Module{Meta: ast.Meta{Pos: mod.Pos}, Name: name.Lexeme}
	}

	for !p.at(tokens.EOF) {
		before := p.lx.Save()
		p.parseTopLevel(prog)
		if p.lx.Save() == before {
			// no progress; drop the token so we cannot loop
			p.advance()
		}
	}
	return prog
}

func (p *Parser) parseTopLevel(prog *ast.Program) {
	switch t := p.cur(); t.Kind {
	case tokens.KwImport, tokens.KwFrom:
		prog.Decls = append(prog.Decls, p.parseImport())
	case tokens.KwExport:
		p.advance()
		switch p.cur().Kind {
		case tokens.KwFunc:
			fd := p.parseFunc()
			fd.Exported = true
			prog.Decls = append(prog.Decls, fd)
		case tokens.KwClass:
			cd := p.parseClass()
			cd.Exported = true
			prog.Decls = append(prog.Decls, cd)
		default:
			p.errorf(t.Pos, "expected func or class after export, found %s", p.cur())
			p.syncStmt()
		}
	case tokens.KwFunc:
		prog.Decls = append(prog.Decls, p.parseFunc())
	case tokens.KwClass:
		prog.Decls = append(prog.Decls, p.parseClass())
	case tokens.KwAspect:
		prog.Decls = append(prog.Decls, p.parseAspect())
	case tokens.KwMacro:
		prog.Decls = append(prog.Decls, p.parseMacro())
	case tokens.Identifier:
		if t.Lexeme == "main" && p.lx.Peek(1).Kind == tokens.LBrace {
			p.advance()
			b := p.parseBlock()
			if prog.Main == nil {
				prog.Main = b
			} else {
				prog.Main.Stmts = append(prog.Main.Stmts, b.Stmts...)
			}
			return
		}
		p.appendMainStmt(prog)
	default:
		p.appendMainStmt(prog)
	}
}

func (p *Parser) appendMainStmt(prog *ast.Program) {
	s := p.parseStmt()
	if s == nil {
		return
	}
	if prog.Main == nil {
		prog.Main = &ast.Block{Meta: ast.Meta{Pos: s.NodePos()}}
	}
	prog.Main.Stmts = append(prog.Main.Stmts, s)
}

// ----- token plumbing -----

func (p *Parser) cur() tokens.Token {
	return p.lx.Peek(0)
}

func (p *Parser) at(k tokens.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) advance() tokens.Token {
	t := p.lx.Next()
	if p.debug >= 3 {
		log.Printf("[parser] consume %s\n", t)
	}
	return t
}

// accept consumes the token if it has the given kind.
func (p *Parser) accept(k tokens.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind or reports what was expected.
// On failure the current token is left in place for recovery.
func (p *Parser) expect(k tokens.Kind, what string) tokens.Token {
	if p.at(k) {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Pos, "expected %s, found %s", what, t)
	return tokens.Token{Kind: k, Pos: t.Pos}
}

func (p *Parser) errorf(pos tokens.Position, format string, args ...any) {
	p.diags.Errorf(diag.Syntax, p.path, pos.Line, pos.Col, format, args...)
}

// syncStmt skips to the next statement boundary: past a semicolon, or up to
// a closing brace or end of input.
func (p *Parser) syncStmt() {
	for {
		switch p.cur().Kind {
		case tokens.Semicolon:
			p.advance()
			return
		case tokens.RBrace, tokens.EOF:
			return
		}
		p.advance()
	}
}
