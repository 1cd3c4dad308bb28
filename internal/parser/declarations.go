// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import (
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/tokens"
)

// parseImport handles the three import forms:
//
//	import X;
//	import X as Y;
//	from X import a, b as c;
func (p *Parser) parseImport() *ast.Import {
	if p.at(tokens.KwFrom) {
		from := p.advance()
		mod := p.expect(tokens.Identifier, "module name")
		p.expect(tokens.KwImport, "import")
		out := &ast.Import{Meta: ast.Meta{Pos: from.Pos}, Module: mod.Lexeme}
		for {
			sym := p.expect(tokens.Identifier, "imported symbol")
			is := ast.ImportSym{Name: sym.Lexeme}
			if p.accept(tokens.KwAs) {
				is.Alias = p.expect(tokens.Identifier, "alias").Lexeme
			}
			out.Selective = append(out.Selective, is)
			if !p.accept(tokens.Comma) {
				break
			}
		}
		p.accept(tokens.Semicolon)
		return out
	}

	imp := p.expect(tokens.KwImport, "import")
	mod := p.expect(tokens.Identifier, "module name")
	out := &ast.Import{Meta: ast.Meta{Pos: imp.Pos}, Module: mod.Lexeme}
	if p.accept(tokens.KwAs) {
		out.Alias = p.expect(tokens.Identifier, "alias").Lexeme
	}
	p.accept(tokens.Semicolon)
	return out
}

// parseFunc handles both bodied and expression-bodied functions:
//
//	func name(a: Int, b) -> Int { ... }
//	func name(a) => a * 2;
func (p *Parser) parseFunc() *ast.FuncDef {
	kw := p.expect(tokens.KwFunc, "func")
	name := p.expect(tokens.Identifier, "function name")
	out := &ast.FuncDef{Meta: ast.Meta{Pos: kw.Pos}, Name: name.Lexeme}
	out.Params = p.parseParams()
	if p.accept(tokens.Arrow) {
		out.ReturnName = p.parseTypeName()
	}
	if p.accept(tokens.FatArrow) {
		out.ExprBody = p.parseExpr()
		p.accept(tokens.Semicolon)
		return out
	}
	out.Body = p.parseBlock()
	return out
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(tokens.LParen, "(")
	var params []ast.Param
	for !p.at(tokens.RParen) && !p.at(tokens.EOF) {
		name := p.expect(tokens.Identifier, "parameter name")
		prm := ast.Param{Name: name.Lexeme, Pos: name.Pos}
		if p.accept(tokens.Colon) {
			prm.TypeName = p.parseTypeName()
		}
		params = append(params, prm)
		if !p.accept(tokens.Comma) {
			break
		}
	}
	p.expect(tokens.RParen, ")")
	return params
}

// parseTypeName reads a type annotation: a name with an optional [] suffix.
func (p *Parser) parseTypeName() string {
	name := p.expect(tokens.Identifier, "type name")
	if p.at(tokens.LBracket) && p.lx.Peek(1).Kind == tokens.RBracket {
		p.advance()
		p.advance()
		return name.Lexeme + "[]"
	}
	return name.Lexeme
}

// parseClass handles class definitions with optional inheritance. Inside the
// body, func introduces a method and anything else is a field declaration.
func (p *Parser) parseClass() *ast.ClassDef {
	kw := p.expect(tokens.KwClass, "class")
	name := p.expect(tokens.Identifier, "class name")
	out := &ast.ClassDef{Meta: ast.Meta{Pos: kw.Pos}, Name: name.Lexeme}
	if p.accept(tokens.KwExtends) {
		out.Extends = p.expect(tokens.Identifier, "base class name").Lexeme
	}
	p.expect(tokens.LBrace, "{")
	for !p.at(tokens.RBrace) && !p.at(tokens.EOF) {
		if p.at(tokens.KwFunc) {
			out.Methods = append(out.Methods, p.parseFunc())
			continue
		}
		fld := p.expect(tokens.Identifier, "field name")
		fd := ast.FieldDef{Name: fld.Lexeme, Pos: fld.Pos}
		if p.accept(tokens.Colon) {
			fd.TypeName = p.parseTypeName()
		}
		if p.accept(tokens.Assign) {
			fd.Init = p.parseExpr()
		}
		p.expect(tokens.Semicolon, ";")
		out.Fields = append(out.Fields, fd)
	}
	p.expect(tokens.RBrace, "}")
	return out
}

// parseAspect handles aspect definitions:
//
//	aspect Logging {
//	    pointcut calls: "do_*";
//	    before calls { ... }
//	    around calls { ... }
//	}
func (p *Parser) parseAspect() *ast.AspectDef {
	kw := p.expect(tokens.KwAspect, "aspect")
	name := p.expect(tokens.Identifier, "aspect name")
	out := &ast.AspectDef{Meta: ast.Meta{Pos: kw.Pos}, Name: name.Lexeme}
	p.expect(tokens.LBrace, "{")
	for !p.at(tokens.RBrace) && !p.at(tokens.EOF) {
		switch t := p.cur(); t.Kind {
		case tokens.KwPointcut:
			p.advance()
			pcName := p.expect(tokens.Identifier, "pointcut name")
			p.expect(tokens.Colon, ":")
			pat := p.expect(tokens.QuotedString, "pointcut pattern")
			p.accept(tokens.Semicolon)
			out.Pointcuts = append(out.Pointcuts, &ast.Pointcut{
				Meta:    ast.Meta{Pos: t.Pos},
				Name:    pcName.Lexeme,
				Pattern: pat.Text,
			})
		case tokens.KwBefore, tokens.KwAfter, tokens.KwAround:
			p.advance()
			var kind ast.AdviceKind
			switch t.Kind {
			case tokens.KwBefore:
				kind = ast.Before
			case tokens.KwAfter:
				kind = ast.After
			case tokens.KwAround:
				kind = ast.Around
			}
			pcName := p.expect(tokens.Identifier, "pointcut name")
			body := p.parseBlock()
			out.Advices = append(out.Advices, &ast.Advice{
				Meta:         ast.Meta{Pos: t.Pos},
				Kind:         kind,
				PointcutName: pcName.Lexeme,
				Body:         body,
			})
		default:
			p.errorf(t.Pos, "expected pointcut or advice, found %s", t)
			p.syncStmt()
		}
	}
	p.expect(tokens.RBrace, "}")
	return out
}

// parseMacro handles macro definitions. The body is a template AST: either
// a block or a single expression.
func (p *Parser) parseMacro() *ast.MacroDef {
	kw := p.expect(tokens.KwMacro, "macro")
	name := p.expect(tokens.Identifier, "macro name")
	out := &ast.MacroDef{Meta: ast.Meta{Pos: kw.Pos}, Name: name.Lexeme}
	p.expect(tokens.LParen, "(")
	for !p.at(tokens.RParen) && !p.at(tokens.EOF) {
		prm := p.expect(tokens.Identifier, "macro parameter")
		out.Params = append(out.Params, prm.Lexeme)
		if !p.accept(tokens.Comma) {
			break
		}
	}
	p.expect(tokens.RParen, ")")
	if p.accept(tokens.FatArrow) {
		out.Body = p.parseExpr()
		p.accept(tokens.Semicolon)
		return out
	}
	out.Body = p.parseBlock()
	return out
}
