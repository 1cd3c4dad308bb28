// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import (
	"github.com/playbymail/lc/internal/ast"
	"github.com/playbymail/lc/internal/tokens"
)

// Binding powers for precedence climbing, lowest first. Assignment is not
// an expression in L, so composition is the loosest binding operator.
const (
	precNone = iota
	precCompose
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precComparison
	precRange
	precAdditive
	precMultiplicative
	precUnary
)

// binaryOp maps a token to its binding power and AST discriminant.
var binaryOp = map[tokens.Kind]struct {
	prec int
	op   byte
}{
	tokens.Compose:   {precCompose, 0},
	tokens.OrOr:      {precOr, ast.OpOr},
	tokens.AndAnd:    {precAnd, ast.OpAnd},
	tokens.Pipe:      {precBitOr, ast.OpBitOr},
	tokens.Caret:     {precBitXor, ast.OpBitXor},
	tokens.Amp:       {precBitAnd, ast.OpBitAnd},
	tokens.EqEq:      {precEquality, ast.OpEq},
	tokens.NotEq:     {precEquality, ast.OpNe},
	tokens.Less:      {precComparison, ast.OpLt},
	tokens.Greater:   {precComparison, ast.OpGt},
	tokens.LessEq:    {precComparison, ast.OpLe},
	tokens.GreaterEq: {precComparison, ast.OpGe},
	tokens.DotDot:    {precRange, ast.OpRange},
	tokens.Plus:      {precAdditive, ast.OpAdd},
	tokens.Minus:     {precAdditive, ast.OpSub},
	tokens.Star:      {precMultiplicative, ast.OpMul},
	tokens.Slash:     {precMultiplicative, ast.OpDiv},
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precNone + 1)
}

// parseBinary is the precedence-climbing core: it folds left-associative
// binary operators at or above minPrec.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		info, ok := binaryOp[p.cur().Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		t := p.advance()
		right := p.parseBinary(info.prec + 1)
		if t.Kind == tokens.Compose {
			left = &ast.Compose{Meta: ast.Meta{Pos: t.Pos}, F: left, G: right}
		} else {
			left = &ast.BinOp{Meta: ast.Meta{Pos: t.Pos}, Op: info.op, X: left, Y: right}
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch t := p.cur(); t.Kind {
	case tokens.Minus:
		p.advance()
		return &ast.UnOp{Meta: ast.Meta{Pos: t.Pos}, Op: ast.OpNeg, X: p.parseUnary()}
	case tokens.Not:
		p.advance()
		return &ast.UnOp{Meta: ast.Meta{Pos: t.Pos}, Op: ast.OpNot, X: p.parseUnary()}
	case tokens.Hash:
		// stringify; only meaningful inside macro bodies
		p.advance()
		return &ast.UnOp{Meta: ast.Meta{Pos: t.Pos}, Op: ast.OpStringify, X: p.parseUnary()}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix folds call, member, index, and token-paste suffixes.
func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	for {
		switch t := p.cur(); t.Kind {
		case tokens.LParen:
			p.advance()
			call := &ast.Call{Meta: ast.Meta{Pos: t.Pos}, Callee: x}
			for !p.at(tokens.RParen) && !p.at(tokens.EOF) {
				call.Args = append(call.Args, p.parseExpr())
				if !p.accept(tokens.Comma) {
					break
				}
			}
			p.expect(tokens.RParen, ")")
			x = call
		case tokens.Dot:
			p.advance()
			name := p.expect(tokens.Identifier, "member name")
			x = &ast.Member{Meta: ast.Meta{Pos: t.Pos}, X: x, Name: name.Lexeme}
		case tokens.LBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(tokens.RBracket, "]")
			x = &ast.Index{Meta: ast.Meta{Pos: t.Pos}, X: x, Idx: idx}
		case tokens.HashHash:
			// token paste; only meaningful inside macro bodies
			p.advance()
			y := p.parsePrimary()
			x = &ast.BinOp{Meta: ast.Meta{Pos: t.Pos}, Op: ast.OpPaste, X: x, Y: y}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch t := p.cur(); t.Kind {
	case tokens.Number:
		p.advance()
		return &ast.NumberLit{Meta: ast.Meta{Pos: t.Pos}, Value: t.Value, IsFloat: t.IsFloat}
	case tokens.QuotedString:
		p.advance()
		return &ast.StringLit{Meta: ast.Meta{Pos: t.Pos}, Value: t.Text}
	case tokens.Boolean:
		p.advance()
		return &ast.BoolLit{Meta: ast.Meta{Pos: t.Pos}, Value: t.Lexeme == "true"}
	case tokens.Null:
		p.advance()
		return &ast.NullLit{Meta: ast.Meta{Pos: t.Pos}}
	case tokens.Identifier:
		p.advance()
		return &ast.Ident{Meta: ast.Meta{Pos: t.Pos}, Name: t.Lexeme}
	case tokens.KwThis:
		p.advance()
		return &ast.This{Meta: ast.Meta{Pos: t.Pos}}
	case tokens.KwNew:
		p.advance()
		name := p.expect(tokens.Identifier, "class name")
		out := &ast.New{Meta: ast.Meta{Pos: t.Pos}, ClassName: name.Lexeme}
		p.expect(tokens.LParen, "(")
		for !p.at(tokens.RParen) && !p.at(tokens.EOF) {
			out.Args = append(out.Args, p.parseExpr())
			if !p.accept(tokens.Comma) {
				break
			}
		}
		p.expect(tokens.RParen, ")")
		return out
	case tokens.LBracket:
		p.advance()
		out := &ast.ArrayLit{Meta: ast.Meta{Pos: t.Pos}}
		for !p.at(tokens.RBracket) && !p.at(tokens.EOF) {
			out.Elems = append(out.Elems, p.parseExpr())
			if !p.accept(tokens.Comma) {
				break
			}
		}
		p.expect(tokens.RBracket, "]")
		return out
	case tokens.LParen:
		return p.parseParenOrLambda()
	}

	t := p.cur()
	p.errorf(t.Pos, "expected expression, found %s", t)
	// leave statement boundaries in place so recovery consumes them once
	switch t.Kind {
	case tokens.Semicolon, tokens.RBrace, tokens.EOF:
	default:
		p.advance()
	}
	return &ast.NullLit{Meta: ast.Meta{Pos: t.Pos}}
}

// parseParenOrLambda disambiguates (params) => body from a parenthesized
// expression by speculating on the lambda form and rewinding on failure.
func (p *Parser) parseParenOrLambda() ast.Expr {
	mark := p.lx.Save()
	if lam, ok := p.tryLambda(); ok {
		return lam
	}
	p.lx.Restore(mark)
	p.expect(tokens.LParen, "(")
	x := p.parseExpr()
	p.expect(tokens.RParen, ")")
	return x
}

// tryLambda attempts (a: T, b) [-> T] => expr-or-block. It never reports
// diagnostics; the caller rewinds when it fails.
func (p *Parser) tryLambda() (ast.Expr, bool) {
	t := p.cur()
	if !p.accept(tokens.LParen) {
		return nil, false
	}
	out := &ast.Lambda{Meta: ast.Meta{Pos: t.Pos}}
	for !p.at(tokens.RParen) {
		if !p.at(tokens.Identifier) {
			return nil, false
		}
		name := p.advance()
		prm := ast.Param{Name: name.Lexeme, Pos: name.Pos}
		if p.accept(tokens.Colon) {
			if !p.at(tokens.Identifier) {
				return nil, false
			}
			prm.TypeName = p.advance().Lexeme
		}
		out.Params = append(out.Params, prm)
		if !p.accept(tokens.Comma) {
			break
		}
	}
	if !p.accept(tokens.RParen) {
		return nil, false
	}
	if p.accept(tokens.Arrow) {
		if !p.at(tokens.Identifier) {
			return nil, false
		}
		out.ReturnName = p.advance().Lexeme
	}
	if !p.accept(tokens.FatArrow) {
		return nil, false
	}
	if p.at(tokens.LBrace) {
		out.Body = p.parseBlock()
	} else {
		out.ExprBody = p.parseExpr()
	}
	return out, true
}
