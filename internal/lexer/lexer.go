// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

import (
	"fmt"
	"log"
	"strconv"

	"github.com/playbymail/lc/internal/diag"
	"github.com/playbymail/lc/internal/tokens"
)

// Lexer scans L source text into tokens on demand.
//
// Tokens are scanned lazily into an internal buffer so that Peek, Save, and
// Restore are cheap: a checkpoint is just an index into the buffer.
type Lexer struct {
	path string
	line, col int // position of the next unscanned byte

	pos int // offset of the next byte in the source

	// the source is owned by the caller and must not be altered
	input []byte

	buf  []tokens.Token // tokens scanned so far
	next int            // index of the token Next will return

	debugLevel int
	diags      *diag.Collector
}

// Checkpoint is an opaque position in the token stream, produced by Save and
// consumed by Restore.
type Checkpoint int

// New returns a lexer over input. The path is used in diagnostics only.
// Passing a nil collector discards diagnostics.
func New(path string, input []byte, diags *diag.Collector) *Lexer {
	if diags == nil {
		diags = diag.NewCollector(nil)
	}
	return &Lexer{
		path:  path,
		line:  1,
		col:   1,
		input: input,
		diags: diags,
	}
}

// SetDebugLevel adjusts diagnostic verbosity. At level 2 and above every
// scanned token is logged.
func (l *Lexer) SetDebugLevel(k int) {
	l.debugLevel = k
}

// Next returns the next token and advances. Once end of input is reached it
// returns EOF tokens forever.
func (l *Lexer) Next() tokens.Token {
	t := l.Peek(0)
	if t.Kind != tokens.EOF {
		l.next++
	}
	return t
}

// Peek returns the token n positions ahead without advancing.
// Peek(0) is the token Next would return.
func (l *Lexer) Peek(n int) tokens.Token {
	for len(l.buf) <= l.next+n {
		t := l.scan()
		if l.debugLevel >= 2 {
			log.Printf("[lexer] %s\n", t)
		}
		l.buf = append(l.buf, t)
		if t.Kind == tokens.EOF {
			break
		}
	}
	if idx := l.next + n; idx < len(l.buf) {
		return l.buf[idx]
	}
	// past end of input: EOF is idempotent
	return l.buf[len(l.buf)-1]
}

// Save returns a checkpoint for the current stream position.
func (l *Lexer) Save() Checkpoint {
	return Checkpoint(l.next)
}

// Restore rewinds the stream to an earlier checkpoint.
func (l *Lexer) Restore(h Checkpoint) {
	if int(h) < 0 || int(h) > len(l.buf) {
		panic(fmt.Sprintf("assert(0 <= checkpoint %d <= %d)", int(h), len(l.buf)))
	}
	l.next = int(h)
}

// scan produces the next raw token from the source.
func (l *Lexer) scan() tokens.Token {
	l.skipTrivia()

	pos := tokens.Position{Line: l.line, Col: l.col}
	if l.isEOF() {
		return tokens.Token{Kind: tokens.EOF, Pos: pos}
	}

	ch := l.input[l.pos]
	switch {
	case isAlpha(ch):
		return l.scanWord(pos)
	case isDigit(ch):
		return l.scanNumber(pos)
	case ch == '"':
		return l.scanString(pos)
	}
	return l.scanOperator(pos)
}

// skipTrivia consumes whitespace and both comment flavors. Comments do not
// nest; an unterminated block comment simply runs to end of input.
func (l *Lexer) skipTrivia() {
	for !l.isEOF() {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else if ch == '/' && l.peekByte(1) == '/' {
			for !l.isEOF() && l.input[l.pos] != '\n' {
				l.advance()
			}
		} else if ch == '/' && l.peekByte(1) == '*' {
			l.advance()
			l.advance()
			for !l.isEOF() {
				if l.input[l.pos] == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		} else {
			break
		}
	}
}

func (l *Lexer) scanWord(pos tokens.Position) tokens.Token {
	start := l.pos
	for !l.isEOF() && isAlnum(l.input[l.pos]) {
		l.advance()
	}
	lexeme := string(l.input[start:l.pos])
	t := tokens.Token{Kind: tokens.Lookup(lexeme), Lexeme: lexeme, Pos: pos}
	if t.Kind == tokens.Boolean {
		t.Text = lexeme
	}
	return t
}

// scanNumber scans decimal digits with an optional single fractional part.
// The token records whether a fraction was present; the parser uses that to
// pick int vs float. A '.' followed by a second '.' is the range operator,
// not a fraction.
func (l *Lexer) scanNumber(pos tokens.Position) tokens.Token {
	start := l.pos
	for !l.isEOF() && isDigit(l.input[l.pos]) {
		l.advance()
	}
	isFloat := false
	if !l.isEOF() && l.input[l.pos] == '.' && isDigit(l.peekByte(1)) {
		isFloat = true
		l.advance()
		for !l.isEOF() && isDigit(l.input[l.pos]) {
			l.advance()
		}
	}
	lexeme := string(l.input[start:l.pos])
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		// digits with at most one '.' always parse; keep the token anyway
		l.diags.Errorf(diag.Syntax, l.path, pos.Line, pos.Col, "malformed number %q", lexeme)
	}
	return tokens.Token{Kind: tokens.Number, Lexeme: lexeme, Pos: pos, Value: value, IsFloat: isFloat}
}

// scanString scans a double-quoted string literal. An unterminated string
// produces an Invalid token whose lexeme holds the diagnostic message, and
// scanning continues at end of line so the lexer cannot loop.
func (l *Lexer) scanString(pos tokens.Position) tokens.Token {
	l.advance() // opening quote
	var text []byte
	for !l.isEOF() {
		ch := l.input[l.pos]
		if ch == '"' {
			l.advance()
			return tokens.Token{Kind: tokens.QuotedString, Lexeme: `"` + string(text) + `"`, Pos: pos, Text: string(text)}
		} else if ch == '\n' {
			break
		} else if ch == '\\' && l.peekByte(1) != 0 {
			l.advance()
			switch l.input[l.pos] {
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			case '\\':
				text = append(text, '\\')
			case '"':
				text = append(text, '"')
			default:
				text = append(text, l.input[l.pos])
			}
			l.advance()
		} else {
			text = append(text, ch)
			l.advance()
		}
	}
	msg := "unterminated string literal"
	l.diags.Errorf(diag.Syntax, l.path, pos.Line, pos.Col, "%s", msg)
	return tokens.Token{Kind: tokens.Invalid, Lexeme: msg, Pos: pos}
}

// operators holds the multi-character operators first so that scanOperator
// applies maximal munch.
var operators = []struct {
	text string
	kind tokens.Kind
}{
	{"==", tokens.EqEq},
	{"!=", tokens.NotEq},
	{"<=", tokens.LessEq},
	{">=", tokens.GreaterEq},
	{"&&", tokens.AndAnd},
	{"||", tokens.OrOr},
	{"->", tokens.Arrow},
	{"=>", tokens.FatArrow},
	{">>", tokens.Compose},
	{"..", tokens.DotDot},
	{"+=", tokens.PlusAssign},
	{"-=", tokens.MinusAssign},
	{"*=", tokens.StarAssign},
	{"/=", tokens.SlashAssign},
	{"##", tokens.HashHash},
	{"+", tokens.Plus},
	{"-", tokens.Minus},
	{"*", tokens.Star},
	{"/", tokens.Slash},
	{"=", tokens.Assign},
	{"<", tokens.Less},
	{">", tokens.Greater},
	{"!", tokens.Not},
	{"&", tokens.Amp},
	{"|", tokens.Pipe},
	{"^", tokens.Caret},
	{".", tokens.Dot},
	{"#", tokens.Hash},
	{",", tokens.Comma},
	{";", tokens.Semicolon},
	{":", tokens.Colon},
	{"(", tokens.LParen},
	{")", tokens.RParen},
	{"{", tokens.LBrace},
	{"}", tokens.RBrace},
	{"[", tokens.LBracket},
	{"]", tokens.RBracket},
}

func (l *Lexer) scanOperator(pos tokens.Position) tokens.Token {
	for _, op := range operators {
		if l.hasPrefix(op.text) {
			for range op.text {
				l.advance()
			}
			return tokens.Token{Kind: op.kind, Lexeme: op.text, Pos: pos}
		}
	}
	// stray byte that begins no token
	ch := l.input[l.pos]
	l.advance()
	msg := fmt.Sprintf("unexpected character %q", ch)
	l.diags.Errorf(diag.Syntax, l.path, pos.Line, pos.Col, "%s", msg)
	return tokens.Token{Kind: tokens.Invalid, Lexeme: msg, Pos: pos}
}

func (l *Lexer) hasPrefix(s string) bool {
	if l.pos+len(s) > len(l.input) {
		return false
	}
	return string(l.input[l.pos:l.pos+len(s)]) == s
}

func (l *Lexer) advance() {
	if l.isEOF() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) peekByte(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) isEOF() bool {
	return l.pos >= len(l.input)
}

func isAlpha(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isAlnum(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
