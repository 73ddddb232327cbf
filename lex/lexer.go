// Package lex implements the tokenizer for the scene DSL. The lexer is
// a single-byte-lookahead state machine driven over sentinel-terminated
// source. Lex copies the source once to append that sentinel; tokens
// carry no text of their own: every Token is a tag plus a source byte range.
package lex

import (
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/token"
)

// sentinel terminates the source buffer so the state machine never has to
// bounds-check a read; it is never a valid source byte and never appears
// inside a string literal's escaped form.
const sentinel = 0

// Lex tokenizes src and returns the resulting token stream. src must not
// itself contain a NUL byte; Lex appends its own terminating sentinel and
// does not mutate the caller's slice. On the first lexical error, Lex
// stops and returns that one Diagnostic.
func Lex(src []byte) ([]token.Token, *diag.Diagnostic) {
	l := &lexer{src: append(append([]byte(nil), src...), sentinel)}
	// Heuristic sizing: ~1 token per 8 source bytes, grown geometrically
	// by append thereafter.
	l.tokens = make([]token.Token, 0, len(src)/8+8)

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Tag == token.EOF {
			return l.tokens, nil
		}
	}
}

type lexer struct {
	src    []byte // sentinel-terminated
	pos    uint32
	tokens []token.Token
}

func (l *lexer) byteAt(pos uint32) byte {
	return l.src[pos]
}

func (l *lexer) cur() byte {
	return l.src[l.pos]
}

// next scans and returns the single next token starting at l.pos, advancing
// l.pos past it. Whitespace and comments are skipped before the token
// proper begins.
func (l *lexer) next() (token.Token, *diag.Diagnostic) {
	l.skipTrivia()

	start := l.pos
	c := l.cur()

	switch {
	case c == sentinel && l.pos == uint32(len(l.src))-1:
		return token.Token{Tag: token.EOF, Range: token.Range{Start: start, End: start}}, nil

	case c == '{':
		l.pos++
		return l.tok(token.LBrace, start), nil
	case c == '}':
		l.pos++
		return l.tok(token.RBrace, start), nil
	case c == '[':
		l.pos++
		return l.tok(token.LBracket, start), nil
	case c == ']':
		l.pos++
		return l.tok(token.RBracket, start), nil
	case c == '=':
		l.pos++
		return l.tok(token.Equals, start), nil
	case c == ',':
		l.pos++
		return l.tok(token.Comma, start), nil
	case c == ':':
		l.pos++
		return l.tok(token.Colon, start), nil
	case c == '.':
		l.pos++
		return l.tok(token.Dot, start), nil

	case c == '#':
		return l.lexMacro(start)
	case c == '$':
		return l.lexReference(start)
	case c == '"':
		return l.lexString(start)
	case isIdentStart(c):
		return l.lexIdent(start), nil
	case isDigit(c) || ((c == '+' || c == '-') && isDigit(l.byteAt(l.pos+1))):
		return l.lexNumber(start)

	default:
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: start + 1}, "unexpected byte %q", c)
		return token.Token{}, &d
	}
}

func (l *lexer) tok(tag token.Tag, start uint32) token.Token {
	return token.Token{Tag: tag, Range: token.Range{Start: start, End: l.pos}}
}

// skipTrivia consumes whitespace, line comments ("// ...") and block
// comments ("/* ... */") until real token content or EOF is reached.
func (l *lexer) skipTrivia() {
	for {
		c := l.cur()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.byteAt(l.pos+1) == '/':
			l.pos += 2
			for l.cur() != '\n' && l.cur() != sentinel {
				l.pos++
			}
		case c == '/' && l.byteAt(l.pos+1) == '*':
			l.pos += 2
			for !(l.cur() == '*' && l.byteAt(l.pos+1) == '/') && l.cur() != sentinel {
				l.pos++
			}
			if l.cur() != sentinel {
				l.pos += 2
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) lexIdent(start uint32) token.Token {
	for isIdentCont(l.cur()) {
		l.pos++
	}
	// Dotted builtins (canvas.width, canvas.height) read as one
	// identifier; the grammar has no member access, so a '.' joining two
	// identifier parts can mean nothing else.
	for l.cur() == '.' && isIdentStart(l.byteAt(l.pos+1)) {
		l.pos++
		for isIdentCont(l.cur()) {
			l.pos++
		}
	}
	return l.tok(token.Ident, start)
}

// lexMacro scans a '#' followed by an identifier and resolves it against
// the closed macro keyword set. Anything starting with '#' that does not
// match is an error.
func (l *lexer) lexMacro(start uint32) (token.Token, *diag.Diagnostic) {
	l.pos++ // consume '#'
	nameStart := l.pos
	if !isIdentStart(l.cur()) {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "expected macro name after '#'")
		return token.Token{}, &d
	}
	for isIdentCont(l.cur()) {
		l.pos++
	}
	name := string(l.src[nameStart:l.pos])
	tag, ok := token.LookupMacro(name)
	if !ok {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "unknown macro #%s", name)
		return token.Token{}, &d
	}
	return l.tok(tag, start), nil
}

// lexReference scans an atomic "$ns.name" unit as a single token; the
// namespace and name never surface as separate tokens.
func (l *lexer) lexReference(start uint32) (token.Token, *diag.Diagnostic) {
	l.pos++ // consume '$'
	nsStart := l.pos
	if !isIdentStart(l.cur()) {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "expected namespace after '$'")
		return token.Token{}, &d
	}
	for isIdentCont(l.cur()) {
		l.pos++
	}
	ns := string(l.src[nsStart:l.pos])
	if !token.IsReferenceNamespace(ns) {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "unknown reference namespace %q", ns)
		return token.Token{}, &d
	}
	if l.cur() != '.' {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "expected '.' in reference")
		return token.Token{}, &d
	}
	l.pos++ // consume '.'
	nameStart := l.pos
	if !isIdentStart(l.cur()) {
		d := diag.New(diag.UnexpectedByte, token.Range{Start: start, End: l.pos}, "expected name after '.' in reference")
		return token.Token{}, &d
	}
	for isIdentCont(l.cur()) {
		l.pos++
	}
	_ = nameStart
	return l.tok(token.Reference, start), nil
}

// lexString scans a double-quoted string literal with \\ \" \n \t escapes.
func (l *lexer) lexString(start uint32) (token.Token, *diag.Diagnostic) {
	l.pos++ // consume opening quote
	for {
		c := l.cur()
		switch {
		case c == sentinel:
			d := diag.New(diag.UnterminatedString, token.Range{Start: start, End: l.pos}, "unterminated string literal")
			return token.Token{}, &d
		case c == '"':
			l.pos++
			return l.tok(token.String, start), nil
		case c == '\\':
			next := l.byteAt(l.pos + 1)
			switch next {
			case '\\', '"', 'n', 't':
				l.pos += 2
			default:
				d := diag.New(diag.UnterminatedString, token.Range{Start: l.pos, End: l.pos + 2}, "invalid escape sequence '\\%c'", next)
				return token.Token{}, &d
			}
		default:
			l.pos++
		}
	}
}

// lexNumber scans an optionally-signed integer or float literal with an
// optional fractional part and exponent.
func (l *lexer) lexNumber(start uint32) (token.Token, *diag.Diagnostic) {
	if l.cur() == '+' || l.cur() == '-' {
		l.pos++
	}
	for isDigit(l.cur()) {
		l.pos++
	}

	isFloat := false
	if l.cur() == '.' && isDigit(l.byteAt(l.pos+1)) {
		isFloat = true
		l.pos++
		for isDigit(l.cur()) {
			l.pos++
		}
	}

	if l.cur() == 'e' || l.cur() == 'E' {
		save := l.pos
		p := l.pos + 1
		if l.byteAt(p) == '+' || l.byteAt(p) == '-' {
			p++
		}
		if isDigit(l.byteAt(p)) {
			isFloat = true
			l.pos = p
			for isDigit(l.cur()) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}

	if isIdentStart(l.cur()) {
		d := diag.New(diag.BadNumber, token.Range{Start: start, End: l.pos + 1}, "malformed number literal")
		return token.Token{}, &d
	}

	tag := token.Integer
	if isFloat {
		tag = token.Float
	}
	return l.tok(tag, start), nil
}
