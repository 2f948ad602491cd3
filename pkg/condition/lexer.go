package condition

import (
	"fmt"
	"strconv"
	"strings"
)

type kind int

const (
	kindEOF kind = iota
	kindIdent
	kindString
	kindNumber
	kindBool
	kindNull
	kindOp
	kindLParen
	kindRParen
)

type token struct {
	kind kind
	text string
	pos  int
}

// lexer splits a condition into tokens. Operators are ==, !=, <, <=, >, >=,
// &&, || and !.
type lexer struct {
	src string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && strings.ContainsRune(" \t\r\n", rune(l.src[l.pos])) {
		l.pos++
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: kindEOF, pos: start}, nil
	}

	ch := l.src[l.pos]
	switch ch {
	case '(':
		l.pos++
		return token{kind: kindLParen, text: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{kind: kindRParen, text: ")", pos: start}, nil
	case '"', '\'':
		return l.quoted(ch)
	}

	for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "!"} {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return token{kind: kindOp, text: op, pos: start}, nil
		}
	}
	switch ch {
	case '=', '&', '|':
		return token{}, fmt.Errorf("%w: stray %q at %d", ErrSyntax, ch, start)
	}

	for l.pos < len(l.src) && !strings.ContainsRune(" \t\r\n()!=<>&|\"'", rune(l.src[l.pos])) {
		l.pos++
	}
	word := l.src[start:l.pos]
	switch strings.ToLower(word) {
	case "true", "false":
		return token{kind: kindBool, text: strings.ToLower(word), pos: start}, nil
	case "null", "nil":
		return token{kind: kindNull, text: "null", pos: start}, nil
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return token{kind: kindNumber, text: word, pos: start}, nil
	}
	return token{kind: kindIdent, text: word, pos: start}, nil
}

func (l *lexer) quoted(quote byte) (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		l.pos++
		switch {
		case ch == '\\' && l.pos < len(l.src):
			b.WriteByte(l.src[l.pos])
			l.pos++
		case ch == quote:
			return token{kind: kindString, text: b.String(), pos: start}, nil
		default:
			b.WriteByte(ch)
		}
	}
	return token{}, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
}

func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == kindEOF {
			return out, nil
		}
	}
}
