// Package condition evaluates the boolean guards stored on validation rules,
// for example `active == true && grade != "C"` or `age >= 18`. Identifiers
// name entry values; dotted identifiers walk nested maps.
package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed expressions.
var ErrSyntax = errors.New("condition: syntax error")

// Expr is a parsed condition. The zero value and the empty expression are
// always true.
type Expr struct {
	source string
	root   node
}

// Parse compiles source.
func Parse(source string) (*Expr, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return &Expr{}, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != kindEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}
	return &Expr{source: trimmed, root: root}, nil
}

// Eval parses and evaluates source in one step.
func Eval(source string, values map[string]any) (bool, error) {
	expr, err := Parse(source)
	if err != nil {
		return false, err
	}
	return expr.Eval(values), nil
}

// String returns the trimmed source.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Eval reports whether the condition holds for values.
func (e *Expr) Eval(values map[string]any) bool {
	if e == nil || e.root == nil {
		return true
	}
	return e.root.eval(values)
}

type node interface {
	eval(values map[string]any) bool
}

type andNode struct{ left, right node }

func (n andNode) eval(v map[string]any) bool { return n.left.eval(v) && n.right.eval(v) }

type orNode struct{ left, right node }

func (n orNode) eval(v map[string]any) bool { return n.left.eval(v) || n.right.eval(v) }

type notNode struct{ inner node }

func (n notNode) eval(v map[string]any) bool { return !n.inner.eval(v) }

type truthyNode struct{ path string }

func (n truthyNode) eval(v map[string]any) bool {
	value, _ := lookup(v, n.path)
	return truthy(value)
}

type compareNode struct {
	path string
	op   string
	lit  token
}

func (n compareNode) eval(v map[string]any) bool {
	value, _ := lookup(v, n.path)
	switch n.lit.kind {
	case kindNull:
		return (value == nil) == (n.op == "==")
	case kindBool:
		return (truthy(value) == (n.lit.text == "true")) == (n.op == "==")
	case kindNumber:
		want, _ := strconv.ParseFloat(n.lit.text, 64)
		got, ok := number(value)
		if !ok {
			return n.op == "!="
		}
		switch n.op {
		case "==":
			return got == want
		case "!=":
			return got != want
		case "<":
			return got < want
		case "<=":
			return got <= want
		case ">":
			return got > want
		default:
			return got >= want
		}
	default:
		got := text(value)
		if n.op == "==" {
			return got == n.lit.text
		}
		return got != n.lit.text
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) accept(k kind, text string) bool {
	tok := p.peek()
	if tok.kind != k || (text != "" && tok.text != text) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOp, "||") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOp, "&&") {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(kindOp, "!") {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	if p.accept(kindLParen, "") {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(kindRParen, "") {
			tok := p.peek()
			return nil, fmt.Errorf("%w: missing ')' at %d", ErrSyntax, tok.pos)
		}
		return inner, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (node, error) {
	ident := p.peek()
	if ident.kind != kindIdent {
		if ident.kind == kindEOF {
			return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
		}
		return nil, fmt.Errorf("%w: expected a name at %d, got %q", ErrSyntax, ident.pos, ident.text)
	}
	p.pos++

	op := p.peek()
	if op.kind != kindOp || op.text == "!" || op.text == "&&" || op.text == "||" {
		return truthyNode{path: ident.text}, nil
	}
	p.pos++

	lit := p.peek()
	switch lit.kind {
	case kindString, kindNumber, kindBool, kindNull:
	case kindIdent:
		lit.kind = kindString
	default:
		return nil, fmt.Errorf("%w: expected a value after %s at %d", ErrSyntax, op.text, op.pos)
	}
	p.pos++

	ordered := op.text != "==" && op.text != "!="
	if ordered && lit.kind != kindNumber {
		return nil, fmt.Errorf("%w: %s needs a number at %d", ErrSyntax, op.text, lit.pos)
	}
	return compareNode{path: ident.text, op: op.text, lit: lit}, nil
}
