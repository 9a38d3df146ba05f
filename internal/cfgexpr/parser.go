package cfgexpr

import (
	"fmt"
	"strings"
)

// Parse parses a predicate as it appears in cargo metadata's `target` field:
// either `cfg(EXPR)` or the inner EXPR itself. The grammar is
//
//	EXPR  = "all" "(" LIST ")" | "any" "(" LIST ")" | "not" "(" EXPR ")" | ATOM
//	LIST  = [ EXPR { "," EXPR } [ "," ] ]
//	ATOM  = IDENT [ "=" STRING ]
//
// Bare target triples are not cfg expressions and are rejected here; callers
// handle them separately.
func Parse(predicate string) (Expr, error) {
	src := strings.TrimSpace(predicate)
	if inner, ok := strings.CutPrefix(src, "cfg("); ok {
		if !strings.HasSuffix(inner, ")") {
			return nil, fmt.Errorf("unterminated cfg() in %q", predicate)
		}
		src = inner[:len(inner)-1]
	}

	p := &parser{src: src}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing input %q in predicate", p.src[p.pos:])
	}
	return expr, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d in %q", string(c), p.pos, p.src)
	}
	p.pos++
	return nil
}

func (p *parser) parseExpr() (Expr, error) {
	p.skipSpace()
	ident := p.readIdent()
	if ident == "" {
		return nil, fmt.Errorf("expected identifier at offset %d in %q", p.pos, p.src)
	}

	p.skipSpace()
	switch {
	case ident == "all" && p.peek() == '(':
		exprs, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return All{Exprs: exprs}, nil
	case ident == "any" && p.peek() == '(':
		exprs, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return Any{Exprs: exprs}, nil
	case ident == "not" && p.peek() == '(':
		p.pos++ // consume (
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return Not{Expr: inner}, nil
	case p.peek() == '=':
		p.pos++ // consume =
		value, err := p.readString()
		if err != nil {
			return nil, err
		}
		return Atom{Key: ident, Value: value, HasValue: true}, nil
	default:
		return Atom{Key: ident}, nil
	}
}

func (p *parser) parseList() ([]Expr, error) {
	p.pos++ // consume (
	var exprs []Expr
	for {
		p.skipSpace()
		if p.peek() == ')' {
			p.pos++
			return exprs, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return exprs, nil
	}
}

func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) readString() (string, error) {
	p.skipSpace()
	if p.peek() != '"' {
		return "", fmt.Errorf("expected string at offset %d in %q", p.pos, p.src)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		p.pos++
	}
	if p.pos == len(p.src) {
		return "", fmt.Errorf("unterminated string in %q", p.src)
	}
	value := p.src[start:p.pos]
	p.pos++
	return value, nil
}
