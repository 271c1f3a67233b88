package pattern

import (
	"fmt"
	"strconv"
)

// Parse compiles pattern source text without going through a cache. Most
// callers should use a Compiler instead.
func Parse(source string) (*Pattern, error) {
	p := &parser{src: source}
	root, err := p.parseElement(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf(p.pos, "unexpected %q after pattern", p.src[p.pos])
	}
	if _, ok := root.(Sequence); ok {
		return nil, p.errorf(0, "repetition requires an enclosing compound")
	}
	return newPattern(source, root), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

// parseElement parses a primary followed by its postfix operators. Sequence
// postfixes are only accepted when the element sits inside a compound.
func (p *parser) parseElement(inCompound bool) (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '*', '+', '{':
			start := p.pos
			if _, ok := n.(Sequence); ok {
				return nil, p.errorf(start, "double repetition")
			}
			min, max, err := p.parseRepetition()
			if err != nil {
				return nil, err
			}
			if !inCompound {
				return nil, p.errorf(start, "repetition requires an enclosing compound")
			}
			n = Sequence{Inner: n, Min: min, Max: max}
		case '@':
			p.pos++
			name, err := p.parseName("predicate name")
			if err != nil {
				return nil, err
			}
			n = Conditional{Inner: n, Predicate: name}
		default:
			return n, nil
		}
	}
	return n, nil
}

func (p *parser) parsePrimary() (Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf(p.pos, "unexpected end of pattern")
	}
	switch c := p.src[p.pos]; c {
	case '(':
		return p.parseCompound()
	case '[':
		return p.parseAlternative()
	case '?':
		return p.parseVariable()
	case '"':
		return p.parseQuoted()
	case ')', ']':
		return nil, p.errorf(p.pos, "unexpected %q", c)
	case '*', '+', '{', '}', '@':
		return nil, p.errorf(p.pos, "unexpected %q", c)
	default:
		return p.parseBare()
	}
}

func (p *parser) parseCompound() (Node, error) {
	open := p.pos
	p.pos++ // consume (
	var children []Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf(open, "unclosed compound")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			if len(children) == 0 {
				return nil, p.errorf(open, "empty compound; a zero-child compound is a symbol")
			}
			return Compound{Children: children}, nil
		}
		child, err := p.parseElement(true)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

func (p *parser) parseAlternative() (Node, error) {
	open := p.pos
	p.pos++ // consume [
	var alts []Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf(open, "unclosed alternative")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			if len(alts) == 0 {
				return nil, p.errorf(open, "empty alternative")
			}
			return Alternative{Alts: alts}, nil
		}
		// Branches occupy a single position each, so repetition inside an
		// alternative is rejected even inside a compound.
		alt, err := p.parseElement(false)
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
}

func (p *parser) parseVariable() (Node, error) {
	p.pos++ // consume ?
	name, err := p.parseName("variable name")
	if err != nil {
		return nil, err
	}
	constraint := ConstraintAny
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		tpos := p.pos
		typeName, err := p.parseName("variable type")
		if err != nil {
			return nil, err
		}
		switch typeName {
		case "symbol":
			constraint = ConstraintSymbol
		case "compound":
			constraint = ConstraintCompound
		case "expr", "any":
			constraint = ConstraintAny
		default:
			return nil, p.errorf(tpos, "unknown variable type %q", typeName)
		}
	}
	return Variable{Name: name, Constraint: constraint}, nil
}

func (p *parser) parseQuoted() (Node, error) {
	open := p.pos
	p.pos++ // consume "
	var name []byte
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return Symbol{Name: name}, nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf(p.pos, "truncated escape in quoted symbol")
			}
			next := p.src[p.pos+1]
			if next != '"' && next != '\\' {
				return nil, p.errorf(p.pos+1, "invalid escape %q in quoted symbol", next)
			}
			name = append(name, next)
			p.pos += 2
		default:
			name = append(name, c)
			p.pos++
		}
	}
	return nil, p.errorf(open, "unterminated quoted symbol")
}

func (p *parser) parseBare() (Node, error) {
	start := p.pos
	if p.src[p.pos] == '_' && (p.pos+1 >= len(p.src) || isDelimiter(p.src[p.pos+1])) {
		p.pos++
		return Wildcard{}, nil
	}
	for p.pos < len(p.src) && !isDelimiter(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, p.errorf(start, "expected symbol")
	}
	return Symbol{Name: []byte(p.src[start:p.pos])}, nil
}

func (p *parser) parseRepetition() (min, max int, err error) {
	switch p.src[p.pos] {
	case '*':
		p.pos++
		return 0, -1, nil
	case '+':
		p.pos++
		return 1, -1, nil
	}
	// '{' m [ ',' [ n ] ] '}'
	open := p.pos
	p.pos++
	min, err = p.parseInt()
	if err != nil {
		return 0, 0, err
	}
	max = min
	if p.pos < len(p.src) && p.src[p.pos] == ',' {
		p.pos++
		max = -1
		if p.pos < len(p.src) && p.src[p.pos] != '}' {
			max, err = p.parseInt()
			if err != nil {
				return 0, 0, err
			}
			if max < min {
				return 0, 0, p.errorf(open, "repetition lower bound %d exceeds upper bound %d", min, max)
			}
		}
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return 0, 0, p.errorf(open, "unclosed repetition bound")
	}
	p.pos++
	return min, max, nil
}

func (p *parser) parseInt() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf(start, "expected number")
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf(start, "invalid number: %v", err)
	}
	return n, nil
}

func (p *parser) parseName(what string) (string, error) {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf(start, "expected %s", what)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || c == '(' || c == ')' || c == '[' || c == ']' ||
		c == '{' || c == '}' || c == '"' || c == '@' || c == '*' || c == '+'
}

func isNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
