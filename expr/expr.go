// Package expr defines the immutable expression tree that atomgo stores,
// indexes and matches.
//
// An expression is either a Symbol (an arbitrary byte string) or a Compound
// (an ordered list of at least one child expression). Zero-child compounds do
// not exist; that case is a Symbol. Expressions are immutable once built and
// may be shared freely across goroutines.
//
// Canonical order (Compare) is the order the codec preserves byte-wise:
// symbols precede compounds; symbols compare bytewise; compounds compare by
// arity ascending, then by children left-to-right.
package expr

import (
	"bytes"
	"fmt"
	"strings"
)

// Expression is an immutable symbolic tree node.
//
// The two implementations are Symbol and Compound. Implementations outside
// this package are not supported.
type Expression interface {
	// Arity returns the number of direct children (0 for symbols).
	Arity() int

	fmt.Stringer

	sealed()
}

// Symbol is a leaf expression holding arbitrary bytes.
type Symbol struct {
	name []byte
}

// NewSymbol creates a Symbol leaf. The byte slice is copied.
func NewSymbol(name []byte) Symbol {
	return Symbol{name: bytes.Clone(name)}
}

// S creates a Symbol leaf from a string.
func S(name string) Symbol {
	return Symbol{name: []byte(name)}
}

// Bytes returns the symbol bytes. The returned slice must be treated as
// read-only.
func (s Symbol) Bytes() []byte { return s.name }

// Arity implements Expression. Symbols have no children.
func (s Symbol) Arity() int { return 0 }

func (s Symbol) String() string {
	if needsQuoting(s.name) {
		return fmt.Sprintf("%q", s.name)
	}
	return string(s.name)
}

func (s Symbol) sealed() {}

// Compound is an ordered list of sub-expressions.
type Compound struct {
	children []Expression
}

// NewCompound creates a Compound from the given children. It panics if no
// children are given: a zero-child compound is a Symbol, not a Compound.
// The children slice is copied.
func NewCompound(children ...Expression) Compound {
	if len(children) == 0 {
		panic("expr: compound requires at least one child")
	}
	cs := make([]Expression, len(children))
	copy(cs, children)
	return Compound{children: cs}
}

// C is shorthand for NewCompound.
func C(children ...Expression) Compound {
	return NewCompound(children...)
}

// Children returns the child expressions. The returned slice must be treated
// as read-only.
func (c Compound) Children() []Expression { return c.children }

// Arity implements Expression.
func (c Compound) Arity() int { return len(c.children) }

func (c Compound) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, child := range c.children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(child.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (c Compound) sealed() {}

// Equal reports structural equality of two expressions.
func Equal(a, b Expression) bool {
	return Compare(a, b) == 0
}

// Compare orders two expressions canonically and returns -1, 0 or +1.
//
// Symbols precede compounds. Symbols compare bytewise. Compounds compare by
// arity ascending, then by children left-to-right.
func Compare(a, b Expression) int {
	sa, aIsSym := a.(Symbol)
	sb, bIsSym := b.(Symbol)
	switch {
	case aIsSym && bIsSym:
		return bytes.Compare(sa.name, sb.name)
	case aIsSym:
		return -1
	case bIsSym:
		return 1
	}

	ca := a.(Compound)
	cb := b.(Compound)
	if ca.Arity() != cb.Arity() {
		if ca.Arity() < cb.Arity() {
			return -1
		}
		return 1
	}
	for i := range ca.children {
		if c := Compare(ca.children[i], cb.children[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Depth returns the height of the expression tree. A symbol has depth 1.
func Depth(e Expression) int {
	c, ok := e.(Compound)
	if !ok {
		return 1
	}
	max := 0
	for _, child := range c.children {
		if d := Depth(child); d > max {
			max = d
		}
	}
	return 1 + max
}

// Size returns the total number of nodes in the expression tree.
func Size(e Expression) int {
	c, ok := e.(Compound)
	if !ok {
		return 1
	}
	n := 1
	for _, child := range c.children {
		n += Size(child)
	}
	return n
}

// ContainsSymbol reports whether the expression contains a symbol with the
// given bytes at any position.
func ContainsSymbol(e Expression, sym []byte) bool {
	switch v := e.(type) {
	case Symbol:
		return bytes.Equal(v.name, sym)
	case Compound:
		for _, child := range v.children {
			if ContainsSymbol(child, sym) {
				return true
			}
		}
	}
	return false
}

func needsQuoting(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	for _, c := range b {
		if c <= ' ' || c == '(' || c == ')' || c == '[' || c == ']' ||
			c == '"' || c == '?' || c == '@' || c == 0x7f {
			return true
		}
	}
	return false
}
