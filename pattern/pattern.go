// Package pattern compiles pattern source text into an immutable pattern
// tree for the unification engine.
//
// # Grammar
//
//	element   = primary { postfix }
//	primary   = "(" element+ ")"        compound, matched in order
//	          | "[" element+ "]"        alternative (logical OR)
//	          | "_"                     wildcard, matches one position
//	          | "?" name [":" type]     variable, type "symbol" or "compound"
//	          | '"' bytes '"'           quoted literal symbol
//	          | bare symbol
//	postfix   = "*" | "+" | "{" m [ "," [ n ] ] "}"   repetition (sequence)
//	          | "@" name                conditional (named predicate)
//
// Repetition is only legal on a direct child of a compound; it consumes a
// variable number of sibling positions. Compiled patterns are immutable and
// safe for concurrent use.
package pattern

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel every SyntaxError wraps.
var ErrSyntax = errors.New("pattern syntax error")

// SyntaxError reports an invalid pattern source with the byte offset of the
// offending token.
type SyntaxError struct {
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at %d: %s", e.Pos, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Constraint restricts what a variable may bind to.
type Constraint uint8

const (
	// ConstraintAny allows binding any expression.
	ConstraintAny Constraint = iota
	// ConstraintSymbol allows binding symbols only.
	ConstraintSymbol
	// ConstraintCompound allows binding compounds only.
	ConstraintCompound
)

func (c Constraint) String() string {
	switch c {
	case ConstraintSymbol:
		return "symbol"
	case ConstraintCompound:
		return "compound"
	default:
		return "any"
	}
}

// Node is one node of a compiled pattern tree.
type Node interface {
	node()
}

// Symbol matches exactly the symbol with the given bytes.
type Symbol struct {
	Name []byte
}

// Variable binds the matched sub-expression under Name. A second occurrence
// of the same name must match a structurally equal sub-expression.
type Variable struct {
	Name       string
	Constraint Constraint
}

// Wildcard matches any single sub-expression and produces no binding.
type Wildcard struct{}

// Compound matches a compound expression child-by-child. Sequence children
// may consume a variable number of positions; all other children consume
// exactly one.
type Compound struct {
	Children []Node
}

// Conditional matches Inner, then evaluates the named predicate against the
// bindings accumulated so far. A false result or a constraint violation
// discards only the current branch.
type Conditional struct {
	Inner     Node
	Predicate string
}

// Alternative tries each sub-pattern against the same candidate.
type Alternative struct {
	Alts []Node
}

// Sequence matches Inner repeatedly against consecutive sibling positions,
// between Min and Max times. Max < 0 means unbounded (subject to the
// engine's repetition cap and step budget).
type Sequence struct {
	Inner Node
	Min   int
	Max   int
}

func (Symbol) node()      {}
func (Variable) node()    {}
func (Wildcard) node()    {}
func (Compound) node()    {}
func (Conditional) node() {}
func (Alternative) node() {}
func (Sequence) node()    {}

// Pattern is a compiled pattern plus the prefilter hints the matcher uses to
// narrow candidates through the index before full unification.
type Pattern struct {
	// Source is the text this pattern was compiled from.
	Source string
	Root   Node

	// TopSymbol is set when the whole pattern is a literal symbol.
	TopSymbol []byte
	// LeadSymbol is set when the pattern is a compound whose first child is
	// a literal symbol.
	LeadSymbol []byte
	// FixedArity is the top-level arity a match must have, or -1 when the
	// pattern does not pin it down (variables, alternatives, sequences).
	FixedArity int
}

func newPattern(source string, root Node) *Pattern {
	p := &Pattern{
		Source:     source,
		Root:       root,
		FixedArity: -1,
	}
	p.computeHints(root)
	return p
}

// computeHints derives the prefilter hints, looking through conditionals:
// they only tighten a match, so the inner pattern's hints stay valid.
func (p *Pattern) computeHints(n Node) {
	switch v := n.(type) {
	case Symbol:
		p.TopSymbol = v.Name
		p.FixedArity = 0
	case Compound:
		if !hasSequence(v.Children) {
			p.FixedArity = len(v.Children)
		}
		if len(v.Children) > 0 {
			if lead, ok := leadingSymbol(v.Children[0]); ok {
				p.LeadSymbol = lead
			}
		}
	case Conditional:
		p.computeHints(v.Inner)
	}
}

func hasSequence(children []Node) bool {
	for _, c := range children {
		if _, ok := c.(Sequence); ok {
			return true
		}
	}
	return false
}

func leadingSymbol(n Node) ([]byte, bool) {
	switch v := n.(type) {
	case Symbol:
		return v.Name, true
	case Conditional:
		return leadingSymbol(v.Inner)
	}
	return nil, false
}
