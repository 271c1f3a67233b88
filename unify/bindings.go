package unify

import (
	"fmt"

	"github.com/hupe1980/atomgo/expr"
	"github.com/hupe1980/atomgo/pattern"
)

// BindingSet is one successful match: variable name to matched expression.
// Only ground resolutions appear; a variable that unified against another
// variable without ever reaching a concrete term is omitted (it matches
// anything).
type BindingSet map[string]expr.Expression

// Bindings is the in-flight binding environment during one unification. It
// records bindings in left-to-right order with trail-based undo for
// backtracking. Predicates receive it read-only.
type Bindings struct {
	entries []binding
}

type binding struct {
	name string
	term pattern.Node
}

// Get returns the ground expression bound to name, if the variable is bound
// at this point and resolves to a concrete term.
func (b *Bindings) Get(name string) (expr.Expression, bool) {
	t, ok := b.lookup(name)
	if !ok {
		return nil, false
	}
	return b.ground(t)
}

// Require is Get for predicates: a miss is a scope violation, which fails
// only the branch the predicate guards.
func (b *Bindings) Require(name string) (expr.Expression, error) {
	e, ok := b.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: variable %q not bound at predicate evaluation", ErrScopeViolation, name)
	}
	return e, nil
}

// Len returns the number of bindings currently on the trail.
func (b *Bindings) Len() int { return len(b.entries) }

// Map returns the ground bindings visible at this point as a BindingSet.
// Variables without a concrete resolution are omitted.
func (b *Bindings) Map() BindingSet {
	return b.snapshot(nil)
}

func (b *Bindings) lookup(name string) (pattern.Node, bool) {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].name == name {
			return b.entries[i].term, true
		}
	}
	return nil, false
}

// resolve follows variable-to-variable links until it reaches an unbound
// variable or a non-variable term.
func (b *Bindings) resolve(t pattern.Node) pattern.Node {
	for {
		v, ok := t.(pattern.Variable)
		if !ok {
			return t
		}
		next, bound := b.lookup(v.Name)
		if !bound {
			return t
		}
		t = next
	}
}

// bind pushes a binding onto the trail and returns the undo mark. The caller
// must have performed the occurs check.
func (b *Bindings) bind(name string, t pattern.Node) int {
	mark := len(b.entries)
	b.entries = append(b.entries, binding{name: name, term: t})
	return mark
}

func (b *Bindings) undo(mark int) {
	b.entries = b.entries[:mark]
}

// occurs reports whether the variable name occurs in t after resolution.
// Used as the occurs check before binding a variable to a composite term.
func (b *Bindings) occurs(name string, t pattern.Node) bool {
	t = b.resolve(t)
	switch v := t.(type) {
	case pattern.Variable:
		return v.Name == name
	case pattern.Compound:
		for _, child := range v.Children {
			if b.occurs(name, child) {
				return true
			}
		}
	case pattern.Sequence:
		return b.occurs(name, v.Inner)
	case pattern.Conditional:
		return b.occurs(name, v.Inner)
	case pattern.Alternative:
		for _, alt := range v.Alts {
			if b.occurs(name, alt) {
				return true
			}
		}
	}
	return false
}

// ground converts a term to an expression when it is fully concrete.
func (b *Bindings) ground(t pattern.Node) (expr.Expression, bool) {
	t = b.resolve(t)
	switch v := t.(type) {
	case pattern.Symbol:
		return expr.NewSymbol(v.Name), true
	case pattern.Compound:
		children := make([]expr.Expression, len(v.Children))
		for i, child := range v.Children {
			e, ok := b.ground(child)
			if !ok {
				return nil, false
			}
			children[i] = e
		}
		return expr.NewCompound(children...), true
	case pattern.Conditional:
		return b.ground(v.Inner)
	default:
		return nil, false
	}
}

// snapshot freezes the current trail into a result set, applying rename so
// renamed-apart variables report under their public names.
func (b *Bindings) snapshot(rename func(string) string) BindingSet {
	out := make(BindingSet, len(b.entries))
	for _, ent := range b.entries {
		e, ok := b.ground(ent.term)
		if !ok {
			continue
		}
		name := ent.name
		if rename != nil {
			name = rename(name)
		}
		out[name] = e
	}
	return out
}
