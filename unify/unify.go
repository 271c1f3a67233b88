// Package unify matches compiled patterns against expressions and against
// other patterns, producing sets of variable bindings.
//
// Matching is recursive descent over pattern-node kinds with trail-based
// backtracking. Alternatives and sequences can succeed in more than one way,
// so a single Unify call may yield several binding sets; by default every
// succeeding alternative branch contributes (completeness), configurable via
// Config.FirstAlternativeOnly.
//
// Every recursive step consumes one unit of the exploration budget; an
// exhausted budget aborts the call with a *BudgetError so pathological
// backtracking terminates instead of hanging. Constraint violations (type,
// scope, failed predicates) are local: they discard only the current branch.
package unify

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/atomgo/codec"
	"github.com/hupe1980/atomgo/expr"
	"github.com/hupe1980/atomgo/pattern"
)

// Predicate evaluates a conditional pattern against the bindings accumulated
// so far. Returning false, or an error wrapping ErrScopeViolation or
// ErrTypeConstraint, discards the current branch; any other error aborts the
// whole call.
type Predicate func(b *Bindings) (bool, error)

// Config bounds the search.
type Config struct {
	// MaxDepth prunes descent below this tree depth. Default 128.
	MaxDepth int
	// MaxSteps is the overall exploration budget per Unify call; exhausting
	// it fails with *BudgetError. Default 100000.
	MaxSteps int
	// MaxRepeat caps a single sequence expansion. Default 64.
	MaxRepeat int
	// FirstAlternativeOnly keeps only the first succeeding branch of each
	// alternative instead of the union of all succeeding branches.
	FirstAlternativeOnly bool
	// Parallelism bounds FindMatches worker goroutines. Default GOMAXPROCS.
	Parallelism int
}

// DefaultConfig returns the default search bounds.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  128,
		MaxSteps:  100_000,
		MaxRepeat: 64,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.MaxRepeat <= 0 {
		c.MaxRepeat = d.MaxRepeat
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	return c
}

// Engine unifies patterns with expressions. An Engine is immutable after
// construction and safe for concurrent use.
type Engine struct {
	cfg   Config
	preds map[string]Predicate
}

// New creates an engine with the given bounds and named predicates.
func New(cfg Config, preds map[string]Predicate) *Engine {
	ps := make(map[string]Predicate, len(preds))
	for name, p := range preds {
		ps[name] = p
	}
	return &Engine{cfg: cfg.withDefaults(), preds: ps}
}

// Unify matches a compiled pattern against one expression. It returns zero
// or more binding sets; no match is an empty result, not an error.
func (en *Engine) Unify(p *pattern.Pattern, e expr.Expression) ([]BindingSet, error) {
	return en.run(p.Root, liftExpr(e), nil)
}

// UnifyBidirectional unifies two compiled patterns, treating each side's
// variables as independently quantified: variables are renamed apart before
// matching, so a ?X on the left never captures a ?X on the right. In the
// results, left variables keep their names and right variables carry a "'"
// suffix. Only variables that resolve to a concrete term are reported.
func (en *Engine) UnifyBidirectional(a, b *pattern.Pattern) ([]BindingSet, error) {
	return en.run(renameVars(a.Root, leftPrefix), renameVars(b.Root, rightPrefix), bidiRename)
}

// FindMatches unifies a pattern against each expression independently and in
// parallel; results[i] holds the binding sets for exprs[i]. Expressions are
// immutable, so the only coordination is the bounded errgroup.
func (en *Engine) FindMatches(ctx context.Context, p *pattern.Pattern, exprs []expr.Expression) ([][]BindingSet, error) {
	results := make([][]BindingSet, len(exprs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(en.cfg.Parallelism)
	for i, e := range exprs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sets, err := en.Unify(p, e)
			if err != nil {
				return err
			}
			results[i] = sets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (en *Engine) run(a, b pattern.Node, rename func(string) string) ([]BindingSet, error) {
	m := &matcher{
		engine: en,
		steps:  en.cfg.MaxSteps,
		b:      &Bindings{},
	}
	var (
		out  []BindingSet
		seen = make(map[string]struct{})
	)
	err := m.match(a, b, 0, func() error {
		set := m.b.snapshot(rename)
		fp := fingerprint(set)
		if _, dup := seen[fp]; dup {
			return nil
		}
		seen[fp] = struct{}{}
		out = append(out, set)
		m.emitted++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// matcher carries the mutable search state of one run.
type matcher struct {
	engine  *Engine
	b       *Bindings
	steps   int
	emitted int
}

// match unifies two terms and invokes k for every way they unify. Variables
// and wildcards may appear on either side; expressions are lifted to ground
// terms. Returning nil without calling k means the branch failed.
func (m *matcher) match(a, b pattern.Node, depth int, k func() error) error {
	if m.steps--; m.steps < 0 {
		return &BudgetError{Steps: m.engine.cfg.MaxSteps}
	}
	if depth > m.engine.cfg.MaxDepth {
		return nil
	}

	a = m.b.resolve(a)
	b = m.b.resolve(b)

	// Conditionals wrap their side: unify the inner pattern first, then
	// gate every success on the predicate.
	if c, ok := a.(pattern.Conditional); ok {
		return m.match(c.Inner, b, depth, m.guard(c.Predicate, k))
	}
	if c, ok := b.(pattern.Conditional); ok {
		return m.match(a, c.Inner, depth, m.guard(c.Predicate, k))
	}

	if alt, ok := a.(pattern.Alternative); ok {
		return m.matchAlternative(alt, b, depth, k, false)
	}
	if alt, ok := b.(pattern.Alternative); ok {
		return m.matchAlternative(alt, a, depth, k, true)
	}

	if _, ok := a.(pattern.Wildcard); ok {
		return k()
	}
	if _, ok := b.(pattern.Wildcard); ok {
		return k()
	}

	if v, ok := a.(pattern.Variable); ok {
		return m.bindVariable(v, b, k)
	}
	if v, ok := b.(pattern.Variable); ok {
		return m.bindVariable(v, a, k)
	}

	switch av := a.(type) {
	case pattern.Symbol:
		if bv, ok := b.(pattern.Symbol); ok && bytes.Equal(av.Name, bv.Name) {
			return k()
		}
		return nil
	case pattern.Compound:
		bv, ok := b.(pattern.Compound)
		if !ok {
			return nil
		}
		// Cheap arity reject when neither side can flex.
		if !containsSequence(av.Children) && !containsSequence(bv.Children) &&
			len(av.Children) != len(bv.Children) {
			return nil
		}
		return m.matchChildren(av.Children, bv.Children, depth+1, k)
	default:
		// A bare sequence outside a compound never unifies; the parser
		// rejects it, so this only guards lifted invariants.
		return nil
	}
}

// matchChildren aligns two child lists position by position. A Sequence head
// on either side expands greedily from the largest feasible repetition
// downward, backtracking into smaller expansions and emitting every
// consistent alignment.
func (m *matcher) matchChildren(ps, ts []pattern.Node, depth int, k func() error) error {
	if m.steps--; m.steps < 0 {
		return &BudgetError{Steps: m.engine.cfg.MaxSteps}
	}
	if len(ps) == 0 && len(ts) == 0 {
		return k()
	}
	if len(ps) > 0 {
		if seq, ok := ps[0].(pattern.Sequence); ok {
			return m.matchSequence(seq, ps[1:], ts, depth, k)
		}
	}
	if len(ts) > 0 {
		if seq, ok := ts[0].(pattern.Sequence); ok {
			return m.matchSequence(seq, ts[1:], ps, depth, k)
		}
	}
	if len(ps) == 0 || len(ts) == 0 {
		return nil
	}
	return m.match(ps[0], ts[0], depth, func() error {
		return m.matchChildren(ps[1:], ts[1:], depth, k)
	})
}

func (m *matcher) matchSequence(seq pattern.Sequence, rest, ts []pattern.Node, depth int, k func() error) error {
	high := len(ts) - minWidth(rest)
	if seq.Max >= 0 && seq.Max < high {
		high = seq.Max
	}
	if m.engine.cfg.MaxRepeat < high {
		high = m.engine.cfg.MaxRepeat
	}
	for n := high; n >= seq.Min; n-- {
		err := m.matchRepeat(seq.Inner, ts[:n], depth, func() error {
			return m.matchChildren(rest, ts[n:], depth, k)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// matchRepeat unifies inner against each of the terms in order, sharing one
// binding environment across repetitions.
func (m *matcher) matchRepeat(inner pattern.Node, ts []pattern.Node, depth int, k func() error) error {
	if len(ts) == 0 {
		return k()
	}
	return m.match(inner, ts[0], depth, func() error {
		return m.matchRepeat(inner, ts[1:], depth, k)
	})
}

func (m *matcher) matchAlternative(alt pattern.Alternative, other pattern.Node, depth int, k func() error, swapped bool) error {
	for _, branch := range alt.Alts {
		before := m.emitted
		var err error
		if swapped {
			err = m.match(other, branch, depth, k)
		} else {
			err = m.match(branch, other, depth, k)
		}
		if err != nil {
			return err
		}
		if m.engine.cfg.FirstAlternativeOnly && m.emitted > before {
			return nil
		}
	}
	return nil
}

// bindVariable binds an unbound variable to a term, after the type
// constraint and occurs check. v is already resolved, so it is unbound;
// rebinding consistency is handled by resolve in match.
func (m *matcher) bindVariable(v pattern.Variable, t pattern.Node, k func() error) error {
	if !constraintAllows(v.Constraint, t) {
		return nil
	}
	if tv, ok := t.(pattern.Variable); ok && tv.Name == v.Name {
		return k()
	}
	if m.b.occurs(v.Name, t) {
		return nil
	}
	mark := m.b.bind(v.Name, t)
	err := k()
	m.b.undo(mark)
	return err
}

// guard wraps a continuation with a predicate evaluation. Scope and type
// violations fail only this branch; unknown predicates and other predicate
// errors abort the call.
func (m *matcher) guard(name string, k func() error) func() error {
	return func() error {
		pred, ok := m.engine.preds[name]
		if !ok {
			return &UnknownPredicateError{Name: name}
		}
		ok, err := pred(m.b)
		if err != nil {
			if isBranchLocal(err) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}
		return k()
	}
}

func isBranchLocal(err error) bool {
	return errors.Is(err, ErrScopeViolation) || errors.Is(err, ErrTypeConstraint)
}

func constraintAllows(c pattern.Constraint, t pattern.Node) bool {
	switch c {
	case pattern.ConstraintSymbol:
		switch t.(type) {
		case pattern.Symbol, pattern.Variable, pattern.Wildcard:
			return true
		}
		return false
	case pattern.ConstraintCompound:
		switch t.(type) {
		case pattern.Compound, pattern.Variable, pattern.Wildcard:
			return true
		}
		return false
	default:
		return true
	}
}

// minWidth is the fewest sibling positions a child list can consume.
func minWidth(nodes []pattern.Node) int {
	w := 0
	for _, n := range nodes {
		if seq, ok := n.(pattern.Sequence); ok {
			w += seq.Min
			continue
		}
		w++
	}
	return w
}

func containsSequence(nodes []pattern.Node) bool {
	for _, n := range nodes {
		if _, ok := n.(pattern.Sequence); ok {
			return true
		}
	}
	return false
}

// liftExpr converts an expression into a ground term so one matching routine
// serves both expression matching and pattern-pattern unification.
func liftExpr(e expr.Expression) pattern.Node {
	switch v := e.(type) {
	case expr.Symbol:
		return pattern.Symbol{Name: v.Bytes()}
	case expr.Compound:
		children := make([]pattern.Node, v.Arity())
		for i, child := range v.Children() {
			children[i] = liftExpr(child)
		}
		return pattern.Compound{Children: children}
	default:
		return pattern.Wildcard{}
	}
}

const (
	leftPrefix  = "\x00l\x00"
	rightPrefix = "\x00r\x00"
)

// renameVars rewrites every variable name with a reserved prefix so the two
// sides of a bidirectional unification cannot capture each other.
func renameVars(n pattern.Node, prefix string) pattern.Node {
	switch v := n.(type) {
	case pattern.Variable:
		return pattern.Variable{Name: prefix + v.Name, Constraint: v.Constraint}
	case pattern.Compound:
		children := make([]pattern.Node, len(v.Children))
		for i, child := range v.Children {
			children[i] = renameVars(child, prefix)
		}
		return pattern.Compound{Children: children}
	case pattern.Conditional:
		return pattern.Conditional{Inner: renameVars(v.Inner, prefix), Predicate: v.Predicate}
	case pattern.Alternative:
		alts := make([]pattern.Node, len(v.Alts))
		for i, alt := range v.Alts {
			alts[i] = renameVars(alt, prefix)
		}
		return pattern.Alternative{Alts: alts}
	case pattern.Sequence:
		return pattern.Sequence{Inner: renameVars(v.Inner, prefix), Min: v.Min, Max: v.Max}
	default:
		return n
	}
}

func bidiRename(name string) string {
	if rest, ok := strings.CutPrefix(name, leftPrefix); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(name, rightPrefix); ok {
		return rest + "'"
	}
	return name
}

// fingerprint canonicalizes a binding set for duplicate suppression across
// branches that succeed with identical bindings.
func fingerprint(set BindingSet) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(0)
		sb.Write(codec.Encode(set[name]))
		sb.WriteByte(0)
	}
	return sb.String()
}
