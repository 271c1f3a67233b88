package atomgo

import (
	"context"
	"time"

	"github.com/hupe1980/atomgo/codec"
	"github.com/hupe1980/atomgo/expr"
	"github.com/hupe1980/atomgo/index"
	"github.com/hupe1980/atomgo/pattern"
	"github.com/hupe1980/atomgo/unify"
)

// ID is a stable handle for an inserted expression, assigned monotonically
// on first insertion and never reused.
type ID = index.ID

// Match is one successful unification of a pattern against a stored
// expression. An expression appears once per binding set it admits.
type Match struct {
	ID       ID
	Expr     expr.Expression
	Bindings unify.BindingSet
}

// Space is an embedded symbolic knowledge store: expressions live in a
// prefix-sharing trie, are reachable through symbol/arity/shape indices and
// are matched against compiled patterns with a unification engine.
//
// Concurrency contract: one writer, many readers. Insert and Remove require
// exclusive access (caller discipline or an external lock); Get, queries and
// Match may run concurrently with each other. The pattern cache is safe for
// concurrent use on its own.
type Space struct {
	idx      *index.Index
	compiler *pattern.Compiler
	engine   *unify.Engine
	logger   *Logger
	metrics  MetricsCollector
}

// New creates an empty Space.
func New(opts ...Option) *Space {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Space{
		idx:      index.New(),
		compiler: pattern.NewCompiler(o.patternCacheSize),
		engine:   unify.New(o.unifyConfig, o.predicates),
		logger:   o.logger,
		metrics:  o.metricsCollector,
	}
}

// Insert stores an expression and returns its ID. Inserting a structurally
// equal expression again returns the existing ID.
func (s *Space) Insert(e expr.Expression) ID {
	start := time.Now()
	id, created := s.idx.Insert(e)
	s.metrics.RecordInsert(created, time.Since(start))
	if created {
		s.logger.WithID(uint32(id)).Debug("expression inserted")
	}
	return id
}

// Remove deletes the expression with the given ID from the store and every
// index. It returns false when the ID is unknown.
func (s *Space) Remove(id ID) bool {
	start := time.Now()
	removed := s.idx.Remove(id)
	s.metrics.RecordRemove(removed, time.Since(start))
	if removed {
		s.logger.WithID(uint32(id)).Debug("expression removed")
	}
	return removed
}

// Get returns the expression stored under id.
func (s *Space) Get(id ID) (expr.Expression, bool) {
	return s.idx.Get(id)
}

// Lookup returns the ID of a structurally equal stored expression, if any.
func (s *Space) Lookup(e expr.Expression) (ID, bool) {
	return s.idx.Lookup(e)
}

// Len returns the number of stored expressions.
func (s *Space) Len() int {
	return s.idx.Len()
}

// QueryBySymbol returns the IDs of expressions containing the symbol at any
// position.
func (s *Space) QueryBySymbol(sym []byte) *index.IDSet {
	start := time.Now()
	set := s.idx.QueryBySymbol(sym)
	s.metrics.RecordQuery("symbol", set.Cardinality(), time.Since(start))
	return set
}

// QueryByArity returns the IDs of expressions with the given top-level
// arity. Symbols have arity 0.
func (s *Space) QueryByArity(n int) *index.IDSet {
	start := time.Now()
	set := s.idx.QueryByArity(n)
	s.metrics.RecordQuery("arity", set.Cardinality(), time.Since(start))
	return set
}

// QueryByStructure returns the IDs of expressions whose tree structure
// equals that of e, ignoring symbol content.
func (s *Space) QueryByStructure(e expr.Expression) *index.IDSet {
	start := time.Now()
	set := s.idx.QueryByStructure(e)
	s.metrics.RecordQuery("shape", set.Cardinality(), time.Since(start))
	return set
}

// Combine composes two query results with AND or OR semantics.
func (s *Space) Combine(a, b *index.IDSet, mode index.Mode) *index.IDSet {
	return index.Combine(a, b, mode)
}

// Encode returns the canonical key of an expression.
func (s *Space) Encode(e expr.Expression) []byte {
	return codec.Encode(e)
}

// Decode reverses Encode. Bytes not produced by Encode fail with
// ErrMalformedKey.
func (s *Space) Decode(key []byte) (expr.Expression, error) {
	e, err := codec.Decode(key)
	return e, translateError(err)
}

// CompilePattern compiles pattern source through the space's cache. Invalid
// source fails with ErrPatternSyntax.
func (s *Space) CompilePattern(source string) (*pattern.Pattern, error) {
	p, err := s.compiler.Compile(source)
	return p, translateError(err)
}

// PurgePatternCache evicts every cached compiled pattern.
func (s *Space) PurgePatternCache() {
	s.compiler.Purge()
}

// Match unifies a pattern against the store and returns every binding set.
//
// Candidates are prefiltered through the indices before full unification:
// a pattern with a fixed top-level arity narrows by arity, a literal leading
// symbol narrows by symbol, and both combine with AND. Only the reduced
// candidate set is unified, in parallel.
func (s *Space) Match(ctx context.Context, source string) ([]Match, error) {
	start := time.Now()
	p, err := s.CompilePattern(source)
	if err != nil {
		s.metrics.RecordMatch(0, 0, time.Since(start), err)
		return nil, err
	}

	ids, exprs := s.candidates(p)
	results, err := s.engine.FindMatches(ctx, p, exprs)
	if err != nil {
		err = translateError(err)
		s.metrics.RecordMatch(len(ids), 0, time.Since(start), err)
		return nil, err
	}

	var out []Match
	for i, sets := range results {
		for _, b := range sets {
			out = append(out, Match{ID: ids[i], Expr: exprs[i], Bindings: b})
		}
	}
	s.metrics.RecordMatch(len(ids), len(out), time.Since(start), nil)
	s.logger.WithPattern(source).WithCount(len(out)).Debug("match completed",
		"candidates", len(ids))
	return out, nil
}

// MatchExpr unifies a pattern against a single expression, which does not
// need to be stored.
func (s *Space) MatchExpr(ctx context.Context, source string, e expr.Expression) ([]unify.BindingSet, error) {
	p, err := s.CompilePattern(source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sets, err := s.engine.Unify(p, e)
	return sets, translateError(err)
}

// UnifyPatterns unifies two patterns bidirectionally: each side's variables
// are renamed apart and treated as independently quantified. Right-side
// variables are reported with a "'" suffix.
func (s *Space) UnifyPatterns(ctx context.Context, sourceA, sourceB string) ([]unify.BindingSet, error) {
	a, err := s.CompilePattern(sourceA)
	if err != nil {
		return nil, err
	}
	b, err := s.CompilePattern(sourceB)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sets, err := s.engine.UnifyBidirectional(a, b)
	return sets, translateError(err)
}

// Rebuild re-derives the symbol/arity/shape indices from the authoritative
// trie. The store's contents are unchanged.
func (s *Space) Rebuild() error {
	return translateError(s.idx.Rebuild())
}

// candidates narrows the store through the indices using the pattern's
// prefilter hints. The fallback is every stored expression.
func (s *Space) candidates(p *pattern.Pattern) ([]ID, []expr.Expression) {
	var set *index.IDSet
	switch {
	case p.TopSymbol != nil:
		// A literal symbol pattern matches exactly the arity-0 expression
		// carrying that symbol.
		set = index.Combine(s.idx.QueryBySymbol(p.TopSymbol), s.idx.QueryByArity(0), index.ModeAnd)
	default:
		if p.FixedArity >= 0 {
			set = s.idx.QueryByArity(p.FixedArity)
		}
		if p.LeadSymbol != nil {
			bySym := s.idx.QueryBySymbol(p.LeadSymbol)
			if set == nil {
				set = bySym
			} else {
				set.And(bySym)
			}
		}
		if set == nil {
			set = s.idx.All()
		}
	}

	ids := make([]ID, 0, set.Cardinality())
	exprs := make([]expr.Expression, 0, set.Cardinality())
	for id := range set.All() {
		e, ok := s.idx.Get(id)
		if !ok {
			continue
		}
		ids = append(ids, id)
		exprs = append(exprs, e)
	}
	return ids, exprs
}
