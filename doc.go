// Package atomgo provides an embedded symbolic knowledge store for Go.
//
// Atomgo stores S-expression-like atoms in a prefix-sharing trie, exposes
// set algebra over stores, indexes expressions along symbol, arity and shape
// dimensions, and matches them against compiled patterns with a unification
// engine.
//
// # Quick Start
//
//	space := atomgo.New()
//	space.Insert(expr.C(expr.S("human"), expr.S("socrates")))
//	space.Insert(expr.C(expr.S("human"), expr.S("plato")))
//
//	matches, _ := space.Match(ctx, "(human ?X)")
//	for _, m := range matches {
//	    fmt.Println(m.Bindings["X"]) // socrates, plato
//	}
//
// # Pattern Language
//
// Patterns are textual and compiled through a bounded cache:
//
//	(human ?X)          variable binding
//	(pair ?X ?X)        repeated variables must agree
//	(f _ b)             wildcard matches anything, binds nothing
//	(?op:symbol ?arg)   typed variable
//	[(f ?X) (g ?X)]     alternatives, union of all succeeding branches
//	(list ?X*)          sequence, greedy with backtracking
//	(age ?N@numeric)    conditional, gated by a registered predicate
//
// # Query Layer
//
// Single-dimension queries return ID sets that compose:
//
//	byArity := space.QueryByArity(2)
//	bySym := space.QueryBySymbol([]byte("human"))
//	both := space.Combine(byArity, bySym, index.ModeAnd)
//
// Match uses the same indices internally to prefilter candidates before
// unification.
//
// # Budgeted Matching
//
// Unification is budgeted. Exhausting the budget fails with
// ErrMatchBudgetExceeded rather than silently truncating results:
//
//	space := atomgo.New(atomgo.WithMatchBudget(1_000_000))
//
// # Key Features
//
//   - Order-preserving canonical byte encoding of expressions
//   - Copy-on-write trie with O(1) clone and structural union/intersect/difference
//   - Roaring-bitmap ID sets over symbol, arity and shape dimensions
//   - LRU-cached pattern compiler
//   - Unification with typed variables, sequences, alternatives and predicates
//   - Bidirectional pattern-against-pattern unification
package atomgo
