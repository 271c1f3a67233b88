// Package index maintains the authoritative expression store and the derived
// symbol, arity and shape indices that accelerate candidate selection.
//
// The authoritative state is a single trie from encoded expression keys to
// IDs. The three dimension indices are derived from it: rebuilding them from
// the authoritative trie is deterministic and reproduces identical entries.
// Each dimension maps a dimension key to a Roaring Bitmap of IDs, stored in
// its own trie so entry lookup costs O(key length) and a query costs its
// result size, never the store size.
//
// Single-writer, many-reader discipline applies: Insert and Remove require
// exclusive access; queries may run concurrently with each other.
package index

import (
	"encoding/binary"

	"github.com/hupe1980/atomgo/codec"
	"github.com/hupe1980/atomgo/expr"
	"github.com/hupe1980/atomgo/trie"
)

// Mode selects how Combine composes two result sets.
type Mode uint8

const (
	// ModeAnd keeps IDs present in both sets.
	ModeAnd Mode = iota
	// ModeOr keeps IDs present in either set.
	ModeOr
)

// Index is the multi-dimension query layer over inserted expressions.
type Index struct {
	// keys is authoritative: encoded expression -> ID.
	keys  *trie.Trie[ID]
	exprs map[ID]expr.Expression

	// Derived dimensions. An ID appears in exactly one arity entry and one
	// shape entry, and in the symbol entry of every distinct symbol the
	// expression contains.
	symbols *trie.Trie[*IDSet]
	arities *trie.Trie[*IDSet]
	shapes  *trie.Trie[*IDSet]

	ids    *IDSet
	nextID ID
}

// New creates an empty index. IDs start at 1; 0 is never assigned.
func New() *Index {
	return &Index{
		keys:    trie.New[ID](),
		exprs:   make(map[ID]expr.Expression),
		symbols: trie.New[*IDSet](),
		arities: trie.New[*IDSet](),
		shapes:  trie.New[*IDSet](),
		ids:     NewIDSet(),
		nextID:  1,
	}
}

// Len returns the number of stored expressions.
func (ix *Index) Len() int {
	return len(ix.exprs)
}

// Insert stores an expression and returns its ID. Re-inserting a structurally
// equal expression returns the existing ID with created=false.
func (ix *Index) Insert(e expr.Expression) (id ID, created bool) {
	key := codec.Encode(e)
	if existing, ok := ix.keys.Get(key); ok {
		return existing, false
	}
	id = ix.nextID
	ix.nextID++

	ix.keys.Insert(key, id)
	ix.exprs[id] = e
	ix.ids.Add(id)
	ix.indexDimensions(id, e)
	return id, true
}

// Remove deletes the expression with the given ID from the store and all
// dimension indices. It returns false when the ID is unknown.
func (ix *Index) Remove(id ID) bool {
	e, ok := ix.exprs[id]
	if !ok {
		return false
	}
	delete(ix.exprs, id)
	ix.keys.Remove(codec.Encode(e))
	ix.ids.Remove(id)
	ix.unindexDimensions(id, e)
	return true
}

// Get returns the expression stored under id, if any.
func (ix *Index) Get(id ID) (expr.Expression, bool) {
	e, ok := ix.exprs[id]
	return e, ok
}

// Lookup returns the ID of a structurally equal stored expression, if any.
func (ix *Index) Lookup(e expr.Expression) (ID, bool) {
	return ix.keys.Get(codec.Encode(e))
}

// All returns the set of every stored ID.
func (ix *Index) All() *IDSet {
	return ix.ids.Clone()
}

// QueryBySymbol returns the IDs of expressions containing the symbol at any
// position, including the expression that is exactly this symbol.
func (ix *Index) QueryBySymbol(sym []byte) *IDSet {
	return ix.query(ix.symbols, sym)
}

// QueryByArity returns the IDs of expressions whose top-level arity is n.
// Symbols index under arity 0; compounds always have arity >= 1.
func (ix *Index) QueryByArity(n int) *IDSet {
	if n < 0 {
		return NewIDSet()
	}
	return ix.query(ix.arities, arityKey(n))
}

// QueryByShape returns the IDs of expressions whose structure equals the
// given shape key (see ShapeOf).
func (ix *Index) QueryByShape(shape []byte) *IDSet {
	return ix.query(ix.shapes, shape)
}

// QueryByStructure is shorthand for QueryByShape(ShapeOf(e)).
func (ix *Index) QueryByStructure(e expr.Expression) *IDSet {
	return ix.QueryByShape(ShapeOf(e))
}

// Combine composes two result sets with AND or OR semantics. Neither input
// is modified.
func Combine(a, b *IDSet, mode Mode) *IDSet {
	out := a.Clone()
	switch mode {
	case ModeOr:
		out.Or(b)
	default:
		out.And(b)
	}
	return out
}

// Rebuild discards the derived dimension indices and reconstructs them from
// the authoritative trie. The result is deterministic: it reproduces exactly
// the entries incremental maintenance built.
func (ix *Index) Rebuild() error {
	ix.symbols = trie.New[*IDSet]()
	ix.arities = trie.New[*IDSet]()
	ix.shapes = trie.New[*IDSet]()
	for key, id := range ix.keys.All() {
		e, err := codec.Decode(key)
		if err != nil {
			return err
		}
		ix.indexDimensions(id, e)
	}
	return nil
}

// ShapeOf returns the shape key of an expression: its structure with every
// symbol collapsed to a placeholder, encoded canonically. Two expressions
// share a shape key exactly when their trees have identical arity structure.
func ShapeOf(e expr.Expression) []byte {
	return codec.Encode(shapeExpr(e))
}

var placeholder = expr.S("")

func shapeExpr(e expr.Expression) expr.Expression {
	c, ok := e.(expr.Compound)
	if !ok {
		return placeholder
	}
	children := make([]expr.Expression, c.Arity())
	for i, child := range c.Children() {
		children[i] = shapeExpr(child)
	}
	return expr.NewCompound(children...)
}

func (ix *Index) query(dim *trie.Trie[*IDSet], key []byte) *IDSet {
	set, ok := dim.Get(key)
	if !ok {
		return NewIDSet()
	}
	return set.Clone()
}

func (ix *Index) indexDimensions(id ID, e expr.Expression) {
	for _, sym := range distinctSymbols(e) {
		addTo(ix.symbols, sym, id)
	}
	addTo(ix.arities, arityKey(e.Arity()), id)
	addTo(ix.shapes, ShapeOf(e), id)
}

func (ix *Index) unindexDimensions(id ID, e expr.Expression) {
	for _, sym := range distinctSymbols(e) {
		removeFrom(ix.symbols, sym, id)
	}
	removeFrom(ix.arities, arityKey(e.Arity()), id)
	removeFrom(ix.shapes, ShapeOf(e), id)
}

func addTo(dim *trie.Trie[*IDSet], key []byte, id ID) {
	set, ok := dim.Get(key)
	if !ok {
		set = NewIDSet()
		dim.Insert(key, set)
	}
	set.Add(id)
}

func removeFrom(dim *trie.Trie[*IDSet], key []byte, id ID) {
	set, ok := dim.Get(key)
	if !ok {
		return
	}
	set.Remove(id)
	if set.IsEmpty() {
		dim.Remove(key)
	}
}

func arityKey(n int) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(n))
}

// distinctSymbols collects each distinct symbol of e once, in first-seen
// order.
func distinctSymbols(e expr.Expression) [][]byte {
	seen := make(map[string]struct{})
	var out [][]byte
	var visit func(expr.Expression)
	visit = func(e expr.Expression) {
		switch v := e.(type) {
		case expr.Symbol:
			k := string(v.Bytes())
			if _, ok := seen[k]; ok {
				return
			}
			seen[k] = struct{}{}
			out = append(out, v.Bytes())
		case expr.Compound:
			for _, child := range v.Children() {
				visit(child)
			}
		}
	}
	visit(e)
	return out
}
