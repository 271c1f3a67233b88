// Package trie provides an ordered byte-keyed trie with structural relational
// algebra (union, intersection, difference) over whole tries.
//
// Point operations cost O(key length) independent of the number of stored
// keys. Algebra results share unmodified subtrees with their inputs via
// copy-on-write epochs: building a result never copies one-sided subtrees,
// and any later mutation of an input or a result path-copies before writing,
// so previously built tries are never disturbed.
//
// The trie is safe for concurrent readers. A writer requires exclusive access
// to the trie it mutates; this is caller discipline, not enforced internally.
package trie

import (
	"bytes"
	"iter"
	"slices"
)

// epoch is a unique ownership token. Nodes stamped with a trie's current
// epoch may be mutated in place; all other nodes are shared and must be
// cloned before writing.
type epoch struct{ _ byte }

type edge[V any] struct {
	label byte
	child *node[V]
}

type node[V any] struct {
	owner    *epoch
	value    V
	hasValue bool
	// count is the number of values stored in this subtree, maintained on
	// every mutation so Len and algebra construction stay O(1) per node.
	count int
	// edges is sorted by label.
	edges []edge[V]
}

func (n *node[V]) clone(ep *epoch) *node[V] {
	c := &node[V]{
		owner:    ep,
		value:    n.value,
		hasValue: n.hasValue,
		count:    n.count,
		edges:    slices.Clone(n.edges),
	}
	return c
}

func (n *node[V]) find(label byte) *node[V] {
	i, ok := slices.BinarySearchFunc(n.edges, label, func(e edge[V], b byte) int {
		return int(e.label) - int(b)
	})
	if !ok {
		return nil
	}
	return n.edges[i].child
}

func (n *node[V]) set(label byte, child *node[V]) {
	i, ok := slices.BinarySearchFunc(n.edges, label, func(e edge[V], b byte) int {
		return int(e.label) - int(b)
	})
	if ok {
		n.edges[i].child = child
		return
	}
	n.edges = slices.Insert(n.edges, i, edge[V]{label: label, child: child})
}

func (n *node[V]) remove(label byte) {
	i, ok := slices.BinarySearchFunc(n.edges, label, func(e edge[V], b byte) int {
		return int(e.label) - int(b)
	})
	if ok {
		n.edges = slices.Delete(n.edges, i, i+1)
	}
}

// Trie maps byte sequences to values of type V in lexicographic key order.
// The zero value is not usable; use New.
type Trie[V any] struct {
	root  *node[V]
	epoch *epoch
}

// New creates an empty trie.
func New[V any]() *Trie[V] {
	ep := &epoch{}
	return &Trie[V]{
		root:  &node[V]{owner: ep},
		epoch: ep,
	}
}

// Len returns the number of stored keys.
func (t *Trie[V]) Len() int {
	return t.root.count
}

// Get returns the value stored under key, if any.
func (t *Trie[V]) Get(key []byte) (V, bool) {
	n := t.root
	for _, b := range key {
		n = n.find(b)
		if n == nil {
			var zero V
			return zero, false
		}
	}
	if !n.hasValue {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Contains reports whether key is stored.
func (t *Trie[V]) Contains(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Insert stores value under key, replacing in place. It returns the prior
// value and true when the key was already present.
func (t *Trie[V]) Insert(key []byte, value V) (prior V, replaced bool) {
	t.root = t.owned(t.root)
	path := make([]*node[V], 0, len(key)+1)
	n := t.root
	path = append(path, n)
	for _, b := range key {
		child := n.find(b)
		switch {
		case child == nil:
			child = &node[V]{owner: t.epoch}
			n.set(b, child)
		case child.owner != t.epoch:
			child = child.clone(t.epoch)
			n.set(b, child)
		}
		n = child
		path = append(path, n)
	}
	if n.hasValue {
		prior = n.value
		n.value = value
		return prior, true
	}
	n.value = value
	n.hasValue = true
	for _, m := range path {
		m.count++
	}
	return prior, false
}

// Remove deletes key and returns its value, if present. Nodes left without a
// value and without children are pruned back to the nearest surviving
// ancestor. Removing an absent key mutates nothing.
func (t *Trie[V]) Remove(key []byte) (V, bool) {
	var zero V
	if !t.Contains(key) {
		return zero, false
	}
	t.root = t.owned(t.root)
	path := make([]*node[V], 0, len(key)+1)
	n := t.root
	path = append(path, n)
	for _, b := range key {
		child := n.find(b)
		if child.owner != t.epoch {
			child = child.clone(t.epoch)
			n.set(b, child)
		}
		n = child
		path = append(path, n)
	}
	removed := n.value
	n.value = zero
	n.hasValue = false
	for _, m := range path {
		m.count--
	}
	// Prune dead nodes bottom-up. count==0 means no value anywhere below.
	for i := len(path) - 1; i > 0; i-- {
		if path[i].count > 0 {
			break
		}
		path[i-1].remove(key[i-1])
	}
	return removed, true
}

// All returns a lazy, restartable iterator over (key, value) pairs in
// ascending key order. The yielded key slice is owned by the caller.
//
// Iterating concurrently with a mutation of the same trie is undefined;
// iterate a frozen copy (any algebra result, or Clone) for snapshot reads.
func (t *Trie[V]) All() iter.Seq2[[]byte, V] {
	root := t.root
	return func(yield func([]byte, V) bool) {
		walk(root, nil, yield)
	}
}

func walk[V any](n *node[V], prefix []byte, yield func([]byte, V) bool) bool {
	if n.hasValue {
		if !yield(bytes.Clone(prefix), n.value) {
			return false
		}
	}
	for _, e := range n.edges {
		if !walk(e.child, append(prefix, e.label), yield) {
			return false
		}
	}
	return true
}

// Clone returns an independent trie with the same contents. It is O(1):
// both tries share all nodes and path-copy on their next mutation.
func (t *Trie[V]) Clone() *Trie[V] {
	t.freeze()
	return &Trie[V]{
		root:  t.root,
		epoch: &epoch{},
	}
}

// freeze retires the trie's current epoch so every existing node becomes
// shared. Future mutations of this trie path-copy instead of writing in
// place, which makes handing out subtree references safe.
func (t *Trie[V]) freeze() {
	t.epoch = &epoch{}
}

func (t *Trie[V]) owned(n *node[V]) *node[V] {
	if n.owner == t.epoch {
		return n
	}
	return n.clone(t.epoch)
}
