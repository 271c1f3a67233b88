package trie

// MergeFunc combines the values stored under the same key on both sides of a
// union or intersection.
type MergeFunc[V any] func(a, b V) V

// Union returns a trie holding every key of a or b. Keys present on both
// sides carry merge(a's value, b's value); one-sided keys keep their value.
//
// The recursion descends only where both tries have a node at the same
// prefix and shares one-sided subtrees read-only, so the cost is
// proportional to the overlapping structure, not |a|x|b|. Both inputs are
// frozen: mutating them afterwards copy-on-writes and never disturbs the
// result.
func Union[V any](a, b *Trie[V], merge MergeFunc[V]) *Trie[V] {
	a.freeze()
	b.freeze()
	ep := &epoch{}
	root := unionNodes(a.root, b.root, merge, ep)
	if root == nil {
		root = &node[V]{owner: ep}
	}
	return &Trie[V]{root: root, epoch: ep}
}

// Intersect returns a trie holding only keys present in both a and b, with
// merged values. Subtrees absent on either side are pruned without descent.
func Intersect[V any](a, b *Trie[V], merge MergeFunc[V]) *Trie[V] {
	a.freeze()
	b.freeze()
	ep := &epoch{}
	root := intersectNodes(a.root, b.root, merge, ep)
	if root == nil {
		root = &node[V]{owner: ep}
	}
	return &Trie[V]{root: root, epoch: ep}
}

// Difference returns a trie holding keys of a that are absent from b, with
// a's original values. Subtrees of a that b does not reach are shared
// without descent.
func Difference[V any](a, b *Trie[V]) *Trie[V] {
	a.freeze()
	b.freeze()
	ep := &epoch{}
	root := differenceNodes(a.root, b.root, ep)
	if root == nil {
		root = &node[V]{owner: ep}
	}
	return &Trie[V]{root: root, epoch: ep}
}

func unionNodes[V any](x, y *node[V], merge MergeFunc[V], ep *epoch) *node[V] {
	switch {
	case x == nil:
		return y
	case y == nil || x == y:
		return x
	}
	n := &node[V]{owner: ep}
	switch {
	case x.hasValue && y.hasValue:
		n.value = merge(x.value, y.value)
		n.hasValue = true
	case x.hasValue:
		n.value = x.value
		n.hasValue = true
	case y.hasValue:
		n.value = y.value
		n.hasValue = true
	}
	n.edges = mergeEdges(x.edges, y.edges, func(cx, cy *node[V]) *node[V] {
		return unionNodes(cx, cy, merge, ep)
	})
	n.count = subtreeCount(n)
	return n
}

func intersectNodes[V any](x, y *node[V], merge MergeFunc[V], ep *epoch) *node[V] {
	if x == nil || y == nil {
		return nil
	}
	n := &node[V]{owner: ep}
	if x.hasValue && y.hasValue {
		n.value = merge(x.value, y.value)
		n.hasValue = true
	}
	for _, e := range x.edges {
		cy := y.find(e.label)
		if cy == nil {
			continue
		}
		if child := intersectNodes(e.child, cy, merge, ep); child != nil {
			n.edges = append(n.edges, edge[V]{label: e.label, child: child})
		}
	}
	n.count = subtreeCount(n)
	if n.count == 0 {
		return nil
	}
	return n
}

func differenceNodes[V any](x, y *node[V], ep *epoch) *node[V] {
	switch {
	case x == nil || x == y:
		return nil
	case y == nil:
		return x
	}
	n := &node[V]{owner: ep}
	if x.hasValue && !y.hasValue {
		n.value = x.value
		n.hasValue = true
	}
	for _, e := range x.edges {
		cy := y.find(e.label)
		if cy == nil {
			n.edges = append(n.edges, edge[V]{label: e.label, child: e.child})
			continue
		}
		if child := differenceNodes(e.child, cy, ep); child != nil {
			n.edges = append(n.edges, edge[V]{label: e.label, child: child})
		}
	}
	n.count = subtreeCount(n)
	if n.count == 0 {
		return nil
	}
	return n
}

// mergeEdges zips two label-sorted edge lists. Labels on one side only keep
// their (shared) child; labels on both sides recurse through combine.
func mergeEdges[V any](xs, ys []edge[V], combine func(x, y *node[V]) *node[V]) []edge[V] {
	out := make([]edge[V], 0, max(len(xs), len(ys)))
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch {
		case xs[i].label < ys[j].label:
			out = append(out, xs[i])
			i++
		case xs[i].label > ys[j].label:
			out = append(out, ys[j])
			j++
		default:
			if child := combine(xs[i].child, ys[j].child); child != nil {
				out = append(out, edge[V]{label: xs[i].label, child: child})
			}
			i++
			j++
		}
	}
	out = append(out, xs[i:]...)
	out = append(out, ys[j:]...)
	return out
}

func subtreeCount[V any](n *node[V]) int {
	c := 0
	if n.hasValue {
		c = 1
	}
	for _, e := range n.edges {
		c += e.child.count
	}
	return c
}
