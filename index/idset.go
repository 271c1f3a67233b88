package index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// ID is a stable handle for an inserted expression. IDs are assigned
// monotonically on first insertion and never reused, even after removal.
type ID uint32

// IDSet is a set of expression IDs backed by a 32-bit Roaring Bitmap.
type IDSet struct {
	rb *roaring.Bitmap
}

// NewIDSet creates an empty set.
func NewIDSet() *IDSet {
	return &IDSet{rb: roaring.New()}
}

// Add adds an ID to the set.
func (s *IDSet) Add(id ID) {
	s.rb.Add(uint32(id))
}

// Remove removes an ID from the set.
func (s *IDSet) Remove(id ID) {
	s.rb.Remove(uint32(id))
}

// Contains checks if an ID is in the set.
func (s *IDSet) Contains(id ID) bool {
	return s.rb.Contains(uint32(id))
}

// IsEmpty returns true if the set is empty.
func (s *IDSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of IDs in the set.
func (s *IDSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *IDSet) Clone() *IDSet {
	return &IDSet{rb: s.rb.Clone()}
}

// And intersects the set with other in place.
func (s *IDSet) And(other *IDSet) {
	s.rb.And(other.rb)
}

// Or unions the set with other in place.
func (s *IDSet) Or(other *IDSet) {
	s.rb.Or(other.rb)
}

// Equals reports whether both sets hold exactly the same IDs.
func (s *IDSet) Equals(other *IDSet) bool {
	return s.rb.Equals(other.rb)
}

// All returns an iterator over the IDs in ascending order.
func (s *IDSet) All() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(ID(it.Next())) {
				return
			}
		}
	}
}

// Slice returns the IDs in ascending order.
func (s *IDSet) Slice() []ID {
	out := make([]ID, 0, s.rb.GetCardinality())
	for id := range s.All() {
		out = append(out, id)
	}
	return out
}
