package version

import (
	"iter"
	"slices"

	"github.com/matzehuels/rocks-admin/pkg/errors"
)

// Set is an ascending, duplicate-free collection of versions for one
// package. Lookups use binary search and report a miss with ok=false.
//
// A Set is immutable after [NewSet] and safe for concurrent reads.
type Set struct {
	items []Value
}

// NewSet sorts vs ascending and drops duplicates.
func NewSet(vs ...Value) *Set {
	items := slices.Clone(vs)
	slices.SortStableFunc(items, Compare)
	items = slices.CompactFunc(items, Value.Equal)
	return &Set{items: items}
}

// Len returns the number of versions in the set.
func (s *Set) Len() int { return len(s.items) }

// Values returns a copy of the versions in ascending order.
func (s *Set) Values() []Value { return slices.Clone(s.items) }

// All iterates the versions in ascending order.
func (s *Set) All() iter.Seq[Value] { return slices.Values(s.items) }

// Backward iterates the versions in descending order.
func (s *Set) Backward() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for i := len(s.items) - 1; i >= 0; i-- {
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// Max returns the greatest version.
func (s *Set) Max() (Value, bool) {
	if len(s.items) == 0 {
		return Value{}, false
	}
	return s.items[len(s.items)-1], true
}

// Min returns the smallest version.
func (s *Set) Min() (Value, bool) {
	if len(s.items) == 0 {
		return Value{}, false
	}
	return s.items[0], true
}

// search returns the insertion point of x and whether it is present.
func (s *Set) search(x Value) (int, bool) {
	return slices.BinarySearchFunc(s.items, x, Compare)
}

// EqualTo returns the element equal to x.
func (s *Set) EqualTo(x Value) (Value, bool) {
	if i, found := s.search(x); found {
		return s.items[i], true
	}
	return Value{}, false
}

// ClosestBelow returns the largest element strictly less than x.
func (s *Set) ClosestBelow(x Value) (Value, bool) {
	i, _ := s.search(x)
	if i > 0 {
		return s.items[i-1], true
	}
	if len(s.items) > 0 && s.items[0].Less(x) {
		return s.items[0], true
	}
	return Value{}, false
}

// ClosestBelowOrEqual returns x itself when present, otherwise the largest
// element strictly less than x.
func (s *Set) ClosestBelowOrEqual(x Value) (Value, bool) {
	if v, ok := s.EqualTo(x); ok {
		return v, true
	}
	return s.ClosestBelow(x)
}

// ClosestAbove returns the smallest element strictly greater than x.
func (s *Set) ClosestAbove(x Value) (Value, bool) {
	i, found := s.search(x)
	if found {
		i++
	}
	if i < len(s.items) {
		return s.items[i], true
	}
	return Value{}, false
}

// ClosestAboveOrEqual returns x itself when present, otherwise the smallest
// element strictly greater than x.
func (s *Set) ClosestAboveOrEqual(x Value) (Value, bool) {
	i, _ := s.search(x)
	if i < len(s.items) {
		return s.items[i], true
	}
	return Value{}, false
}

// Validate checks the ascending, duplicate-free invariant. A failure is a
// contract violation: the set was built without [NewSet].
func (s *Set) Validate() error {
	for i := 1; i < len(s.items); i++ {
		if s.items[i-1].Compare(s.items[i]) >= 0 {
			return errors.New(errors.ErrCodeContractViolation,
				"version set not sorted at %d: %s >= %s", i, s.items[i-1], s.items[i])
		}
	}
	return nil
}
