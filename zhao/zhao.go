package zhao

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/outofforest/dstream/types"
)

// Curator keeps at most capacity segments summarizing the stream.
type Curator[V any] interface {
	// Capacity returns the maximum number of segments.
	Capacity() types.Capacity

	// Insert absorbs the next item of the stream.
	Insert(value V)

	// Segments returns copy of the retained segments, oldest first.
	Segments() []types.Segment[V]

	// Len returns the number of retained segments.
	Len() int

	// Count returns the number of items absorbed so far.
	Count() uint64
}

// Values returns values of the segments.
func Values[V any](segments []types.Segment[V]) []V {
	values := make([]V, 0, len(segments))
	for _, s := range segments {
		values = append(values, s.Value)
	}
	return values
}

// segments is the storage shared by curators keeping explicit segment lengths.
type segments[V any] struct {
	capacity types.Capacity
	items    []types.Segment[V]
	count    uint64
}

func newSegments[V any](capacity types.Capacity) (segments[V], error) {
	if err := capacity.Validate(); err != nil {
		return segments[V]{}, err
	}
	return segments[V]{
		capacity: capacity,
		// One extra slot for the item appended before merge.
		items: make([]types.Segment[V], 0, capacity+1),
	}, nil
}

// Capacity returns the maximum number of segments.
func (s *segments[V]) Capacity() types.Capacity {
	return s.capacity
}

// Segments returns copy of the retained segments, oldest first.
func (s *segments[V]) Segments() []types.Segment[V] {
	return slices.Clone(s.items)
}

// Len returns the number of retained segments.
func (s *segments[V]) Len() int {
	return len(s.items)
}

// Count returns the number of items absorbed so far.
func (s *segments[V]) Count() uint64 {
	return s.count
}

func (s *segments[V]) append(value V) {
	s.items = append(s.items, types.Segment[V]{Value: value, Length: 1})
}

// merge joins segment i+1 into segment i. Value of the older segment survives.
func (s *segments[V]) merge(i int) {
	s.items[i].Length += s.items[i+1].Length
	s.items = slices.Delete(s.items, i+1, i+2)
}

func errNoMerge(capacity types.Capacity, count uint64) error {
	return errors.Errorf("no segments to merge, capacity %d exhausted after %d items", capacity, count)
}
