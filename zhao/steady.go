package zhao

import (
	"slices"

	"github.com/outofforest/dstream/types"
)

// NewSteady creates curator whose segment levels grow evenly, so retained items get denser towards the end of
// the stream while the oldest history stays covered.
func NewSteady[V any](capacity types.Capacity) (*Steady[V], error) {
	s, err := newSegments[V](capacity)
	if err != nil {
		return nil, err
	}
	return &Steady[V]{
		segments: s,
		levels:   make([]uint32, 0, capacity+1),
	}, nil
}

// Steady is the steady segment-merge curator.
type Steady[V any] struct {
	segments[V]

	// levels count how many times each segment absorbed an item or a neighbour. Merge decisions are taken on
	// levels, segment lengths only report the number of items.
	levels []uint32
}

// Insert absorbs the next item of the stream.
func (s *Steady[V]) Insert(value V) {
	s.count++

	n := int(s.capacity)
	if len(s.items) < n {
		s.append(value)
		s.levels = append(s.levels, 0)
		return
	}
	if n == 1 {
		s.absorb(0)
		return
	}

	// The newest segment grows until it reaches the level of its predecessor.
	if s.levels[n-1] < s.levels[n-2] {
		s.absorb(n - 1)
		return
	}

	s.append(value)
	s.levels = append(s.levels, 0)

	ref := s.levels[n-2]
	j := n - 3
	for ; j > 0; j-- {
		if s.levels[j] > ref {
			break
		}
	}

	i := max(j, 0) + 1
	s.levels[i]++
	s.levels = slices.Delete(s.levels, i+1, i+2)
	s.merge(i)
}

// Levels returns copy of the segment levels, oldest first.
func (s *Steady[V]) Levels() []uint32 {
	return slices.Clone(s.levels)
}

func (s *Steady[V]) absorb(i int) {
	s.levels[i]++
	s.items[i].Length++
}
