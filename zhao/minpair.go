package zhao

import (
	"github.com/outofforest/dstream/types"
)

// NewMinPairMerge creates curator which, once full, merges the adjacent pair of segments covering the fewest items.
func NewMinPairMerge[V any](capacity types.Capacity) (*MinPairMerge[V], error) {
	s, err := newSegments[V](capacity)
	if err != nil {
		return nil, err
	}
	return &MinPairMerge[V]{
		segments: s,
	}, nil
}

// MinPairMerge is the naive steady curator doing full scan on every insert.
type MinPairMerge[V any] struct {
	segments[V]
}

// Insert absorbs the next item of the stream.
func (m *MinPairMerge[V]) Insert(value V) {
	m.count++
	m.append(value)
	if len(m.items) <= int(m.capacity) {
		return
	}

	best := 0
	bestLength := m.items[0].Length + m.items[1].Length
	for i := 1; i < len(m.items)-1; i++ {
		if l := m.items[i].Length + m.items[i+1].Length; l < bestLength {
			best = i
			bestLength = l
		}
	}
	m.merge(best)
}
