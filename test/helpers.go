package test

import (
	"sort"

	"github.com/samber/lo"

	"github.com/outofforest/dstream/types"
)

// Inserter is anything accepting stream items.
type Inserter[V any] interface {
	Insert(value V)
}

// InsertSequence inserts values 0, 1, ..., n-1.
func InsertSequence(c Inserter[uint32], n int) {
	for i := range n {
		c.Insert(uint32(i))
	}
}

// Lengths returns lengths of the segments.
func Lengths[V any](segments []types.Segment[V]) []uint32 {
	return lo.Map(segments, func(s types.Segment[V], _ int) uint32 {
		return s.Length
	})
}

// TotalLength returns the number of items covered by the segments.
func TotalLength[V any](segments []types.Segment[V]) uint64 {
	return lo.SumBy(segments, func(s types.Segment[V]) uint64 {
		return uint64(s.Length)
	})
}

// SortedPositions returns copy of positions sorted in ascending order.
func SortedPositions(positions []types.Position) []types.Position {
	positions = append([]types.Position{}, positions...)
	sort.Slice(positions, func(i, j int) bool {
		return positions[i] < positions[j]
	})
	return positions
}
