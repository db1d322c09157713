package zhao

import (
	"slices"

	"github.com/outofforest/dstream/types"
)

// NewTiltedMerge creates curator keeping segments whose lengths are powers of two growing with age.
func NewTiltedMerge[V any](capacity types.Capacity) (*TiltedMerge[V], error) {
	s, err := newSegments[V](capacity)
	if err != nil {
		return nil, err
	}
	return &TiltedMerge[V]{
		segments: s,
	}, nil
}

// TiltedMerge is the tilted segment-merge curator scanning all the segments on every insert.
//
// Segments of equal length form runs. Runs are ordered from the longest segments (oldest) to the shortest
// (newest). After the new item is appended, the finest run having more segments than the run of twice as long
// segments following it merges its two oldest segments.
type TiltedMerge[V any] struct {
	segments[V]
}

// Insert absorbs the next item of the stream.
func (m *TiltedMerge[V]) Insert(value V) {
	m.count++
	m.append(value)
	if len(m.items) <= int(m.capacity) {
		return
	}

	end := len(m.items)
	for end > 0 {
		length := m.items[end-1].Length
		start := m.runStart(end)

		var coarser int
		if start > 0 && m.items[start-1].Length == length<<1 {
			coarser = start - m.runStart(start)
		}

		if count := end - start; count > coarser {
			if count < 2 {
				panic(errNoMerge(m.capacity, m.count))
			}
			m.merge(start)
			return
		}
		end = start
	}
	panic(errNoMerge(m.capacity, m.count))
}

// runStart returns index of the first segment in the run ending right before end.
func (m *TiltedMerge[V]) runStart(end int) int {
	i := end - 1
	length := m.items[i].Length
	for i > 0 && m.items[i-1].Length == length {
		i--
	}
	return i
}

// levels is the number of distinct segment lengths, 1<<0 to 1<<31.
const levels = types.PositionBits

// NewTiltedMergeFast creates curator producing the same segments as TiltedMerge while tracking only
// the number of segments at each length.
func NewTiltedMergeFast[V any](capacity types.Capacity) (*TiltedMergeFast[V], error) {
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	return &TiltedMergeFast[V]{
		capacity: capacity,
		values:   make([]V, 0, capacity),
	}, nil
}

// TiltedMergeFast is the tilted segment-merge curator.
//
// Segment of level j covers 1<<j items. Values are stored from the coarsest level to the finest one,
// so the position of any level in the value slice is derived from the level counts.
type TiltedMergeFast[V any] struct {
	capacity types.Capacity
	values   []V
	counts   [levels]int
	count    uint64
}

// Capacity returns the maximum number of segments.
func (m *TiltedMergeFast[V]) Capacity() types.Capacity {
	return m.capacity
}

// Insert absorbs the next item of the stream.
func (m *TiltedMergeFast[V]) Insert(value V) {
	m.count++
	m.counts[0]++

	n := int(m.capacity)
	if len(m.values) < n {
		m.values = append(m.values, value)
		return
	}

	// i is the index right after the last segment of level j.
	i := n
	j := 0
	for m.counts[j] <= m.counts[j+1] {
		i -= m.counts[j]
		j++
		if j+1 == levels {
			panic(errNoMerge(m.capacity, m.count))
		}
	}
	if m.counts[j] < 2 {
		panic(errNoMerge(m.capacity, m.count))
	}

	m.counts[j] -= 2
	m.counts[j+1]++

	// Second oldest segment of level j is absorbed by the oldest one. If it is the new item, nothing is stored.
	erase := i - m.counts[j]
	if erase == n {
		return
	}
	m.values = append(slices.Delete(m.values, erase, erase+1), value)
}

// Segments returns copy of the retained segments, oldest first.
func (m *TiltedMergeFast[V]) Segments() []types.Segment[V] {
	segments := make([]types.Segment[V], 0, len(m.values))
	for j := levels - 1; j >= 0; j-- {
		for range m.counts[j] {
			segments = append(segments, types.Segment[V]{
				Value:  m.values[len(segments)],
				Length: 1 << j,
			})
		}
	}
	return segments
}

// Len returns the number of retained segments.
func (m *TiltedMergeFast[V]) Len() int {
	return len(m.values)
}

// Count returns the number of items absorbed so far.
func (m *TiltedMergeFast[V]) Count() uint64 {
	return m.count
}
