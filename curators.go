package dstream

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/outofforest/dstream/doubling"
	"github.com/outofforest/dstream/site"
	"github.com/outofforest/dstream/types"
	"github.com/outofforest/dstream/zhao"
)

// NewSiteCurator creates curator storing items at sites chosen by the assigner.
func NewSiteCurator[V any](algorithm types.Algorithm, assigner site.Assigner) *SiteCurator[V] {
	capacity := assigner.Capacity()
	return &SiteCurator[V]{
		algorithm: algorithm,
		assigner:  assigner,
		values:    make([]V, capacity),
		positions: make([]types.Position, capacity),
		occupied:  make([]bool, capacity),
	}
}

// SiteCurator owns the payload buffer filled according to the site assigner.
type SiteCurator[V any] struct {
	algorithm types.Algorithm
	assigner  site.Assigner

	values    []V
	positions []types.Position
	occupied  []bool
	count     uint64
}

// Algorithm returns the name of the curation algorithm.
func (c *SiteCurator[V]) Algorithm() types.Algorithm {
	return c.algorithm
}

// Capacity returns the number of storage sites.
func (c *SiteCurator[V]) Capacity() types.Capacity {
	return c.assigner.Capacity()
}

// Insert passes the next item of the stream to the curator.
func (c *SiteCurator[V]) Insert(value V) {
	c.InsertAt(value)
}

// InsertAt passes the next item of the stream to the curator and returns the site it has been stored at.
// Discard sentinel is returned if item has not been stored.
func (c *SiteCurator[V]) InsertAt(value V) types.Site {
	if c.count > math.MaxUint32 {
		panic(errors.Errorf("stream exhausted after %d items", c.count))
	}

	T := types.Position(c.count)
	c.count++

	s := c.assigner.AssignStorageSite(T)
	if c.assigner.Capacity().IsDiscard(s) {
		return s
	}

	c.values[s] = value
	c.positions[s] = T
	c.occupied[s] = true
	return s
}

// Count returns the number of items inserted so far.
func (c *SiteCurator[V]) Count() uint64 {
	return c.count
}

// Retained returns values of the occupied sites in site order.
func (c *SiteCurator[V]) Retained() []V {
	values := make([]V, 0, len(c.values))
	for i, v := range c.values {
		if c.occupied[i] {
			values = append(values, v)
		}
	}
	return values
}

// Positions returns stream positions of the items stored at the occupied sites, in site order.
func (c *SiteCurator[V]) Positions() []types.Position {
	positions := make([]types.Position, 0, len(c.positions))
	for i, p := range c.positions {
		if c.occupied[i] {
			positions = append(positions, p)
		}
	}
	return positions
}

func newDoublingCurator[V any](config Config) (Curator[V], error) {
	variant := doubling.Gunther
	if config.Algorithm == types.AlgorithmDoublingTilted {
		variant = doubling.Tilted
	}

	b, err := doubling.New[V](doubling.Config{
		Capacity: config.Capacity,
		Variant:  variant,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating doubling buffer for %q failed", config.Algorithm)
	}
	return &DoublingCurator[V]{
		algorithm: config.Algorithm,
		buffer:    b,
	}, nil
}

// DoublingCurator runs the doubling buffer.
type DoublingCurator[V any] struct {
	algorithm types.Algorithm
	buffer    *doubling.Buffer[V]
}

// Algorithm returns the name of the curation algorithm.
func (c *DoublingCurator[V]) Algorithm() types.Algorithm {
	return c.algorithm
}

// Capacity returns the number of storage sites.
func (c *DoublingCurator[V]) Capacity() types.Capacity {
	return c.buffer.Capacity()
}

// Insert passes the next item of the stream to the curator.
func (c *DoublingCurator[V]) Insert(value V) {
	if c.buffer.Count() > math.MaxUint32 {
		panic(errors.Errorf("stream exhausted after %d items", c.buffer.Count()))
	}
	c.buffer.Insert(types.Position(c.buffer.Count()), value)
}

// Count returns the number of items inserted so far.
func (c *DoublingCurator[V]) Count() uint64 {
	return c.buffer.Count()
}

// Retained returns the retained values, oldest first.
func (c *DoublingCurator[V]) Retained() []V {
	return slices.Clone(c.buffer.Items())
}

func newSegmentCurator[V any](config Config) (Curator[V], error) {
	var z zhao.Curator[V]
	var err error
	switch config.Algorithm {
	case types.AlgorithmSteadyMerge:
		z, err = zhao.NewSteady[V](config.Capacity)
	case types.AlgorithmTiltedMerge:
		z, err = zhao.NewTiltedMerge[V](config.Capacity)
	case types.AlgorithmTiltedMergeFast:
		z, err = zhao.NewTiltedMergeFast[V](config.Capacity)
	case types.AlgorithmMinPairMerge:
		z, err = zhao.NewMinPairMerge[V](config.Capacity)
	default:
		return nil, errors.Errorf("algorithm %q does not merge segments", config.Algorithm)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "creating segment curator for %q failed", config.Algorithm)
	}
	return &SegmentCurator[V]{
		algorithm: config.Algorithm,
		curator:   z,
	}, nil
}

// SegmentCurator runs the segment-merge curator.
type SegmentCurator[V any] struct {
	algorithm types.Algorithm
	curator   zhao.Curator[V]
}

// Algorithm returns the name of the curation algorithm.
func (c *SegmentCurator[V]) Algorithm() types.Algorithm {
	return c.algorithm
}

// Capacity returns the number of storage sites.
func (c *SegmentCurator[V]) Capacity() types.Capacity {
	return c.curator.Capacity()
}

// Insert passes the next item of the stream to the curator.
func (c *SegmentCurator[V]) Insert(value V) {
	c.curator.Insert(value)
}

// Count returns the number of items inserted so far.
func (c *SegmentCurator[V]) Count() uint64 {
	return c.curator.Count()
}

// Retained returns the value of every segment, oldest first.
func (c *SegmentCurator[V]) Retained() []V {
	return zhao.Values(c.curator.Segments())
}

// Segments returns the retained segments, oldest first.
func (c *SegmentCurator[V]) Segments() []types.Segment[V] {
	return c.curator.Segments()
}
