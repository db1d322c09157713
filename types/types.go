package types

import (
	"math/bits"

	"github.com/pkg/errors"
)

const (
	// PositionBits is the number of bits used to represent stream position.
	PositionBits = 32

	// MaxCapacity is the largest supported number of storage sites.
	MaxCapacity Capacity = 1 << 16
)

type (
	// Position is the index of an item in the stream. Positions start at 0 and grow by 1.
	Position uint32

	// Site is the index of a storage site in the buffer.
	Site uint32
)

// Capacity is the number of storage sites available to the algorithm. It must be a power of two.
type Capacity uint32

// Validate verifies that capacity may be used by the algorithms.
func (c Capacity) Validate() error {
	if c == 0 {
		return errors.New("capacity must be positive")
	}
	if c&(c-1) != 0 {
		return errors.Errorf("capacity %d is not a power of two", c)
	}
	if c > MaxCapacity {
		return errors.Errorf("capacity %d exceeds maximum %d", c, MaxCapacity)
	}
	return nil
}

// Log2 returns the base-2 logarithm of the capacity.
func (c Capacity) Log2() uint32 {
	return uint32(bits.Len32(uint32(c)) - 1)
}

// Discard returns the sentinel site meaning that item should not be stored.
func (c Capacity) Discard() Site {
	return Site(c)
}

// IsDiscard tells if site is the discard sentinel.
func (c Capacity) IsDiscard(site Site) bool {
	return site == Site(c)
}

// Horizon returns the number of stream positions for which closed-form site assignment stays within the buffer.
// Hanoi values grow up to the bit length of the position, so capacities narrower than the position type run out of
// room once the hanoi value reaches the capacity. The horizon is 2^S-1 for S up to 32, so for S = 32 the last
// position, having hanoi value 32, is excluded. Larger capacities cover all 2^32 positions.
func (c Capacity) Horizon() uint64 {
	if c > PositionBits {
		return 1 << PositionBits
	}
	return 1<<uint64(c) - 1
}

// Segment is a retained value together with the number of stream items it represents.
type Segment[V any] struct {
	Value  V
	Length uint32
}

// Algorithm is the name of the curation algorithm.
type Algorithm string

// Algorithm names.
const (
	AlgorithmStretched       Algorithm = "dstream_stretched_algo"
	AlgorithmTilted          Algorithm = "dstream_tilted_algo"
	AlgorithmRing            Algorithm = "control_ring_algo"
	AlgorithmDiscard         Algorithm = "control_throwaway_algo"
	AlgorithmGuntherDoubling Algorithm = "gunther_doubling_algo"
	AlgorithmDoublingTilted  Algorithm = "doubling_tilted_algo"
	AlgorithmSteadyMerge     Algorithm = "zhao_steady_algo"
	AlgorithmTiltedMerge     Algorithm = "zhao_tilted_algo"
	AlgorithmTiltedMergeFast Algorithm = "zhao_tilted_full_algo"
	AlgorithmMinPairMerge    Algorithm = "naive_steady_algo"
)
