package layout

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/outofforest/dstream/hanoi"
)

const offsetsCacheSize = 64

// PhysicalBunchIndex returns the position of the logical bunch b_l among bunches ordered left-to-right in the
// buffer of capacity sites.
//
// Bunches are laid out in nesting levels. Level v = bit_length(b_l) holds 1<<(v-1) bunches spaced w = capacity>>v
// apart, starting at offset w/2, so each coarser level falls evenly between the bunches of the finer ones.
func PhysicalBunchIndex(capacity, bl uint32) uint32 {
	if bl == 0 {
		return 0
	}

	v := hanoi.BitLength(bl)
	w := capacity >> v
	o := w >> 1
	p := bl - hanoi.BitFloor(bl)
	return o + w*p
}

// BunchOffset returns the site at which the logical bunch b_l starts.
func BunchOffset(capacity, bl uint32) uint32 {
	if bl >= max(capacity>>1, 1) {
		panic(errors.Errorf("bunch %d out of range for capacity %d", bl, capacity))
	}
	if bl == 0 {
		return 0
	}

	bp := PhysicalBunchIndex(capacity, bl)
	return bp<<1 + hanoi.OnesCount(capacity<<1-bp) - 2
}

// BunchOffsetLegacy computes bunch offset using the single expression with the correction bit for the zeroth bunch.
// It must always agree with BunchOffset.
func BunchOffsetLegacy(capacity, bl uint32) uint32 {
	v := hanoi.BitLength(bl)
	var w uint32
	if v != 0 {
		w = capacity >> v
	}
	o := w >> 1
	p := bl - hanoi.BitFloor(bl)
	bp := o + w*p

	var epsilonKB uint32
	if bl != 0 {
		epsilonKB = 1
	}
	return bp<<1 + hanoi.OnesCount(capacity<<1-bp) - 1 - epsilonKB
}

// NewOffsets precomputes bunch offsets for the buffer of capacity sites.
func NewOffsets(capacity uint32) (*Offsets, error) {
	if !hanoi.IsPow2(capacity) {
		return nil, errors.Errorf("capacity %d is not a power of two", capacity)
	}

	o := &Offsets{
		offsets: make([]uint32, max(capacity>>1, 1)),
	}
	for bl := range o.offsets {
		o.offsets[bl] = BunchOffset(capacity, uint32(bl))
	}
	return o, nil
}

// Offsets stores precomputed bunch offsets. It is immutable once built and may be shared.
type Offsets struct {
	offsets []uint32
}

// Len returns the number of logical bunches.
func (o *Offsets) Len() int {
	return len(o.offsets)
}

// Offset returns the site at which logical bunch b_l starts.
func (o *Offsets) Offset(bl uint32) uint32 {
	return o.offsets[bl]
}

var offsetsCache = func() *lru.Cache {
	c, err := lru.New(offsetsCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}()

// Shared returns the shared offsets table for the capacity, building it on first use.
func Shared(capacity uint32) (*Offsets, error) {
	if o, ok := offsetsCache.Get(capacity); ok {
		return o.(*Offsets), nil
	}

	o, err := NewOffsets(capacity)
	if err != nil {
		return nil, err
	}
	offsetsCache.Add(capacity, o)
	return o, nil
}
