package hanoi

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const (
	// MaxTableHanoi is the number of hanoi values covered by the bunch capacity table.
	// Larger hanoi values are rare enough to be computed directly.
	MaxTableHanoi = 8

	// NumBitLengths is the number of distinct bit lengths of a 32-bit position, excluding 32 itself.
	NumBitLengths = 32

	tableCacheSize = 64
)

// NewTable precomputes bunch capacities for the buffer of capacity sites.
func NewTable(capacity uint32) (*Table, error) {
	if !IsPow2(capacity) {
		return nil, errors.Errorf("capacity %d is not a power of two", capacity)
	}

	t := &Table{
		capacity: capacity,
	}
	for h := range uint32(MaxTableHanoi) {
		for blT := range uint32(NumBitLengths) {
			t.b[h*NumBitLengths+blT] = BunchCapacity(capacity, blT, h)
		}
	}
	for blT := range uint32(NumBitLengths) {
		t.bs[blT] = StretchedBunchCapacity(capacity, blT)
	}
	return t, nil
}

// Table stores precomputed bunch capacities. It is immutable once built and may be shared.
type Table struct {
	capacity uint32
	b        [MaxTableHanoi * NumBitLengths]uint32
	bs       [NumBitLengths]uint32
}

// Capacity returns the capacity the table has been built for.
func (t *Table) Capacity() uint32 {
	return t.capacity
}

// BunchCapacity returns the same value as BunchCapacity function, using precomputed values where possible.
func (t *Table) BunchCapacity(blT, h uint32) uint32 {
	if h < MaxTableHanoi && blT < NumBitLengths {
		return t.b[h*NumBitLengths+blT]
	}
	return BunchCapacity(t.capacity, blT, h)
}

// StretchedBunchCapacity returns the same value as StretchedBunchCapacity function.
func (t *Table) StretchedBunchCapacity(blT uint32) uint32 {
	if blT < NumBitLengths {
		return t.bs[blT]
	}
	return StretchedBunchCapacity(t.capacity, blT)
}

var tableCache = func() *lru.Cache {
	c, err := lru.New(tableCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}()

// Tables returns the shared table for the capacity, building it on first use.
func Tables(capacity uint32) (*Table, error) {
	if t, ok := tableCache.Get(capacity); ok {
		return t.(*Table), nil
	}

	t, err := NewTable(capacity)
	if err != nil {
		return nil, err
	}

	// Concurrent builders produce identical tables so whichever lands in the cache is fine.
	tableCache.Add(capacity, t)
	return t, nil
}
