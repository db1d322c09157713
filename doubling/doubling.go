package doubling

import (
	"github.com/pkg/errors"

	"github.com/outofforest/dstream/hanoi"
	"github.com/outofforest/dstream/types"
)

// Variant selects how the doubling buffer decides which items to keep.
type Variant uint8

const (
	// Gunther keeps items at a stride which doubles every time the buffer is thinned.
	Gunther Variant = iota

	// Tilted keeps every item in the upper half of the buffer and thins the lower half whenever the upper half wraps.
	Tilted
)

// String returns name of the variant.
func (v Variant) String() string {
	switch v {
	case Gunther:
		return "gunther"
	case Tilted:
		return "tilted"
	default:
		return "unknown"
	}
}

// Config stores configuration of the doubling buffer.
type Config struct {
	Capacity types.Capacity
	Variant  Variant
}

// New creates doubling buffer.
func New[V any](config Config) (*Buffer[V], error) {
	if err := config.Capacity.Validate(); err != nil {
		return nil, err
	}
	if config.Capacity < 2 {
		return nil, errors.Errorf("doubling buffer requires at least 2 sites, %d requested", config.Capacity)
	}
	if config.Variant != Gunther && config.Variant != Tilted {
		return nil, errors.Errorf("unknown doubling variant %d", config.Variant)
	}

	return &Buffer[V]{
		capacity: config.Capacity,
		variant:  config.Variant,
		s:        config.Capacity.Log2(),
		half:     uint32(config.Capacity) >> 1,
		items:    make([]V, config.Capacity),
	}, nil
}

// Buffer retains items in a fixed array, halving the density of the older items whenever it runs out of room.
type Buffer[V any] struct {
	capacity types.Capacity
	variant  Variant
	s        uint32
	half     uint32

	items []V
	valid uint32
	next  uint64
}

// Capacity returns the number of sites in the buffer.
func (b *Buffer[V]) Capacity() types.Capacity {
	return b.capacity
}

// Variant returns the variant of the buffer.
func (b *Buffer[V]) Variant() Variant {
	return b.variant
}

// Stride returns the distance between kept positions in the neighbourhood of T.
// Tilted variant keeps every item so its stride is always 1.
func (b *Buffer[V]) Stride(T types.Position) uint32 {
	if b.variant == Tilted {
		return 1
	}
	return 1 << hanoi.BitLength(uint32(T)>>b.s)
}

// Insert stores the item at position T. Positions must be passed in order, starting from 0.
// It returns the site the item has been written to, or false if the item was dropped.
func (b *Buffer[V]) Insert(T types.Position, value V) (types.Site, bool) {
	if uint64(T) != b.next {
		panic(errors.Errorf("position %d received while %d was expected", T, b.next))
	}
	b.next++

	t := uint32(T)
	if t < uint32(b.capacity) {
		b.items[t] = value
		b.valid = t + 1
		return types.Site(t), true
	}

	var k uint32
	switch b.variant {
	case Gunther:
		stride := b.Stride(T)
		if hanoi.ModPow2(t, stride) != 0 {
			return 0, false
		}
		k = hanoi.DivPow2(t, stride)
	case Tilted:
		k = hanoi.ModPow2(t, b.half) + b.half
	}

	if k == b.half {
		b.thin()
	}
	b.items[k] = value
	b.valid = k + 1
	return types.Site(k), true
}

// Items returns the retained items, oldest first. Returned slice is valid until next insert.
func (b *Buffer[V]) Items() []V {
	return b.items[:b.valid]
}

// Len returns the number of retained items.
func (b *Buffer[V]) Len() int {
	return int(b.valid)
}

// Count returns the number of items inserted so far.
func (b *Buffer[V]) Count() uint64 {
	return b.next
}

func (b *Buffer[V]) thin() {
	for i := range b.half {
		b.items[i] = b.items[i<<1]
	}
}
