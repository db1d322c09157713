package site

import (
	"github.com/outofforest/dstream/types"
)

// NewRing creates assigner overwriting sites in round-robin order, so the buffer always holds the most recent items.
func NewRing(capacity types.Capacity) (*Ring, error) {
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	return &Ring{
		capacity: capacity,
		mask:     uint32(capacity) - 1,
	}, nil
}

// Ring assigns position T to site T mod S.
type Ring struct {
	capacity types.Capacity
	mask     uint32
}

// Capacity returns the number of sites in the buffer.
func (r *Ring) Capacity() types.Capacity {
	return r.capacity
}

// AssignStorageSite returns the site for the item at position T.
func (r *Ring) AssignStorageSite(T types.Position) types.Site {
	return types.Site(uint32(T) & r.mask)
}

// NewDiscard creates assigner which throws every item away.
func NewDiscard(capacity types.Capacity) (*Discard, error) {
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	return &Discard{
		capacity: capacity,
	}, nil
}

// Discard never stores anything.
type Discard struct {
	capacity types.Capacity
}

// Capacity returns the number of sites in the buffer.
func (d *Discard) Capacity() types.Capacity {
	return d.capacity
}

// AssignStorageSite always returns the discard sentinel.
func (d *Discard) AssignStorageSite(_ types.Position) types.Site {
	return d.capacity.Discard()
}
