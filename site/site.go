package site

import (
	"github.com/pkg/errors"

	"github.com/outofforest/dstream/hanoi"
	"github.com/outofforest/dstream/layout"
	"github.com/outofforest/dstream/types"
)

// Assigner decides where the item at stream position T is stored.
type Assigner interface {
	// Capacity returns the number of sites in the buffer.
	Capacity() types.Capacity

	// AssignStorageSite returns the site for the item at position T or the discard sentinel.
	AssignStorageSite(T types.Position) types.Site
}

// AssignStretched computes the stretched site for position T without lookup tables.
func AssignStretched(capacity types.Capacity, T types.Position) types.Site {
	checkPosition(capacity, T)

	c := uint32(capacity)
	t := uint32(T)
	h := hanoi.HanoiValue(t)
	i := hanoi.Incidence(t, h)

	if i >= hanoi.StretchedBunchCapacity(c, hanoi.BitLength(t)) {
		return capacity.Discard()
	}
	return types.Site(layout.BunchOffset(c, i) + h)
}

// AssignTilted computes the tilted site for position T without lookup tables.
func AssignTilted(capacity types.Capacity, T types.Position) types.Site {
	checkPosition(capacity, T)

	c := uint32(capacity)
	t := uint32(T)
	h := hanoi.HanoiValue(t)
	i := hanoi.Incidence(t, h)

	b := hanoi.BunchCapacity(c, hanoi.BitLength(t), h)
	return types.Site(layout.BunchOffset(c, hanoi.ModPow2(i, b)) + h)
}

// NewStretched creates stretched assigner. Older items are discarded once the bunches reserved for their hanoi
// value are exhausted, so retained items spread evenly over the entire stream history.
func NewStretched(capacity types.Capacity) (*Stretched, error) {
	table, offsets, err := tables(capacity)
	if err != nil {
		return nil, err
	}
	return &Stretched{
		capacity: capacity,
		table:    table,
		offsets:  offsets,
	}, nil
}

// Stretched is the table-driven stretched assigner.
type Stretched struct {
	capacity types.Capacity
	table    *hanoi.Table
	offsets  *layout.Offsets
}

// Capacity returns the number of sites in the buffer.
func (s *Stretched) Capacity() types.Capacity {
	return s.capacity
}

// AssignStorageSite returns the site for the item at position T or the discard sentinel.
func (s *Stretched) AssignStorageSite(T types.Position) types.Site {
	checkPosition(s.capacity, T)

	t := uint32(T)
	h := hanoi.HanoiValue(t)
	i := hanoi.Incidence(t, h)

	if i >= s.table.StretchedBunchCapacity(hanoi.BitLength(t)) {
		return s.capacity.Discard()
	}
	return types.Site(s.offsets.Offset(i) + h)
}

// NewTilted creates tilted assigner. Items are never discarded, instead the oldest item of the same hanoi value
// within its bunch range is overwritten, so retention density decays with age.
func NewTilted(capacity types.Capacity) (*Tilted, error) {
	table, offsets, err := tables(capacity)
	if err != nil {
		return nil, err
	}
	return &Tilted{
		capacity: capacity,
		table:    table,
		offsets:  offsets,
	}, nil
}

// Tilted is the table-driven tilted assigner.
type Tilted struct {
	capacity types.Capacity
	table    *hanoi.Table
	offsets  *layout.Offsets
}

// Capacity returns the number of sites in the buffer.
func (s *Tilted) Capacity() types.Capacity {
	return s.capacity
}

// AssignStorageSite returns the site for the item at position T.
func (s *Tilted) AssignStorageSite(T types.Position) types.Site {
	checkPosition(s.capacity, T)

	t := uint32(T)
	h := hanoi.HanoiValue(t)
	i := hanoi.Incidence(t, h)

	b := s.table.BunchCapacity(hanoi.BitLength(t), h)
	return types.Site(s.offsets.Offset(i&(b-1)) + h)
}

func tables(capacity types.Capacity) (*hanoi.Table, *layout.Offsets, error) {
	if err := capacity.Validate(); err != nil {
		return nil, nil, err
	}
	table, err := hanoi.Tables(uint32(capacity))
	if err != nil {
		return nil, nil, err
	}
	offsets, err := layout.Shared(uint32(capacity))
	if err != nil {
		return nil, nil, err
	}
	return table, offsets, nil
}

func checkPosition(capacity types.Capacity, T types.Position) {
	if err := capacity.Validate(); err != nil {
		panic(err)
	}
	if uint64(T) >= capacity.Horizon() {
		panic(errors.Errorf("position %d is beyond the horizon of capacity %d", T, capacity))
	}
}
