package doubling

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/dstream/types"
)

func TestGunther(t *testing.T) {
	tests := []struct {
		n     int
		items []uint32
	}{
		{n: 5, items: []uint32{0, 1, 2, 3, 4}},
		{n: 8, items: []uint32{0, 1, 2, 3, 4, 5, 6, 7}},
		{n: 9, items: []uint32{0, 2, 4, 6, 8}},
		{n: 17, items: []uint32{0, 4, 8, 12, 16}},
		{n: 40, items: []uint32{0, 8, 16, 24, 32}},
		{n: 1000, items: []uint32{0, 128, 256, 384, 512, 640, 768, 896}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			requireT := require.New(t)

			b := newBuffer(t, 8, Gunther)
			insertAll(b, tt.n)
			requireT.Equal(tt.items, b.Items())
			requireT.Equal(len(tt.items), b.Len())
			requireT.Equal(uint64(tt.n), b.Count())
		})
	}
}

func TestGuntherSites(t *testing.T) {
	requireT := require.New(t)

	b := newBuffer(t, 8, Gunther)
	sites := make([]int, 0, 24)
	for T := range types.Position(24) {
		site, ok := b.Insert(T, uint32(T))
		if !ok {
			sites = append(sites, -1)
			continue
		}
		sites = append(sites, int(site))
	}
	requireT.Equal([]int{
		0, 1, 2, 3, 4, 5, 6, 7,
		4, -1, 5, -1, 6, -1, 7, -1,
		4, -1, -1, -1, 5, -1, -1, -1,
	}, sites)
}

func TestGuntherKeepsMultiplesOfStride(t *testing.T) {
	requireT := require.New(t)

	for _, capacity := range []types.Capacity{2, 4, 8, 64} {
		b := newBuffer(t, capacity, Gunther)
		for T := range types.Position(3000) {
			b.Insert(T, uint32(T))
			if T < types.Position(capacity) {
				continue
			}

			items := b.Items()
			requireT.GreaterOrEqual(len(items), int(capacity)/2+1)
			step := items[1] - items[0]
			requireT.Equal(lo.Map(lo.Range(len(items)), func(i int, _ int) uint32 {
				return uint32(i) * step
			}), items, "S=%d T=%d", capacity, T)
		}
	}
}

func TestTilted(t *testing.T) {
	tests := []struct {
		n     int
		items []uint32
	}{
		{n: 8, items: []uint32{0, 1, 2, 3, 4, 5, 6, 7}},
		{n: 12, items: []uint32{0, 2, 4, 6, 8, 9, 10, 11}},
		{n: 13, items: []uint32{0, 4, 8, 10, 12}},
		{n: 40, items: []uint32{0, 28, 32, 34, 36, 37, 38, 39}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			requireT := require.New(t)

			b := newBuffer(t, 8, Tilted)
			insertAll(b, tt.n)
			requireT.Equal(tt.items, b.Items())
		})
	}
}

// After the first S items, every S/2 items the lower half keeps every other retained position and the upper half
// is refilled with the most recent positions. Retained set after n > S items is the thinned history followed by
// positions from the last multiple of S/2 up to n-1.
func TestTiltedRetainedPositions(t *testing.T) {
	for _, capacity := range []types.Capacity{2, 4, 8, 64} {
		t.Run("", func(t *testing.T) {
			requireT := require.New(t)

			b := newBuffer(t, capacity, Tilted)
			half := uint32(capacity) / 2

			expected := make([]uint32, 0, capacity)
			for T := range uint32(5000) {
				if T >= uint32(capacity) && T%half == 0 {
					thinned := make([]uint32, 0, capacity)
					for i := range half {
						thinned = append(thinned, expected[2*i])
					}
					expected = thinned
				}
				expected = append(expected, T)

				_, ok := b.Insert(types.Position(T), T)
				requireT.True(ok)
				requireT.Equal(expected, b.Items(), "S=%d T=%d", capacity, T)
			}
		})
	}
}

func TestTiltedKeepsEverything(t *testing.T) {
	requireT := require.New(t)

	b := newBuffer(t, 4, Tilted)
	sites := make([]types.Site, 0, 20)
	for T := range types.Position(20) {
		site, ok := b.Insert(T, uint32(T))
		requireT.True(ok)
		sites = append(sites, site)
	}
	requireT.Equal([]types.Site{0, 1, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3}, sites)

	// The newest item is always retained.
	requireT.Equal(uint32(19), b.Items()[b.Len()-1])
}

func TestStride(t *testing.T) {
	requireT := require.New(t)

	b := newBuffer(t, 8, Gunther)
	requireT.Equal(uint32(1), b.Stride(0))
	requireT.Equal(uint32(1), b.Stride(7))
	requireT.Equal(uint32(2), b.Stride(8))
	requireT.Equal(uint32(4), b.Stride(16))
	requireT.Equal(uint32(8), b.Stride(63))
	requireT.Equal(uint32(1)<<29, b.Stride(0xffffffff))

	b = newBuffer(t, 8, Tilted)
	requireT.Equal(uint32(1), b.Stride(1000))
}

func TestPositionGapPanics(t *testing.T) {
	requireT := require.New(t)

	b := newBuffer(t, 4, Gunther)
	b.Insert(0, 0)
	requireT.Panics(func() {
		b.Insert(2, 2)
	})
}

func TestInvalidConfig(t *testing.T) {
	requireT := require.New(t)

	_, err := New[uint32](Config{Capacity: 1, Variant: Gunther})
	requireT.Error(err)
	_, err = New[uint32](Config{Capacity: 6, Variant: Gunther})
	requireT.Error(err)
	_, err = New[uint32](Config{Capacity: 8, Variant: Variant(7)})
	requireT.Error(err)
}

func newBuffer(t *testing.T, capacity types.Capacity, variant Variant) *Buffer[uint32] {
	b, err := New[uint32](Config{
		Capacity: capacity,
		Variant:  variant,
	})
	require.NoError(t, err)
	require.Equal(t, variant, b.Variant())
	require.Equal(t, capacity, b.Capacity())
	return b
}

func insertAll(b *Buffer[uint32], n int) {
	for T := range n {
		b.Insert(types.Position(T), uint32(T))
	}
}
