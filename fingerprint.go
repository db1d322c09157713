package dstream

import (
	"io"

	"github.com/cespare/xxhash"
	"github.com/zeebo/blake3"

	"github.com/outofforest/dstream/types"
	"github.com/outofforest/photon"
)

// Fingerprint returns hash of the curator state, covering the number of inserted items and raw bytes of the retained
// values. Segment lengths are covered too for curators reporting segments. Two curators fed with the same stream
// produce the same fingerprint.
// V must not contain pointers.
func Fingerprint[V comparable](c Curator[V]) uint64 {
	d := xxhash.New()
	writeState(d, c)
	return d.Sum64()
}

// Digest returns BLAKE3 hash of the same bytes Fingerprint is computed from. It is used where states are compared
// across machines and collisions must be ruled out.
func Digest[V comparable](c Curator[V]) [32]byte {
	h := blake3.New()
	writeState(h, c)

	var d [32]byte
	copy(d[:], h.Sum(nil))
	return d
}

func writeState[V comparable](w io.Writer, c Curator[V]) {
	count := c.Count()
	_, _ = w.Write(photon.NewFromValue(&count).B)
	for _, v := range c.Retained() {
		_, _ = w.Write(photon.NewFromValue(&v).B)
	}

	if sc, ok := c.(interface{ Segments() []types.Segment[V] }); ok {
		for _, s := range sc.Segments() {
			_, _ = w.Write(photon.NewFromValue(&s.Length).B)
		}
	}
}
