package hanoi

import "github.com/pkg/errors"

// maxBitLength is the bit length of the largest stream position.
const maxBitLength = 32

// Epoch returns the current epoch for the stream position of bit length blT and the buffer of 1<<s sites.
// Epoch stays at 0 until the position outgrows s bits and then advances with every bit added.
func Epoch(s, blT uint32) uint32 {
	return blT - min(s, blT)
}

// HanoiValue returns the hanoi value of the stream position, which is the 2-adic valuation of T+1.
// For the last representable position T+1 wraps to 0 and the hanoi value is 32.
func HanoiValue(T uint32) uint32 {
	return TrailingZeros(T + 1)
}

// Incidence returns how many times the hanoi value h has been seen before position T.
func Incidence(T, h uint32) uint32 {
	// Go defines shifts by the full width or more as 0, which is exactly the incidence of h = 32.
	return T >> (h + 1)
}

// MetaEpoch returns the meta-epoch grouping epoch t.
func MetaEpoch(t uint32) uint32 {
	blt := BitLength(t)
	return blt - epsilonTau(t, blt)
}

// BunchCapacity returns the number of bunches available to hanoi value h at the position of bit length blT,
// when the buffer has capacity sites.
func BunchCapacity(capacity, blT, h uint32) uint32 {
	checkBunchArgs(capacity, blT)

	t := Epoch(BitLength(capacity)-1, blT)
	tau := MetaEpoch(t)

	// Opening epochs of the current and the next meta-epoch.
	t0 := uint32(1)<<tau - tau
	t1 := uint32(1)<<(tau+1) - (tau + 1)

	// Hanoi values not invaded yet in this meta-epoch keep the bunch count of the previous one.
	var epsilonB uint32
	if t < h+t0 && h+t0 < t1 {
		epsilonB = 1
	}

	return max(capacity>>(tau+1-epsilonB), 1)
}

// StretchedBunchCapacity returns the number of bunches available to every hanoi value under the stretched policy.
func StretchedBunchCapacity(capacity, blT uint32) uint32 {
	checkBunchArgs(capacity, blT)

	t := Epoch(BitLength(capacity)-1, blT)
	return max(capacity>>(MetaEpoch(t)+1), 1)
}

func epsilonTau(t, blt uint32) uint32 {
	if BitFloor(t<<1) > t+blt {
		return 1
	}
	return 0
}

func checkBunchArgs(capacity, blT uint32) {
	if !IsPow2(capacity) {
		panic(errors.Errorf("capacity %d is not a power of two", capacity))
	}
	if blT > maxBitLength {
		panic(errors.Errorf("bit length %d exceeds %d", blT, maxBitLength))
	}
}
