package hanoi

import "math/bits"

// BitLength returns the number of bits required to represent x. BitLength(0) is 0.
func BitLength(x uint32) uint32 {
	return uint32(bits.Len32(x))
}

// BitFloor returns the largest power of two not greater than x. BitFloor(0) is 0.
func BitFloor(x uint32) uint32 {
	if x == 0 {
		return 0
	}
	return 1 << (BitLength(x) - 1)
}

// BitCeil returns the smallest power of two not less than x. BitCeil(0) is 1.
func BitCeil(x uint32) uint32 {
	if x <= 1 {
		return 1
	}
	return 1 << BitLength(x-1)
}

// TrailingZeros returns the number of trailing zero bits in x. TrailingZeros(0) is 32.
func TrailingZeros(x uint32) uint32 {
	return uint32(bits.TrailingZeros32(x))
}

// OnesCount returns the number of one bits in x.
func OnesCount(x uint32) uint32 {
	return uint32(bits.OnesCount32(x))
}

// IsPow2 tells if x is a power of two.
func IsPow2(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}

// ModPow2 computes x mod d where d is a power of two.
func ModPow2(x, d uint32) uint32 {
	if !IsPow2(d) {
		panic("divisor is not a power of two")
	}
	return x & (d - 1)
}

// DivPow2 computes x / d where d is a power of two.
func DivPow2(x, d uint32) uint32 {
	if !IsPow2(d) {
		panic("divisor is not a power of two")
	}
	return x >> (BitLength(d) - 1)
}
