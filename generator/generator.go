package generator

import (
	"github.com/pkg/errors"
)

// DefaultSeed is the seed used by benchmarks so every run processes the same stream.
const DefaultSeed uint32 = 0xdeadbeef

// Payload lists the types the generated values may be downcast to.
type Payload interface {
	bool | uint8 | uint16 | uint32 | uint64
}

// New creates xorshift generator.
func New(seed uint32) (*Xorshift32, error) {
	if seed == 0 {
		return nil, errors.New("xorshift seed must not be zero")
	}
	return &Xorshift32{state: seed}, nil
}

// NewDefault creates xorshift generator initialized with the default seed.
func NewDefault() *Xorshift32 {
	return &Xorshift32{state: DefaultSeed}
}

// Xorshift32 is the 32-bit xorshift pseudo-random generator.
type Xorshift32 struct {
	state uint32
}

// Next returns the next pseudo-random value.
func (g *Xorshift32) Next() uint32 {
	x := g.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	g.state = x
	return x
}

// State returns the current state of the generator.
func (g *Xorshift32) State() uint32 {
	return g.state
}

// Value returns the next pseudo-random value downcast to the payload type.
func Value[V Payload](g *Xorshift32) V {
	return Downcast[V](g.Next())
}

// Downcast converts the generated value to the payload type. Booleans take the lowest bit.
func Downcast[V Payload](x uint32) V {
	var v V
	switch p := any(&v).(type) {
	case *bool:
		*p = x&1 == 1
	case *uint8:
		*p = uint8(x)
	case *uint16:
		*p = uint16(x)
	case *uint32:
		*p = x
	case *uint64:
		*p = uint64(x)
	}
	return v
}

// Name returns the name of the payload type used in reports.
func Name[V Payload]() string {
	var v V
	switch any(v).(type) {
	case bool:
		return "bit"
	case uint8:
		return "byte"
	case uint16:
		return "word"
	case uint32:
		return "double word"
	default:
		return "quad word"
	}
}
