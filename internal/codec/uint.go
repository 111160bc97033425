// Package codec implements the two wire encodings the arena layer relies
// on: a fixed-width unsigned big-endian integer codec (widths 1-8 bytes)
// and the length-prefixed variable-length blob framing built on top of it.
// The big-endian-field idiom is adapted from the teacher's binary protocol
// writer/reader (binary.Write(w, binary.BigEndian, ...)), generalized here
// from fixed 8-byte fields to an arbitrary width parameter.
package codec

import (
	"github.com/nishisan-dev/coltable/internal/coreerr"
)

// MaxUintWidth is the largest supported width, in bytes, for the unsigned
// codec and for a VariableArena length prefix.
const MaxUintWidth = 8

// MaxValueForWidth returns the largest value representable in n bytes
// (256^n - 1). n must be in [1, 8].
func MaxValueForWidth(n int) uint64 {
	if n >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * uint(n))) - 1
}

// ToBytes encodes v as an n-byte big-endian unsigned integer. n must be in
// [1, 8] and v must fit in n bytes, otherwise a bad-argument error is
// returned.
func ToBytes(v uint64, n int) ([]byte, error) {
	if n < 1 || n > MaxUintWidth {
		return nil, coreerr.New(coreerr.BadArgument, "codec.ToBytes", errInvalidWidth)
	}
	if n < 8 && v > MaxValueForWidth(n) {
		return nil, coreerr.New(coreerr.BadArgument, "codec.ToBytes", errValueTooWideForWidth)
	}
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v & 0xFF)
		v >>= 8
	}
	return out, nil
}

// FromBytes decodes an n-byte big-endian unsigned integer. Each byte is
// masked with 0xFF before shifting, matching spec's fixed-length codec.
// len(b) must equal n.
func FromBytes(b []byte, n int) (uint64, error) {
	if n < 1 || n > MaxUintWidth {
		return 0, coreerr.New(coreerr.BadArgument, "codec.FromBytes", errInvalidWidth)
	}
	if len(b) != n {
		return 0, coreerr.New(coreerr.BadArgument, "codec.FromBytes", errShortBuffer)
	}
	var v uint64
	for _, by := range b {
		v = (v << 8) | uint64(by&0xFF)
	}
	return v, nil
}
