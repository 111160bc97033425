package codec

import "github.com/nishisan-dev/coltable/internal/coreerr"

// EncodeBlob serialises payload as an n-byte big-endian length prefix
// followed by the payload bytes, per VariableArena's on-wire format
// (uint{n}_be(len) || payload[len]). n must be in [1, 8] and len(payload)
// must not exceed 256^n - 1.
func EncodeBlob(payload []byte, n int) ([]byte, error) {
	length := uint64(len(payload))
	if n < 8 && length > MaxValueForWidth(n) {
		return nil, coreerr.New(coreerr.BadArgument, "codec.EncodeBlob", errLengthOverflow)
	}
	prefix, err := ToBytes(length, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n+len(payload))
	out = append(out, prefix...)
	out = append(out, payload...)
	return out, nil
}

// DecodeBlob reads one length-prefixed blob from the front of b. It returns
// the decoded payload and the remaining, unconsumed bytes of b.
func DecodeBlob(b []byte, n int) (payload, rest []byte, err error) {
	if len(b) < n {
		return nil, nil, coreerr.New(coreerr.BadArgument, "codec.DecodeBlob", errShortBuffer)
	}
	length, err := FromBytes(b[:n], n)
	if err != nil {
		return nil, nil, err
	}
	end := uint64(n) + length
	if end > uint64(len(b)) {
		return nil, nil, coreerr.New(coreerr.BadArgument, "codec.DecodeBlob", errShortBuffer)
	}
	return b[n:end], b[end:], nil
}
