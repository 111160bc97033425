package arena

import (
	"log/slog"

	"github.com/nishisan-dev/coltable/internal/codec"
	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/logging"
	"github.com/nishisan-dev/coltable/internal/rounder"
	"github.com/nishisan-dev/coltable/internal/sizer"
)

// VariableArena holds a sequence of variable-length byte blobs, each
// serialised as an n-byte big-endian length prefix followed by the
// payload. Blobs may cross chunk boundaries; both append and drain walk
// the forward-linked chunk list a piece at a time.
type VariableArena struct {
	prefixWidth int
	sizer       *sizer.Sizer
	rounder     rounder.Rounder
	bounder     GrowthBounder

	logger    *slog.Logger
	growthLog *logging.DebugSampler

	head, last *byteChunk
	size       int64
	taken      bool
}

// NewVariableArena builds an empty VariableArena using an n-byte
// big-endian length prefix, n in [1, 8]. logger is optional (nil-safe);
// when set it receives sampled Debug records on chunk growth and one
// Debug record when Drain is constructed.
func NewVariableArena(prefixWidth int, sz *sizer.Sizer, rnd rounder.Rounder, bounder GrowthBounder, logger *slog.Logger) *VariableArena {
	logger, growthLog := newGrowthLog(logger)
	return &VariableArena{prefixWidth: prefixWidth, sizer: sz, rounder: rnd, bounder: bounder, logger: logger, growthLog: growthLog}
}

// Append encodes blob's length as an n-byte prefix and writes prefix and
// payload into the arena, possibly spanning several chunks.
func (a *VariableArena) Append(blob []byte) error {
	if a.taken {
		return misuseAppendAfterDrain("VariableArena.Append")
	}
	prefix, err := codec.ToBytes(uint64(len(blob)), a.prefixWidth)
	if err != nil {
		return err
	}
	a.writeBytes(prefix)
	a.writeBytes(blob)
	a.size++
	return nil
}

// AppendSized accepts a blob that already carries its own n-byte length
// prefix and appends the raw bytes without re-encoding.
func (a *VariableArena) AppendSized(buf []byte) error {
	if a.taken {
		return misuseAppendAfterDrain("VariableArena.AppendSized")
	}
	if len(buf) < a.prefixWidth {
		return coreerr.New(coreerr.BadArgument, "VariableArena.AppendSized", errWrongBlobLength)
	}
	a.writeBytes(buf)
	a.size++
	return nil
}

func (a *VariableArena) writeBytes(data []byte) {
	for len(data) > 0 {
		if a.last == nil || a.last.pos >= int32(len(a.last.buf)) {
			a.allocChunk()
		}
		avail := int32(len(a.last.buf)) - a.last.pos
		n := int32(len(data))
		if n > avail {
			n = avail
		}
		copy(a.last.buf[a.last.pos:], data[:n])
		a.last.pos += n
		data = data[n:]
	}
}

func (a *VariableArena) allocChunk() {
	n := nextChunkSize(a.sizer, a.rounder, a.bounder)
	if int(n) < a.prefixWidth {
		n = int32(a.prefixWidth)
	}
	c := &byteChunk{buf: make([]byte, n)}
	if a.last == nil {
		a.head = c
	} else {
		a.last.next = c
	}
	a.last = c
	a.growthLog.Debug("variable arena chunk grown", "bytes", n, "prefix_width", a.prefixWidth)
}

// PrefixWidth returns the length-prefix width, in bytes, this arena was
// built with.
func (a *VariableArena) PrefixWidth() int { return a.prefixWidth }

// Size returns the number of successful appends since construction.
func (a *VariableArena) Size() int64 { return a.size }

// VariableDrain is a one-shot, destructive iterator over a VariableArena's
// blobs, in insertion order.
type VariableDrain struct {
	prefixWidth int
	cur         *byteChunk
	pos         int32
	remaining   int64
}

// Drain consumes the arena and returns its destructive iterator.
func (a *VariableArena) Drain() *VariableDrain {
	d := &VariableDrain{prefixWidth: a.prefixWidth, cur: a.head, remaining: a.size}
	a.logger.Debug("variable arena drain constructed", "size", a.size, "prefix_width", a.prefixWidth)
	a.head, a.last = nil, nil
	a.taken = true
	return d
}

// Next returns the next decoded blob and true, or (nil, false) once
// exhausted.
func (d *VariableDrain) Next() ([]byte, bool) {
	if d.remaining <= 0 {
		return nil, false
	}
	prefix := d.readBytes(d.prefixWidth)
	length, err := codec.FromBytes(prefix, d.prefixWidth)
	if err != nil {
		return nil, false
	}
	blob := d.readBytes(int(length))
	d.remaining--
	return blob, true
}

// readBytes consumes exactly n bytes from the chunk list, possibly
// spanning multiple chunks, releasing each chunk once exhausted.
func (d *VariableDrain) readBytes(n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		for d.cur != nil && d.pos >= d.cur.pos {
			released := d.cur
			d.cur = d.cur.next
			released.next = nil
			d.pos = 0
		}
		if d.cur == nil {
			break
		}
		avail := d.cur.pos - d.pos
		need := int32(n - len(out))
		take := avail
		if need < take {
			take = need
		}
		out = append(out, d.cur.buf[d.pos:d.pos+take]...)
		d.pos += take
	}
	return out
}
