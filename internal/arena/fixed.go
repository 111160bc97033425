package arena

import (
	"log/slog"

	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/logging"
	"github.com/nishisan-dev/coltable/internal/rounder"
	"github.com/nishisan-dev/coltable/internal/sizer"
)

// FixedArena holds a sequence of fixed-length byte blobs. Chunk sizes are
// always positive multiples of the declared width L, so no blob ever
// crosses a chunk boundary.
type FixedArena struct {
	width   int32
	sizer   *sizer.Sizer
	rounder rounder.Rounder
	bounder GrowthBounder

	logger    *slog.Logger
	growthLog *logging.DebugSampler

	head, last *byteChunk
	size       int64
	taken      bool
}

// NewFixedArena builds an empty FixedArena for blobs of the given width.
// rnd should quantise to multiples of width (rounder.NewMultipleOfLen).
// logger is optional (nil-safe); when set it receives sampled Debug
// records on chunk growth and one Debug record when Drain is constructed.
func NewFixedArena(width int32, sz *sizer.Sizer, rnd rounder.Rounder, bounder GrowthBounder, logger *slog.Logger) *FixedArena {
	logger, growthLog := newGrowthLog(logger)
	return &FixedArena{width: width, sizer: sz, rounder: rnd, bounder: bounder, logger: logger, growthLog: growthLog}
}

// Append copies blob, which must have length exactly Width(), into the
// arena.
func (a *FixedArena) Append(blob []byte) error {
	if a.taken {
		return misuseAppendAfterDrain("FixedArena.Append")
	}
	if int32(len(blob)) != a.width {
		return coreerr.New(coreerr.BadArgument, "FixedArena.Append", errWrongBlobLength)
	}
	if a.last == nil || int(a.last.pos)+len(blob) > len(a.last.buf) {
		a.allocChunk()
	}
	copy(a.last.buf[a.last.pos:], blob)
	a.last.pos += int32(len(blob))
	a.size++
	return nil
}

func (a *FixedArena) allocChunk() {
	n := nextChunkSize(a.sizer, a.rounder, a.bounder)
	if a.width > 0 {
		n -= n % a.width
	}
	if n < a.width {
		n = a.width
	}
	c := &byteChunk{buf: make([]byte, n)}
	if a.last == nil {
		a.head = c
	} else {
		a.last.next = c
	}
	a.last = c
	a.growthLog.Debug("fixed arena chunk grown", "bytes", n, "width", a.width)
}

// Width returns the fixed blob length this arena was built for.
func (a *FixedArena) Width() int32 { return a.width }

// Size returns the number of successful appends since construction.
func (a *FixedArena) Size() int64 { return a.size }

// FixedDrain is a one-shot, destructive iterator over a FixedArena's
// blobs, in insertion order.
type FixedDrain struct {
	width int32
	cur   *byteChunk
	pos   int32
}

// Drain consumes the arena and returns its destructive iterator.
func (a *FixedArena) Drain() *FixedDrain {
	d := &FixedDrain{width: a.width, cur: a.head}
	a.logger.Debug("fixed arena drain constructed", "size", a.size, "width", a.width)
	a.head, a.last = nil, nil
	a.taken = true
	return d
}

// Next returns a freshly allocated copy of the next blob and true, or
// (nil, false) once exhausted.
func (d *FixedDrain) Next() ([]byte, bool) {
	for d.cur != nil && d.pos >= d.cur.pos {
		released := d.cur
		d.cur = d.cur.next
		released.next = nil
		d.pos = 0
	}
	if d.cur == nil {
		return nil, false
	}
	blob := make([]byte, d.width)
	copy(blob, d.cur.buf[d.pos:d.pos+d.width])
	d.pos += d.width
	return blob, true
}
