package arena

import (
	"log/slog"

	"github.com/nishisan-dev/coltable/internal/logging"
	"github.com/nishisan-dev/coltable/internal/rounder"
	"github.com/nishisan-dev/coltable/internal/sizer"
)

// genericChunk is one slab of opaque element slots. slots[pos:] is unused.
type genericChunk struct {
	slots []uintptr
	pos   int32
}

// GenericArena holds a sequence of opaque element handles in a
// vector-of-chunks structure: insertion order only, no deletion, no
// random-indexed mutation.
type GenericArena struct {
	sizer   *sizer.Sizer
	rounder rounder.Rounder
	bounder GrowthBounder

	logger    *slog.Logger
	growthLog *logging.DebugSampler

	chunks []*genericChunk
	size   int64
	taken  bool
}

// NewGenericArena builds an empty GenericArena. rnd should already account
// for element width (e.g. via rounder.ElementScaled) so that Round returns
// an element count, not a byte count. logger is optional (nil-safe); when
// set it receives sampled Debug records on chunk growth and one Debug
// record when Drain is constructed.
func NewGenericArena(sz *sizer.Sizer, rnd rounder.Rounder, bounder GrowthBounder, logger *slog.Logger) *GenericArena {
	logger, growthLog := newGrowthLog(logger)
	return &GenericArena{sizer: sz, rounder: rnd, bounder: bounder, logger: logger, growthLog: growthLog}
}

// Append writes one opaque element handle.
func (a *GenericArena) Append(e uintptr) error {
	if a.taken {
		return misuseAppendAfterDrain("GenericArena.Append")
	}
	last := a.lastChunk()
	if last == nil || int(last.pos) == len(last.slots) {
		last = a.allocChunk()
	}
	last.slots[last.pos] = e
	last.pos++
	a.size++
	return nil
}

func (a *GenericArena) lastChunk() *genericChunk {
	if len(a.chunks) == 0 {
		return nil
	}
	return a.chunks[len(a.chunks)-1]
}

func (a *GenericArena) allocChunk() *genericChunk {
	n := nextChunkSize(a.sizer, a.rounder, a.bounder)
	c := &genericChunk{slots: make([]uintptr, n)}
	a.chunks = append(a.chunks, c)
	a.growthLog.Debug("generic arena chunk grown", "slots", n, "chunk_count", len(a.chunks))
	return c
}

// Size returns the number of successful appends since construction.
func (a *GenericArena) Size() int64 { return a.size }

// GenericDrain is a one-shot, destructive iterator over a GenericArena's
// elements, in insertion order. Each chunk is released (its slot in the
// backing vector cleared) once its last element has been yielded.
type GenericDrain struct {
	chunks []*genericChunk
	idx    int
	pos    int32
}

// Drain consumes the arena and returns its destructive iterator. Further
// calls to Append will fail with a misuse error.
func (a *GenericArena) Drain() *GenericDrain {
	d := &GenericDrain{chunks: a.chunks}
	a.logger.Debug("generic arena drain constructed", "size", a.size, "chunk_count", len(a.chunks))
	a.chunks = nil
	a.taken = true
	return d
}

// Next returns the next element and true, or (0, false) once exhausted.
func (d *GenericDrain) Next() (uintptr, bool) {
	for d.idx < len(d.chunks) {
		c := d.chunks[d.idx]
		if d.pos < c.pos {
			v := c.slots[d.pos]
			d.pos++
			if d.pos >= c.pos {
				d.chunks[d.idx] = nil // release the chunk to the allocator
				d.idx++
				d.pos = 0
			}
			return v, true
		}
		d.chunks[d.idx] = nil
		d.idx++
		d.pos = 0
	}
	return 0, false
}
