// Package arena implements the three bulk-load append-only containers
// (GenericArena, FixedArena, VariableArena) built on top of a Sizer and a
// Rounder: a writer appends elements one at a time, chunk allocation is
// driven by the Sizer's size sequence, and a one-shot drain iterator
// consumes the arena, releasing chunks to the allocator as it advances.
package arena

import (
	"log/slog"
	"math"

	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/logging"
	"github.com/nishisan-dev/coltable/internal/rounder"
	"github.com/nishisan-dev/coltable/internal/sizer"
)

// growthSampleEvery thins chunk-growth Debug records down to one in every
// growthSampleEvery calls: a multi-gigabyte bulk load can grow an arena's
// chunk list thousands of times, and logging every single one would drown
// out everything else at debug level.
const growthSampleEvery = 32

// newGrowthLog resolves a nil-safe logger to a sampled Debug sink for
// chunk-growth records. A nil logger defaults to slog.Default(), matching
// the rest of this tree's nil-logger convention.
func newGrowthLog(logger *slog.Logger) (*slog.Logger, *logging.DebugSampler) {
	if logger == nil {
		logger = slog.Default()
	}
	return logger, logging.NewDebugSampler(logger, growthSampleEvery)
}

// GrowthBounder reports an upper bound on the number of elements still to
// be appended. Arenas use it to clip the next chunk's size instead of
// over-allocating for a tail that never arrives. UnknownBound signals that
// no useful bound is available. The bound is compared directly with the
// rounded chunk size, so it is read in the arena's allocation unit:
// elements for GenericArena, bytes for FixedArena and VariableArena.
type GrowthBounder interface {
	Bound() int32
}

// UnknownBound is the sentinel a GrowthBounder returns when the remaining
// element count is not known.
const UnknownBound int32 = math.MaxInt32

// nextChunkSize asks the sizer for the next raw size, quantises it with
// the rounder, and clips it against an optional growth bounder.
func nextChunkSize(sz *sizer.Sizer, rnd rounder.Rounder, bounder GrowthBounder) int32 {
	raw := sz.NextSize()
	rounded := rnd.Round(float64(raw))
	if bounder == nil {
		return rounded
	}
	if bound := bounder.Bound(); bound > 0 && bound < rounded {
		return bound
	}
	return rounded
}

func misuseAppendAfterDrain(op string) error {
	return coreerr.New(coreerr.Misuse, op, errAppendAfterDrain)
}

func misuseDrainAlreadyTaken(op string) error {
	return coreerr.New(coreerr.Misuse, op, errDrainAlreadyTaken)
}
