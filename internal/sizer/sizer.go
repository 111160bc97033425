// Package sizer implements the chunk-size engine shared by every arena: it
// emits a sequence of chunk sizes t1, t2, ... chosen so that the per-chunk
// overhead stays small relative to an estimated payload, without wasting
// memory when the real size turns out close to the initial guess.
package sizer

import (
	"math"

	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/memprobe"
)

// ArenaKind selects the default per-chunk overhead used by the "default"
// construction mode: GenericArena chunks are plain slot arrays with no
// chunk-to-chunk link, while the byte arenas (Fixed/Variable) carry a
// forward link plus bookkeeping and so assume a larger fixed overhead.
type ArenaKind int

const (
	KindGeneric ArenaKind = iota
	KindByte
)

const (
	defaultNuGeneric = 17
	defaultNuByte    = 28
	defaultT         = 4

	// minAlpha is the floor the shrinking-growth search is allowed to reach
	// before the capacity bound is clamped instead of further halved.
	minAlpha = 0.05
	// maxGrowthSteps bounds the number of chunks considered "growing"
	// (m), protecting against pathological (t, c, ν) combinations that
	// would otherwise search forever for a freeze point.
	maxGrowthSteps = 1 << 20
)

// Sizer emits the next chunk size on demand. It is not safe for concurrent
// use; callers share the single-writer discipline of the arena that owns it.
type Sizer struct {
	alpha float64
	m     int32
	nu    int32

	t         float64 // current chunk size, mutated as next_size is called
	callCount int32
}

// NextSize returns the next chunk size: the i-th call returns
// t·α^min(i-1, m-1). On calls 2 through m the stored size is scaled by α
// before it is returned; after m calls the size is frozen.
func (s *Sizer) NextSize() int32 {
	s.callCount++
	if s.callCount > 1 && s.callCount <= s.m {
		s.t *= s.alpha
	}
	return roundSize(s.t)
}

// Alpha returns the growth factor in effect.
func (s *Sizer) Alpha() float64 { return s.alpha }

// M returns the number of growing chunks before the size freezes.
func (s *Sizer) M() int32 { return s.m }

// Nu returns the per-chunk overhead this Sizer was built with.
func (s *Sizer) Nu() int32 { return s.nu }

func roundSize(t float64) int32 {
	if t < 1 {
		return 1
	}
	if t > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(math.Ceil(t))
}

// Default builds a Sizer using the default construction mode (spec §4.1):
// ν = 17 or 28 depending on arena kind, t = 4, c = half of the currently
// available free memory as reported by probe.
func Default(kind ArenaKind, probe memprobe.Probe) (*Sizer, error) {
	nu := int32(defaultNuGeneric)
	if kind == KindByte {
		nu = defaultNuByte
	}
	available, err := probe.AvailableBytes()
	if err != nil {
		return nil, coreerr.New(coreerr.IOFailure, "sizer.Default", err)
	}
	c := float64(available) / 2
	t := float64(defaultT)
	return New(&t, &c, &nu)
}

// New builds a Sizer in semi-expert mode: the caller supplies a lower bound
// t, an estimated capacity c and a per-chunk overhead ν; any nil pointer is
// filled with the default construction mode's value for that parameter.
func New(t, c *float64, nu *int32) (*Sizer, error) {
	tt := float64(defaultT)
	if t != nil {
		tt = *t
	}
	nn := int32(defaultNuGeneric)
	if nu != nil {
		nn = *nu
	}
	var cc float64
	haveC := c != nil
	if haveC {
		cc = *c
	}

	if nn < 4 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.New", errInvalidNu)
	}
	if tt < 0 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.New", errNegativeT)
	}
	if haveC && cc < 0 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.New", errNegativeC)
	}
	if haveC && tt > 0 && cc > 0 && tt > cc {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.New", errTGreaterThanC)
	}
	if tt <= 0 {
		tt = 1
	}
	if !haveC {
		available, err := memprobe.System{}.AvailableBytes()
		if err != nil {
			return nil, coreerr.New(coreerr.IOFailure, "sizer.New", err)
		}
		cc = float64(available) / 2
	}

	if err := checkFinite(tt, cc, float64(nn)); err != nil {
		return nil, err
	}

	switch {
	case tt < float64(nn):
		// Initial chunk would already be smaller than the overhead: grow
		// exponentially to amortize it quickly.
		m := exponentialM(tt, cc)
		return &Sizer{alpha: 2, m: m, nu: nn, t: tt}, nil

	case closeEnough(tt, cc, nn):
		// Estimated capacity is close to the initial size: a single
		// constant chunk size suffices.
		return &Sizer{alpha: 1, m: 1, nu: nn, t: tt}, nil

	default:
		alpha, adjT := searchShrinkingAlpha(tt, cc, nn)
		m := shrinkingM(adjT, alpha, nn)
		return &Sizer{alpha: alpha, m: m, nu: nn, t: adjT}, nil
	}
}

// NewExpert builds a Sizer in expert mode: the caller supplies α, t, c, ν
// directly. They are validated by the same feasibility test the semi-expert
// mode uses to pick α, and rejected (bad-argument) otherwise.
func NewExpert(alpha, t, c float64, nu int32) (*Sizer, error) {
	if nu < 4 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errInvalidNu)
	}
	if t < 0 || c < 0 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errNegativeT)
	}
	if t > 0 && c > 0 && t > c {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errTGreaterThanC)
	}
	if alpha <= 0 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errInvalidAlpha)
	}
	if err := checkFinite(alpha, t, c, float64(nu)); err != nil {
		return nil, err
	}

	if alpha > 1 && alpha != 2 {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errInvalidAlpha)
	}
	if alpha < 1 && !feasible(alpha, t, c, nu) {
		return nil, coreerr.New(coreerr.BadArgument, "sizer.NewExpert", errInfeasible)
	}

	tt := t
	if tt <= 0 {
		tt = 1
	}

	var m int32
	switch {
	case alpha == 1:
		m = 1
	case alpha > 1:
		m = exponentialM(tt, c)
	default:
		m = shrinkingM(tt, alpha, nu)
	}
	return &Sizer{alpha: alpha, m: m, nu: nu, t: tt}, nil
}

// closeEnough reports whether c is near enough to t that a single constant
// chunk size satisfies the estimate, within 5% of t or one overhead unit,
// whichever is larger.
func closeEnough(t, c float64, nu int32) bool {
	tol := t * 0.05
	if float64(nu) > tol {
		tol = float64(nu)
	}
	diff := c - t
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol
}

// exponentialM picks the largest chunk count whose last growing chunk size
// (t doubled m-1 times) still does not exceed the estimated capacity c, so
// the growth phase's cumulative payload (t + 2t + 4t + ... + t·2^(m-1),
// which is less than twice the last term) never exceeds 2c.
func exponentialM(t, c float64) int32 {
	if t <= 0 {
		t = 1
	}
	if c <= t {
		return 1
	}
	m := int32(1)
	size := t
	for size*2 <= c && m < maxGrowthSteps {
		size *= 2
		m++
	}
	return m
}

// shrinkingM picks the smallest chunk count such that the shrinking chunk
// size drops to or below the per-chunk overhead ν, after which further
// shrinking would make the overhead dominate the payload, so growth freezes.
func shrinkingM(t, alpha float64, nu int32) int32 {
	if t <= float64(nu) {
		return 1
	}
	m := int32(1)
	size := t
	for size > float64(nu) && m < maxGrowthSteps {
		size *= alpha
		m++
	}
	return m
}

// searchShrinkingAlpha halves α below 1 until the feasibility bound
// t ≤ (1-α)(ν/(2·ln²α) + c) holds, or α drops below 0.05, in which case t
// is clamped down to the bound evaluated at the smallest α still ≥ 0.05.
func searchShrinkingAlpha(t, c float64, nu int32) (alpha, adjT float64) {
	alpha = 0.5
	for {
		if alpha < minAlpha {
			lastValid := alpha * 2
			return lastValid, feasibilityBound(lastValid, c, nu)
		}
		if feasible(alpha, t, c, nu) {
			return alpha, t
		}
		alpha /= 2
	}
}

func feasibilityBound(alpha, c float64, nu int32) float64 {
	lnAlpha := math.Log(alpha)
	denom := 2 * lnAlpha * lnAlpha
	return (1 - alpha) * (float64(nu)/denom + c)
}

func feasible(alpha, t, c float64, nu int32) bool {
	if alpha <= 0 || alpha >= 1 {
		return false
	}
	return t <= feasibilityBound(alpha, c, nu)
}

func checkFinite(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return coreerr.New(coreerr.BadArgument, "sizer", errNonFinite)
		}
	}
	return nil
}
