// Package fileprovider implements the file-channel provider: a
// per-process cache of open file handles keyed by path, bounding the
// number of simultaneously open backing files that the bulk-load arenas
// drain into. Every public method runs under one coarse lock, the same
// shared-state mutual-exclusion idiom the teacher's ThrottledWriter
// neighbours use for their own counters, so two concurrent requests for
// the same path never race to open it twice.
package fileprovider

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nishisan-dev/coltable/internal/coreerr"
)

// Strategy identifies one of the three closing strategies, selected once
// at construction from a single integer delay (in milliseconds).
type Strategy int

const (
	// KeepOpen: idle handles stay open forever (delay < 0).
	KeepOpen Strategy = iota
	// CloseImmediately: closed synchronously in release once ref_count
	// reaches zero (delay == 0).
	CloseImmediately
	// LazyCloseTTL: idle handles linger for delay ms, reaped in the
	// background (delay > 0).
	LazyCloseTTL
)

// minTTL is the smallest lazy-close delay the provider accepts; shorter
// requests are clamped up.
const minTTL = 10 * time.Millisecond

// entry is a file-channel record. Identity is by path.
type entry struct {
	path      string
	f         *os.File
	refCount  int32
	idleSince time.Time // zero value means "never" (ref_count > 0)
}

func (e *entry) isIdle() bool { return e.refCount == 0 }

// Provider is the file-channel provider. The caller owns its lifecycle;
// it is not a singleton.
type Provider struct {
	opts     OpenOptions
	strategy Strategy
	delay    time.Duration
	logger   *slog.Logger
	limiter  *rate.Limiter // optional cap on opens/sec; nil disables limiting

	mu           sync.Mutex
	entries      map[string]*entry
	shutDown     bool
	reaperActive bool
	reaperCancel context.CancelFunc
	onReaperErr  func(error)
}

// Option configures optional behaviour of a Provider.
type Option func(*Provider)

// WithLogger attaches structured logging to provider lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithReaperErrorHandler overrides how an I/O failure closing an idle
// handle is escalated. The reaper never swallows such a failure; the
// default handler panics on the reaper's own goroutine.
func WithReaperErrorHandler(fn func(error)) Option {
	return func(p *Provider) { p.onReaperErr = fn }
}

// WithOpenRateLimit caps the number of underlying open syscalls per
// second, smoothing bursts of cold requests across many distinct paths.
func WithOpenRateLimit(opensPerSecond float64, burst int) Option {
	return func(p *Provider) {
		if opensPerSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(opensPerSecond), burst)
		}
	}
}

// New builds a Provider with the given open-options and closing-strategy
// delay (milliseconds; see Strategy).
func New(opts OpenOptions, delayMs int, options ...Option) *Provider {
	p := &Provider{
		opts:    opts,
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
	p.onReaperErr = func(err error) { panic(err) }
	switch {
	case delayMs < 0:
		p.strategy = KeepOpen
	case delayMs == 0:
		p.strategy = CloseImmediately
	default:
		p.strategy = LazyCloseTTL
		d := time.Duration(delayMs) * time.Millisecond
		if d < minTTL {
			d = minTTL
		}
		p.delay = d
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Request returns a handle for path. An empty path returns (nil, nil).
func (p *Provider) Request(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutDown {
		return nil, coreerr.NewPath(coreerr.Shutdown, "Provider.Request", path, errShutDown)
	}

	if e, ok := p.entries[path]; ok {
		e.refCount++
		e.idleSince = time.Time{}
		if _, err := e.f.Seek(0, 0); err != nil {
			return nil, coreerr.NewPath(coreerr.IOFailure, "Provider.Request", path, err)
		}
		return e.f, nil
	}

	if p.limiter != nil {
		_ = p.limiter.Wait(context.Background())
	}

	flags, err := p.opts.osFlags()
	if err != nil {
		return nil, coreerr.NewPath(coreerr.Unsupported, "Provider.Request", path, err)
	}
	f, err := os.OpenFile(path, flags, defaultFileMode)
	if err != nil {
		return nil, coreerr.NewPath(coreerr.IOFailure, "Provider.Request", path, err)
	}
	p.entries[path] = &entry{path: path, f: f, refCount: 1}
	p.logger.Debug("fileprovider opened handle", "path", path)
	return f, nil
}

// Release decrements path's ref_count and applies the configured closing
// strategy once it reaches zero. No-op for an unknown path or a shut-down
// provider; under KeepOpen it only decrements ref_count and marks the
// entry idle.
func (p *Provider) Release(path string) error {
	if path == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutDown {
		return nil
	}
	e, ok := p.entries[path]
	if !ok {
		return nil
	}
	if e.refCount > 0 {
		e.refCount--
	}
	if e.refCount > 0 {
		return nil
	}

	switch p.strategy {
	case KeepOpen:
		e.idleSince = time.Now()
		return nil
	case CloseImmediately:
		delete(p.entries, path)
		if err := e.f.Close(); err != nil {
			return coreerr.NewPath(coreerr.IOFailure, "Provider.Release", path, err)
		}
		p.logger.Debug("fileprovider closed handle", "path", path, "strategy", "close-immediately")
		return nil
	default: // LazyCloseTTL
		e.idleSince = time.Now()
		p.ensureReaperLocked()
		return nil
	}
}

// ForceClose closes and removes path's entry if it is idle; otherwise a
// no-op.
func (p *Provider) ForceClose(path string) error {
	if path == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[path]
	if !ok || !e.isIdle() {
		return nil
	}
	delete(p.entries, path)
	if err := e.f.Close(); err != nil {
		return coreerr.NewPath(coreerr.IOFailure, "Provider.ForceClose", path, err)
	}
	return nil
}

// Shutdown is idempotent: marks the provider shut down, stops the reaper,
// closes every remaining handle, and clears the map.
func (p *Provider) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutDown {
		return nil
	}
	p.shutDown = true
	if p.reaperCancel != nil {
		p.reaperCancel()
		p.reaperCancel = nil
	}
	entries := p.entries
	p.entries = make(map[string]*entry)

	var firstErr error
	for path, e := range entries {
		if err := e.f.Close(); err != nil && firstErr == nil {
			firstErr = coreerr.NewPath(coreerr.IOFailure, "Provider.Shutdown", path, err)
		}
	}
	p.logger.Info("fileprovider shut down", "handles_closed", len(entries))
	return firstErr
}

// Len reports the number of open entries.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
