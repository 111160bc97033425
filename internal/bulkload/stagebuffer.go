// Package bulkload implements the staging layer that sits between a
// drained arena and the file-channel provider: it either pulls blobs
// straight from an arena's drain iterator (the BlobSource shape shared by
// arena.FixedDrain and arena.VariableDrain) or accepts an already
// materialized byte slice, bounds and paces the concurrent writes this
// produces, and hands each blob to the provider's outrow file.
//
// Concurrency is bounded by a token semaphore sized off the staging
// capacity, not by the bounded-channel-plus-CAS-retry-loop a generic
// producer/consumer buffer would use: an arena drain is already a
// one-shot sequential pull with nothing left to queue once consumed, so
// the buffer's job is to cap how many outrow writes run at once and let a
// producer learn when its writes have all landed (Flush), not to
// re-implement the arena's own sequencing.
package bulkload

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nishisan-dev/coltable/internal/coreerr"
	"github.com/nishisan-dev/coltable/internal/fileprovider"
)

const (
	// AvgSlotSize sizes the concurrency semaphore: capacityBytes /
	// AvgSlotSize tokens, each token standing for "one blob's worth of
	// in-flight bytes" rather than a fixed queue depth.
	AvgSlotSize       = 64 * 1024
	stageFlushTimeout = 30 * time.Second
	stagePushTimeout  = 5 * time.Second
)

// BlobSource is the one-shot destructive drain-iterator shape shared by
// arena.FixedDrain and arena.VariableDrain: Next yields the next decoded
// blob, or (nil, false) once the arena is exhausted. DrainInto consumes a
// BlobSource directly instead of re-queuing its output, since the arena
// already did the sequencing.
type BlobSource interface {
	Next() ([]byte, bool)
}

// ValueSupplier is spec.md §6's "value supplier" collaborator: a callable
// that writes its value into a byte sink instead of handing over an
// already-materialized []byte — used when the source cannot be read as a
// plain in-memory slice (e.g. a value guarded by a lock that only exposes
// a streaming read). A supplier's error is surfaced as an io-failure.
type ValueSupplier func(io.Writer) error

// Stats is an instantaneous snapshot of the staging buffer's metrics.
type Stats struct {
	Enabled            bool
	CapacityBytes      int64
	InFlightBytes      int64
	FillRatio          float64
	TotalPushed        int64
	TotalDrained       int64
	TotalFallbacks     int64
	BackpressureEvents int64
	DrainRatio         float64
}

// StageBuffer bounds and paces concurrent outrow writes shared across
// many producers, draining into a shared Provider.
type StageBuffer struct {
	capacityBytes int64
	drainRatio    float64
	logger        *slog.Logger
	provider      *fileprovider.Provider
	throttle      func(io.Writer) io.Writer

	tokens chan struct{} // one token per AvgSlotSize bytes of concurrency budget

	inFlightBytes atomic.Int64

	mu       sync.Mutex
	inflight map[any]*sync.WaitGroup

	totalPushed        atomic.Int64
	totalDrained       atomic.Int64
	totalFallbacks     atomic.Int64
	backpressureEvents atomic.Int64
}

// New builds a StageBuffer with the given capacity in bytes and
// drain_ratio in [0, 1]. drainRatio gates write-through: once the
// fraction of capacityBytes currently in flight reaches drainRatio (or
// drainRatio is 0), Push writes synchronously instead of handing the
// blob to a bounded background write, so a sustained producer is
// throttled by its own write latency rather than by an ever-growing
// backlog. capacityBytes <= 0 disables the buffer (New returns nil).
func New(capacityBytes int64, drainRatio float64, provider *fileprovider.Provider, logger *slog.Logger) *StageBuffer {
	if capacityBytes <= 0 {
		return nil
	}
	tokenCount := int(capacityBytes / AvgSlotSize)
	if tokenCount < 2 {
		tokenCount = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stage buffer initialized",
		"capacity_bytes", capacityBytes,
		"concurrency_tokens", tokenCount,
		"drain_ratio", drainRatio,
	)
	return &StageBuffer{
		capacityBytes: capacityBytes,
		drainRatio:    drainRatio,
		logger:        logger,
		provider:      provider,
		tokens:        make(chan struct{}, tokenCount),
		inflight:      make(map[any]*sync.WaitGroup),
	}
}

// Enabled reports whether the buffer is active.
func (b *StageBuffer) Enabled() bool { return b != nil }

// SetThrottle installs a factory that wraps each outrow file's writer
// with a rate limiter, applied to every write, synchronous or async.
func (b *StageBuffer) SetThrottle(wrap func(io.Writer) io.Writer) { b.throttle = wrap }

// DrainInto pulls every blob out of source — typically an arena's drain
// iterator — and pushes each one in turn, attributed to producer. It
// returns the first error encountered; the source itself is not
// rewindable past whatever it already yielded.
func (b *StageBuffer) DrainInto(path string, source BlobSource, producer any) error {
	for {
		blob, ok := source.Next()
		if !ok {
			return nil
		}
		if err := b.Push(path, blob, producer); err != nil {
			return err
		}
	}
}

// PushFromSupplier stages the bytes a ValueSupplier writes into an
// in-memory sink, then pushes the result exactly like Push. A supplier
// error is reported as an io-failure rather than propagated as-is, since
// the supplier's own failure (e.g. reading a locked file) is an I/O
// concern from the staging buffer's point of view.
func (b *StageBuffer) PushFromSupplier(path string, supplier ValueSupplier, producer any) error {
	if b == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := supplier(&buf); err != nil {
		return coreerr.NewPath(coreerr.IOFailure, "StageBuffer.PushFromSupplier", path, err)
	}
	return b.Push(path, buf.Bytes(), producer)
}

// Push stages data for eventual append to path's outrow file, attributed
// to producer for scoped Flush.
//
// A blob that does not fit in the remaining capacity is written through
// directly (a fallback, not staged). Otherwise, below drainRatio the blob
// is handed to a bounded background write gated by a concurrency token;
// at or above drainRatio (or when drainRatio is 0) it is written
// synchronously.
func (b *StageBuffer) Push(path string, data []byte, producer any) error {
	dataLen := int64(len(data))
	available := b.capacityBytes - b.inFlightBytes.Load()
	if dataLen > available {
		b.totalFallbacks.Add(1)
		return b.writeDirect(path, data)
	}

	if b.drainRatio <= 0 || b.fillRatio() >= b.drainRatio {
		b.totalPushed.Add(1)
		err := b.writeDirect(path, data)
		b.totalDrained.Add(1)
		return err
	}

	select {
	case b.tokens <- struct{}{}:
	case <-time.After(stagePushTimeout):
		b.backpressureEvents.Add(1)
		b.totalFallbacks.Add(1)
		return b.writeDirect(path, data)
	}

	wg := b.waitGroupFor(producer)
	wg.Add(1)
	b.inFlightBytes.Add(dataLen)
	b.totalPushed.Add(1)

	go func() {
		defer func() {
			<-b.tokens
			b.inFlightBytes.Add(-dataLen)
			b.totalDrained.Add(1)
			wg.Done()
		}()
		if err := b.writeDirect(path, data); err != nil {
			b.logger.Error("stage buffer async write failed", "path", path, "error", err)
		}
	}()
	return nil
}

func (b *StageBuffer) fillRatio() float64 {
	if b.capacityBytes <= 0 {
		return 1
	}
	return float64(b.inFlightBytes.Load()) / float64(b.capacityBytes)
}

func (b *StageBuffer) waitGroupFor(producer any) *sync.WaitGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	wg, ok := b.inflight[producer]
	if !ok {
		wg = &sync.WaitGroup{}
		b.inflight[producer] = wg
	}
	return wg
}

// writeDirect appends data at the current end of the provider-backed
// outrow file for path, through the optional throttle.
func (b *StageBuffer) writeDirect(path string, data []byte) error {
	f, err := b.provider.Request(path)
	if err != nil {
		return err
	}
	defer b.provider.Release(path)
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return coreerr.NewPath(coreerr.IOFailure, "StageBuffer.writeDirect", path, err)
	}

	var w io.Writer = f
	if b.throttle != nil {
		w = b.throttle(w)
	}
	_, err = w.Write(data)
	return err
}

// Flush waits until every background write pushed by producer has
// completed.
func (b *StageBuffer) Flush(producer any) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	wg, ok := b.inflight[producer]
	if ok {
		delete(b.inflight, producer)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(stageFlushTimeout):
		return fmt.Errorf("stage buffer flush timeout after %s", stageFlushTimeout)
	}
}

// WaitIdle blocks until no bytes are in flight, or timeout elapses. Use
// at process shutdown once no further producers will call Push.
func (b *StageBuffer) WaitIdle(timeout time.Duration) {
	if b == nil {
		return
	}
	deadline := time.Now().Add(timeout)
	for b.inFlightBytes.Load() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

// Stats returns a snapshot of the buffer's metrics.
func (b *StageBuffer) Stats() Stats {
	if b == nil {
		return Stats{Enabled: false}
	}
	return Stats{
		Enabled:            true,
		CapacityBytes:      b.capacityBytes,
		InFlightBytes:      b.inFlightBytes.Load(),
		FillRatio:          b.fillRatio(),
		TotalPushed:        b.totalPushed.Load(),
		TotalDrained:       b.totalDrained.Load(),
		TotalFallbacks:     b.totalFallbacks.Load(),
		BackpressureEvents: b.backpressureEvents.Load(),
		DrainRatio:         b.drainRatio,
	}
}
