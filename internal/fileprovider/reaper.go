package fileprovider

import (
	"context"
	"time"

	"github.com/nishisan-dev/coltable/internal/coreerr"
)

// ensureReaperLocked starts the background reaper if it is not already
// running. Must be called with p.mu held.
func (p *Provider) ensureReaperLocked() {
	if p.reaperActive {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.reaperActive = true
	p.reaperCancel = cancel
	go p.reapLoop(ctx)
}

// reapLoop implements the reaper task (strategy LazyCloseTTL only): sleep
// delay-interval, then repeatedly sleep interval and scan, closing every
// entry whose idle time has passed delay. It exits once no idle entries
// remain, and is restarted by the next Release that leaves one.
//
// Cancellation is observed, never preempted: the reaper always exits from
// a sleep, never mid-scan, so a scan that the coarse lock admits always
// completes.
func (p *Provider) reapLoop(ctx context.Context) {
	interval := p.delay / 10
	if interval <= 0 {
		interval = time.Millisecond
	}

	if first := p.delay - interval; first > 0 {
		if !sleepOrDone(ctx, first) {
			return
		}
	}

	for {
		if !sleepOrDone(ctx, interval) {
			return
		}
		if p.scanAndClose() {
			continue
		}
		p.mu.Lock()
		retire := true
		for _, e := range p.entries {
			if e.isIdle() {
				retire = false
				break
			}
		}
		if retire {
			p.reaperActive = false
			p.reaperCancel = nil
		}
		p.mu.Unlock()
		if retire {
			return
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// scanAndClose closes every entry whose idle time has exceeded the TTL
// and reports whether any idle entry remains afterward (i.e. whether the
// reaper should keep running).
func (p *Provider) scanAndClose() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	anyIdle := false
	for path, e := range p.entries {
		if !e.isIdle() {
			continue
		}
		if now.Sub(e.idleSince) >= p.delay {
			delete(p.entries, path)
			if err := e.f.Close(); err != nil {
				p.onReaperErr(coreerr.NewPath(coreerr.IOFailure, "Provider.reaper", path, err))
				continue
			}
			p.logger.Debug("fileprovider reaper closed idle handle", "path", path)
			continue
		}
		anyIdle = true
	}
	return anyIdle
}
