package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/fleetdash/internal/logger"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 5 * time.Second

// Refresher is anything that can reload itself. *Store satisfies it.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Poller calls Refresh immediately and then on every tick until stopped.
// Ticks that arrive while a refresh is still running are dropped by the
// ticker, so refreshes never overlap and never catch up.
type Poller struct {
	target   Refresher
	interval time.Duration
	log      logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a stopped poller. A non-positive interval means DefaultInterval.
func NewPoller(target Refresher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		target:   target,
		interval: interval,
		log:      logger.NewEnvLogger("poller"),
	}
}

// Interval returns the refresh period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start launches the polling goroutine bound to ctx.
// Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runningLocked() {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.log.Debug("polling every %s", p.interval)
	go p.run(ctx, done)
}

// Stop cancels the polling goroutine and waits for it to exit.
// An in-flight refresh is cancelled through its context.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Debug("polling stopped")
}

// Running reports whether the polling goroutine is alive.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

func (p *Poller) runningLocked() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.target.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.target.Refresh(ctx)
		}
	}
}
