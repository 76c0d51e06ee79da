// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run drives cycles until ctx is done: one immediately, then one per
// interval tick and one per coalesced refresh request.
// One goroutine per device. No overlap.
//
// On return the ticker is stopped, the in-flight cycle has finished,
// the transport is closed and every subscriber channel is closed.
func (p *Poller) Run(ctx context.Context) error {
	if !p.initialized.Load() {
		return ErrNotInitialized
	}
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.shutdown()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.PollOnce()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.PollOnce()
		case <-p.refresh:
			p.PollOnce()
		}
	}
}

// RequestRefresh asks for one extra cycle without waiting for it.
// Requests made while one is already pending collapse into it.
func (p *Poller) RequestRefresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller) shutdown() {
	p.slot.Lock()
	p.stopped = true
	if p.connected {
		if err := p.port.Disconnect(); err != nil {
			p.log.Warn().Err(err).Msg("disconnect failed")
		}
		p.connected = false
	}
	p.slot.Unlock()

	p.closeSubscribers()
	p.log.Info().Msg("poller stopped")
}
