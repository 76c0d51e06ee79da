// internal/poller/subscribe.go
package poller

import "github.com/google/uuid"

// Subscribe registers a listener notified once per completed cycle.
// The channel holds only the latest snapshot; a slow reader misses
// intermediate versions but never blocks the poller. It is closed on
// Unsubscribe or when Run returns.
func (p *Poller) Subscribe() (uuid.UUID, <-chan Snapshot) {
	id := uuid.New()
	ch := make(chan Snapshot, 1)

	p.subMu.Lock()
	defer p.subMu.Unlock()

	if p.closed {
		close(ch)
		return id, ch
	}
	p.subs[id] = ch
	return id, ch
}

func (p *Poller) Unsubscribe(id uuid.UUID) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
	}
}

func (p *Poller) notify(s Snapshot) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for _, ch := range p.subs {
		// drop the stale pending value, if any
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (p *Poller) closeSubscribers() {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
