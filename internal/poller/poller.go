// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/codec"
	"github.com/tamzrod/apstorage-modbus/internal/register"
	"github.com/tamzrod/apstorage-modbus/internal/status"
	"github.com/tamzrod/apstorage-modbus/internal/transport"
)

// Poller owns the transport and publishes one Snapshot per cycle.
//
// Cycles, writes and the shutdown disconnect are serialized by a single
// execution slot. Snapshot readers never take it.
type Poller struct {
	cfg  Config
	port transport.Port
	log  zerolog.Logger
	rec  Recorder

	decode func(raw []uint16, def register.Definition) (codec.Value, error)

	// slot guards the fields below it.
	slot      sync.Mutex
	connected bool
	stopped   bool

	snap    atomic.Pointer[Snapshot]
	refresh chan struct{}

	initialized atomic.Bool
	running     atomic.Bool

	hmu    sync.Mutex
	health status.Health

	subMu  sync.Mutex
	subs   map[uuid.UUID]chan Snapshot
	closed bool
}

// New creates a poller with immutable config.
// The published snapshot starts empty at version 0.
func New(cfg Config, port transport.Port) (*Poller, error) {
	if port == nil {
		return nil, errors.New("poller: transport required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("poller: catalog required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("poller: interval must be >= 0")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}

	p := &Poller{
		cfg:     cfg,
		port:    port,
		log:     cfg.Logger.With().Str("device", cfg.Device).Logger(),
		rec:     rec,
		decode:  codec.Decode,
		refresh: make(chan struct{}, 1),
		subs:    make(map[uuid.UUID]chan Snapshot),
	}
	p.snap.Store(&Snapshot{values: map[uint16]codec.Value{}})
	return p, nil
}

// Initialize makes exactly one connect attempt.
// On failure the poller is Failed and Run refuses to start.
func (p *Poller) Initialize() bool {
	p.slot.Lock()
	defer p.slot.Unlock()

	if err := p.port.Connect(); err != nil {
		p.connected = false
		p.updateHealth(func(h *status.Health) {
			h.State = status.StateFailed
			h.LastErrorCode = status.ErrorCode(err)
			h.LastError = err.Error()
			h.FailingSince = time.Now()
		})
		p.log.Error().Err(err).Msg("initialization failed")
		return false
	}

	p.connected = true
	p.initialized.Store(true)
	p.setState(status.StateConnected)
	p.log.Info().Msg("connected")
	return true
}

// Snapshot returns the last published state without blocking.
func (p *Poller) Snapshot() Snapshot {
	return *p.snap.Load()
}

// Health returns a copy of the current health summary.
func (p *Poller) Health() status.Health {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	return p.health
}

// Catalog is the register model this poller reads.
func (p *Poller) Catalog() *register.Catalog { return p.cfg.Catalog }

// PollOnce performs exactly one cycle and returns what it published.
// It waits for the execution slot.
func (p *Poller) PollOnce() Snapshot {
	p.slot.Lock()
	defer p.slot.Unlock()

	if p.stopped {
		return p.Snapshot()
	}
	return p.cycleLocked()
}

// SetValue writes a display value to a writable register.
// Validation happens before any I/O. On success one refresh cycle runs
// before SetValue returns; on failure the snapshot is untouched.
func (p *Poller) SetValue(addr uint16, display float64) error {
	spec, ok := p.cfg.Catalog.Writable(addr)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotWritable, addr)
	}
	def, _ := p.cfg.Catalog.Lookup(addr)

	raw, err := codec.Encode(display, def, spec)
	if err != nil {
		return err
	}

	p.slot.Lock()
	defer p.slot.Unlock()

	if p.stopped {
		return ErrStopped
	}
	if err := p.ensureConnectedLocked(); err != nil {
		p.rec.WriteCompleted(addr, err)
		return err
	}

	if err := p.port.WriteHoldingRegister(addr, raw); err != nil {
		p.rec.WriteCompleted(addr, err)
		p.log.Warn().Err(err).Uint16("address", addr).Float64("value", display).Msg("write failed")
		return err
	}
	p.rec.WriteCompleted(addr, nil)
	p.log.Info().Uint16("address", addr).Str("name", def.Name).Float64("value", display).Uint16("raw", raw).Msg("register written")

	p.cycleLocked()
	return nil
}

func (p *Poller) ensureConnectedLocked() error {
	if p.connected {
		return nil
	}
	if err := p.port.Connect(); err != nil {
		return err
	}
	p.connected = true
	p.log.Info().Msg("reconnected")
	return nil
}

// cycleLocked reads the whole catalog in address order.
// Per-register failures become absences. The cycle is fatal only when
// the link cannot be opened or no read reached the device. An exception
// response counts as reaching it.
func (p *Poller) cycleLocked() Snapshot {
	start := time.Now()
	p.setState(status.StatePolling)

	if err := p.ensureConnectedLocked(); err != nil {
		return p.failCycleLocked(start, err)
	}

	defs := p.cfg.Catalog.All()
	values := make(map[uint16]codec.Value, len(defs))

	var (
		reached int
		lastErr error
	)
	for _, def := range defs {
		regs, err := p.port.ReadHoldingRegisters(def.Address, def.Words)
		if err != nil {
			var de *transport.DeviceError
			if errors.As(err, &de) {
				reached++
			}
			lastErr = err
			p.rec.ReadFailed(def.Address)
			p.log.Debug().Err(err).Uint16("address", def.Address).Msg("read failed")
			continue
		}
		reached++

		v, err := p.safeDecode(regs, def)
		if err != nil {
			if !errors.Is(err, codec.ErrNoValue) {
				p.log.Debug().Err(err).Uint16("address", def.Address).Msg("decode failed")
			}
			continue
		}
		values[def.Address] = v
	}

	if reached == 0 && len(defs) > 0 {
		return p.failCycleLocked(start, lastErr)
	}

	snap := p.publish(values, true)

	p.updateHealth(func(h *status.Health) {
		if h.ConsecutiveFailures > 0 {
			p.log.Info().Int("failures", h.ConsecutiveFailures).Msg("device recovered")
		}
		h.State = status.StateIdle
		h.ConsecutiveFailures = 0
		h.LastErrorCode = 0
		h.LastError = ""
		h.LastSuccess = snap.At
		h.FailingSince = time.Time{}
	})
	p.rec.CycleCompleted(true, time.Since(start))
	p.log.Debug().Uint64("version", snap.Version).Int("values", snap.Len()).Int("absent", len(defs)-snap.Len()).Msg("cycle complete")
	return snap
}

// failCycleLocked republishes the previous values as stale and drops
// the link so the next cycle reconnects.
func (p *Poller) failCycleLocked(start time.Time, err error) Snapshot {
	if err == nil {
		err = errors.New("poller: no register could be read")
	}
	if p.connected {
		_ = p.port.Disconnect()
		p.connected = false
	}

	snap := p.publish(p.snap.Load().values, false)

	p.updateHealth(func(h *status.Health) {
		h.ConsecutiveFailures++
		h.LastErrorCode = status.ErrorCode(err)
		h.LastError = err.Error()
		if h.FailingSince.IsZero() {
			h.FailingSince = start
		}
		if h.ConsecutiveFailures >= p.cfg.FailureThreshold {
			if h.State != status.StateFailed {
				p.log.Error().Err(err).Int("failures", h.ConsecutiveFailures).Msg("device failed")
			}
			h.State = status.StateFailed
		} else {
			h.State = status.StateIdle
		}
	})
	p.rec.CycleCompleted(false, time.Since(start))
	p.log.Warn().Err(err).Uint64("version", snap.Version).Msg("cycle failed")
	return snap
}

func (p *Poller) publish(values map[uint16]codec.Value, ok bool) Snapshot {
	prev := p.snap.Load()
	s := &Snapshot{
		Version:             prev.Version + 1,
		At:                  time.Now(),
		LastUpdateSucceeded: ok,
		values:              values,
	}
	p.snap.Store(s)
	p.notify(*s)
	return *s
}

func (p *Poller) safeDecode(regs []uint16, def register.Definition) (v codec.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &codec.DecodeError{Address: def.Address, Type: def.Type, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return p.decode(regs, def)
}

func (p *Poller) setState(s status.State) {
	p.updateHealth(func(h *status.Health) { h.State = s })
}

func (p *Poller) updateHealth(fn func(h *status.Health)) {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	fn(&p.health)
}
