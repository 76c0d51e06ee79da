// internal/poller/types.go
package poller

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

const (
	// DefaultInterval is the poll period when none is configured.
	DefaultInterval = 30 * time.Second

	// DefaultFailureThreshold is the number of consecutive fatal cycles
	// after which the poller reports StateFailed.
	DefaultFailureThreshold = 3
)

var (
	ErrNotWritable    = errors.New("poller: register not writable")
	ErrNotInitialized = errors.New("poller: not initialized")
	ErrAlreadyRunning = errors.New("poller: already running")
	ErrStopped        = errors.New("poller: stopped")
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Device   string
	Interval time.Duration
	Catalog  *register.Catalog

	FailureThreshold int

	Logger zerolog.Logger

	// Recorder is optional.
	Recorder Recorder
}

// Recorder observes cycle outcomes. Calls happen under the execution
// slot and must not block.
type Recorder interface {
	CycleCompleted(ok bool, d time.Duration)
	ReadFailed(addr uint16)
	WriteCompleted(addr uint16, err error)
}

type nopRecorder struct{}

func (nopRecorder) CycleCompleted(bool, time.Duration) {}
func (nopRecorder) ReadFailed(uint16)                   {}
func (nopRecorder) WriteCompleted(uint16, error)        {}
