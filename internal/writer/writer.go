// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tamzrod/apstorage-modbus/internal/poller"
)

type multi struct {
	writers []Writer
}

// Multi fans one snapshot out to every writer. All writers are tried;
// failures are joined into one error.
func Multi(ws ...Writer) Writer {
	out := make([]Writer, 0, len(ws))
	for _, w := range ws {
		if w != nil {
			out = append(out, w)
		}
	}
	return &multi{writers: out}
}

func (m *multi) Write(snap poller.Snapshot) error {
	var errs []string
	for _, w := range m.writers {
		if err := w.Write(snap); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Deliver writes every snapshot received on ch until ctx is done or ch
// is closed. Write errors are logged, never fatal.
//
// The caller owns the subscription so that no cycle is missed between
// subscribing and starting delivery.
func Deliver(ctx context.Context, ch <-chan poller.Snapshot, w Writer, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := w.Write(snap); err != nil {
				log.Warn().Err(err).Uint64("version", snap.Version).Msg("writer error")
			}
		}
	}
}
