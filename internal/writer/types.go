// internal/writer/types.go
package writer

import "github.com/tamzrod/apstorage-modbus/internal/poller"

// Writer delivers published snapshots somewhere.
// Delivery only: no polling, no state beyond what delivery needs.
type Writer interface {
	Write(snap poller.Snapshot) error
}

// Func adapts a plain function to Writer.
type Func func(snap poller.Snapshot) error

func (f Func) Write(snap poller.Snapshot) error { return f(snap) }
