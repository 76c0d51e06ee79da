// internal/transport/port.go
package transport

import (
	"errors"
	"fmt"
)

// Port is the register I/O the poller depends on.
// Implementations serialize their own operations.
type Port interface {
	Connect() error
	ReadHoldingRegisters(addr, count uint16) ([]uint16, error)
	WriteHoldingRegister(addr, value uint16) error
	Disconnect() error
}

// Kind selects the link type. It is fixed at construction.
type Kind string

const (
	KindTCP Kind = "tcp"
	KindRTU Kind = "rtu"
)

// ErrNotConnected is returned by I/O on a port that has no open link.
var ErrNotConnected = errors.New("transport: not connected")

// ConnectionError means the link could not be established.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport: connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError is a failed single read or write.
type TransportError struct {
	Op      string
	Address uint16
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s %d: %v", e.Op, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DeviceError is a Modbus exception response.
type DeviceError struct {
	Function  uint8
	Exception uint8
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d", e.Function, e.Exception)
}

// Code exposes the exception code for status reporting.
func (e *DeviceError) Code() uint16 { return uint16(e.Exception) }
