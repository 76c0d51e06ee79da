// internal/codec/errors.go
package codec

import (
	"errors"
	"fmt"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

// ErrNoValue marks an absent reading: too few words, or an empty string.
// It is not a failure of the cycle.
var ErrNoValue = errors.New("codec: no value")

// DecodeError reports a raw payload that cannot be interpreted.
type DecodeError struct {
	Address uint16
	Type    register.ValueType
	Reason  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %d (%s): %s", e.Address, e.Type, e.Reason)
}

// ValidationError rejects a write before any I/O happens.
type ValidationError struct {
	Address uint16
	Value   float64
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("codec: register %d value %v: %s", e.Address, e.Value, e.Reason)
}
