// internal/codec/value.go
package codec

import (
	"fmt"
	"strconv"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

// Value is one decoded register reading from one poll cycle.
type Value struct {
	Address uint16
	Name    string
	Unit    string
	Type    register.ValueType

	// Raw is the integer after sign conversion and word joining, before scaling.
	// Unused for strings.
	Raw int64

	// Number is the scaled reading for uint16, int16 and uint32.
	Number float64

	// Text holds the enum label or the decoded string.
	Text string
}

// Interface returns the reading as float64, string or uint32 (bitfields).
func (v Value) Interface() any {
	switch v.Type {
	case register.Enum16, register.String:
		return v.Text
	case register.Bitfield32:
		return v.Bits()
	default:
		return v.Number
	}
}

// Bits returns the value as a 32-bit field for alarm expansion.
func (v Value) Bits() uint32 {
	return uint32(v.Raw)
}

// String formats bitfields as hex and numbers in their shortest form.
func (v Value) String() string {
	switch v.Type {
	case register.Enum16, register.String:
		return v.Text
	case register.Bitfield32:
		return fmt.Sprintf("0x%08X", v.Bits())
	default:
		return formatFloat(v.Number)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
