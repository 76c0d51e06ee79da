// internal/codec/encode.go
package codec

import (
	"math"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

// Encode converts a display value into the raw word for a writable register.
// Nothing is written on error.
func Encode(display float64, def register.Definition, spec register.WritableSpec) (uint16, error) {
	if math.IsNaN(display) || math.IsInf(display, 0) {
		return 0, &ValidationError{Address: def.Address, Value: display, Reason: "not a finite number"}
	}
	if display < spec.Min || display > spec.Max {
		return 0, &ValidationError{
			Address: def.Address,
			Value:   display,
			Reason:  "outside [" + formatFloat(spec.Min) + ", " + formatFloat(spec.Max) + "]",
		}
	}

	raw := display
	if def.Scale != 0 && def.Scale != 1 {
		raw = display / def.Scale
	}
	r := math.RoundToEven(raw)

	switch def.Type {
	case register.Uint16:
		if r < 0 || r > math.MaxUint16 {
			return 0, &ValidationError{Address: def.Address, Value: display, Reason: "does not fit uint16"}
		}
		return uint16(r), nil

	case register.Int16:
		if r < math.MinInt16 || r > math.MaxInt16 {
			return 0, &ValidationError{Address: def.Address, Value: display, Reason: "does not fit int16"}
		}
		return uint16(int16(r)), nil

	default:
		return 0, &ValidationError{Address: def.Address, Value: display, Reason: "type " + def.Type.String() + " is not writable"}
	}
}
