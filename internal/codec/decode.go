// internal/codec/decode.go
package codec

import (
	"fmt"
	"math"
	"strings"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

// Decode converts raw holding register words into a Value.
// Too few words yields ErrNoValue.
func Decode(raw []uint16, def register.Definition) (Value, error) {
	if def.Words == 0 || len(raw) < int(def.Words) {
		return Value{}, ErrNoValue
	}

	v := Value{
		Address: def.Address,
		Name:    def.Name,
		Unit:    def.Unit,
		Type:    def.Type,
	}

	switch def.Type {
	case register.Uint16:
		v.Raw = int64(raw[0])
		v.Number = scaled(v.Raw, def.Scale)

	case register.Int16:
		v.Raw = int64(int16(raw[0]))
		v.Number = scaled(v.Raw, def.Scale)

	case register.Uint32:
		v.Raw = int64(joinWords(raw[0], raw[1]))
		v.Number = scaled(v.Raw, def.Scale)

	case register.Enum16:
		v.Raw = int64(raw[0])
		v.Text = enumLabel(raw[0])

	case register.Bitfield32:
		v.Raw = int64(joinWords(raw[0], raw[1]))
		v.Number = float64(v.Raw)

	case register.String:
		s := unpackString(raw[:def.Words])
		if s == "" {
			return Value{}, ErrNoValue
		}
		v.Text = s

	default:
		return Value{}, &DecodeError{Address: def.Address, Type: def.Type, Reason: "unsupported value type"}
	}

	return v, nil
}

// joinWords combines two registers, first word high.
func joinWords(hi, lo uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}

// scaled applies the scale factor after sign conversion and rounds to the
// precision the scale implies. A zero scale is treated as unscaled.
func scaled(raw int64, scale float64) float64 {
	if scale == 0 || scale == 1 {
		return float64(raw)
	}
	p := math.Pow(10, float64(Decimals(scale)))
	return math.Round(float64(raw)*scale*p) / p
}

// Decimals is the number of fractional digits a scale factor produces:
// 0 for 1 or more, 1 for 0.1, 2 for 0.01 and 0.05.
func Decimals(scale float64) int {
	scale = math.Abs(scale)
	if scale == 0 || scale >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(scale) - 1e-9))
}

func enumLabel(raw uint16) string {
	if label, ok := register.ChargeStatusLabel(raw); ok {
		return label
	}
	return fmt.Sprintf("UNKNOWN(%d)", raw)
}

// unpackString reads two Latin-1 characters per register, high byte first,
// and trims trailing NUL and whitespace.
func unpackString(regs []uint16) string {
	runes := make([]rune, 0, len(regs)*2)
	for _, r := range regs {
		runes = append(runes, rune(byte(r>>8)), rune(byte(r)))
	}
	return strings.TrimRight(string(runes), "\x00 \t\r\n")
}
