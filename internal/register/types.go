// internal/register/types.go
package register

import "fmt"

// ValueType is the closed set of register encodings the device uses.
type ValueType uint8

const (
	Uint16 ValueType = iota + 1
	Int16
	Uint32
	Enum16
	Bitfield32
	String
)

func (t ValueType) String() string {
	switch t {
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Uint32:
		return "uint32"
	case Enum16:
		return "enum16"
	case Bitfield32:
		return "bitfield32"
	case String:
		return "string"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// Numeric reports whether the scale factor applies to decoded values.
func (t ValueType) Numeric() bool {
	return t == Uint16 || t == Int16 || t == Uint32
}

// FixedWords returns the word count the type occupies, or 0 when the
// width is declared per register (strings).
func (t ValueType) FixedWords() uint16 {
	switch t {
	case Uint16, Int16, Enum16:
		return 1
	case Uint32, Bitfield32:
		return 2
	default:
		return 0
	}
}

// DeviceClass is a descriptive category tag. It never affects decoding.
type DeviceClass string

const (
	ClassNone        DeviceClass = ""
	ClassVoltage     DeviceClass = "voltage"
	ClassCurrent     DeviceClass = "current"
	ClassPower       DeviceClass = "power"
	ClassEnergy      DeviceClass = "energy"
	ClassTemperature DeviceClass = "temperature"
	ClassBattery     DeviceClass = "battery"
)

// Definition describes one holding register (or run of registers).
type Definition struct {
	Address uint16
	Name    string
	Words   uint16
	Type    ValueType
	Scale   float64
	Unit    string
	Class   DeviceClass

	// Diagnostic marks identity and housekeeping registers that consumers
	// usually hide.
	Diagnostic bool
}

// InputMode hints how a writable value is entered.
type InputMode string

const (
	ModeBox    InputMode = "box"
	ModeSlider InputMode = "slider"
)

// WritableSpec bounds a writable register in display units (post-scale).
type WritableSpec struct {
	Min  float64
	Max  float64
	Step float64
	Mode InputMode
}

// AlarmBitMap maps bit index (0..31) to a stable alarm name.
// Missing indices mean "no defined alarm".
type AlarmBitMap map[uint8]string
