// internal/codec/alarms.go
package codec

import "github.com/tamzrod/apstorage-modbus/internal/register"

// ActiveAlarms returns the names of set bits that the map defines,
// in ascending bit order. Set bits without a name are skipped.
func ActiveAlarms(bits uint32, m register.AlarmBitMap) []string {
	var out []string
	for b := uint8(0); b < 32; b++ {
		if (bits>>b)&1 == 0 {
			continue
		}
		if name, ok := m[b]; ok {
			out = append(out, name)
		}
	}
	return out
}
