// internal/poller/snapshot.go
package poller

import (
	"sort"
	"time"

	"github.com/tamzrod/apstorage-modbus/internal/codec"
	"github.com/tamzrod/apstorage-modbus/internal/register"
)

// Snapshot is the state published by one cycle.
// The value map is never mutated after publish; copies share it.
type Snapshot struct {
	Version             uint64
	At                  time.Time
	LastUpdateSucceeded bool

	values map[uint16]codec.Value
}

// Value returns the decoded reading for addr. ok is false when the
// register was absent in the cycle that produced the snapshot.
func (s Snapshot) Value(addr uint16) (codec.Value, bool) {
	v, ok := s.values[addr]
	return v, ok
}

func (s Snapshot) Len() int { return len(s.values) }

// Addresses lists present registers in ascending order.
func (s Snapshot) Addresses() []uint16 {
	out := make([]uint16, 0, len(s.values))
	for a := range s.values {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Values lists present readings in ascending address order.
func (s Snapshot) Values() []codec.Value {
	addrs := s.Addresses()
	out := make([]codec.Value, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, s.values[a])
	}
	return out
}

// DeviceInfo identifies the unit from its string registers.
type DeviceInfo struct {
	Manufacturer string
	Model        string
	SerialNumber string
	Version      string
}

const (
	defaultManufacturer = "APstorage"
	defaultModel        = "Battery Management System"
)

func (s Snapshot) DeviceInfo() DeviceInfo {
	info := DeviceInfo{
		Manufacturer: defaultManufacturer,
		Model:        defaultModel,
	}
	if v, ok := s.values[register.AddrManufacturer]; ok && v.Text != "" {
		info.Manufacturer = v.Text
	}
	if v, ok := s.values[register.AddrModel]; ok && v.Text != "" {
		info.Model = v.Text
	}
	if v, ok := s.values[register.AddrSerialNumber]; ok {
		info.SerialNumber = v.Text
	}
	if v, ok := s.values[register.AddrVersion]; ok {
		info.Version = v.Text
	}
	return info
}

// Alarms expands every bitfield with an alarm map into the names of its
// set bits. Bitfields with no active alarm map to nil; absent
// bitfields are omitted.
func (s Snapshot) Alarms(c *register.Catalog) map[uint16][]string {
	out := make(map[uint16][]string)
	for _, d := range c.All() {
		if d.Type != register.Bitfield32 {
			continue
		}
		m, ok := c.AlarmBits(d.Address)
		if !ok {
			continue
		}
		v, ok := s.values[d.Address]
		if !ok {
			continue
		}
		out[d.Address] = codec.ActiveAlarms(v.Bits(), m)
	}
	return out
}
