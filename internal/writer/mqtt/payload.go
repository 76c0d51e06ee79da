// internal/writer/mqtt/payload.go
package mqtt

import (
	"strconv"
	"time"

	"github.com/tamzrod/apstorage-modbus/internal/poller"
	"github.com/tamzrod/apstorage-modbus/internal/register"
)

type valuePayload struct {
	Name       string      `json:"name"`
	Value      interface{} `json:"value"`
	Unit       string      `json:"unit,omitempty"`
	Class      string      `json:"device_class,omitempty"`
	Diagnostic bool        `json:"diagnostic,omitempty"`
}

type deviceInfoPayload struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number,omitempty"`
	Version      string `json:"sw_version,omitempty"`
}

type statePayload struct {
	Device     string                  `json:"device"`
	Version    uint64                  `json:"version"`
	Timestamp  time.Time               `json:"timestamp"`
	Available  bool                    `json:"available"`
	DeviceInfo deviceInfoPayload       `json:"device_info"`
	Values     map[string]valuePayload `json:"values"`
	Alarms     map[string][]string     `json:"alarms"`
}

type writablePayload struct {
	Address uint16  `json:"address"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Mode    string  `json:"mode"`
	Topic   string  `json:"command_topic"`
}

// buildState keys values and alarms by decimal register address.
func buildState(device string, snap poller.Snapshot, cat *register.Catalog) statePayload {
	info := snap.DeviceInfo()
	p := statePayload{
		Device:    device,
		Version:   snap.Version,
		Timestamp: snap.At.UTC(),
		Available: snap.LastUpdateSucceeded,
		DeviceInfo: deviceInfoPayload{
			Manufacturer: info.Manufacturer,
			Model:        info.Model,
			SerialNumber: info.SerialNumber,
			Version:      info.Version,
		},
		Values: make(map[string]valuePayload, snap.Len()),
		Alarms: map[string][]string{},
	}

	for _, v := range snap.Values() {
		vp := valuePayload{Name: v.Name, Value: v.Interface(), Unit: v.Unit}
		if def, ok := cat.Lookup(v.Address); ok {
			vp.Class = string(def.Class)
			vp.Diagnostic = def.Diagnostic
		}
		if v.Type == register.Bitfield32 {
			vp.Value = v.String()
		}
		p.Values[strconv.Itoa(int(v.Address))] = vp
	}

	for addr, names := range snap.Alarms(cat) {
		if names == nil {
			names = []string{}
		}
		p.Alarms[strconv.Itoa(int(addr))] = names
	}
	return p
}

func buildWritable(prefix string, cat *register.Catalog) []writablePayload {
	addrs := cat.WritableAddresses()
	out := make([]writablePayload, 0, len(addrs))
	for _, a := range addrs {
		spec, _ := cat.Writable(a)
		def, _ := cat.Lookup(a)
		out = append(out, writablePayload{
			Address: a,
			Name:    def.Name,
			Unit:    def.Unit,
			Min:     spec.Min,
			Max:     spec.Max,
			Step:    spec.Step,
			Mode:    string(spec.Mode),
			Topic:   commandTopic(prefix, a),
		})
	}
	return out
}
