// internal/codec/encode_test.go
package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

func TestEncode_Scaled(t *testing.T) {
	c := register.Default()
	d, _ := c.Lookup(register.AddrSoCReserveMax)
	ws, _ := c.Writable(register.AddrSoCReserveMax)

	raw, err := Encode(85.6, d, ws)
	require.NoError(t, err)
	assert.Equal(t, uint16(856), raw)
}

func TestEncode_NegativeInt16(t *testing.T) {
	c := register.Default()
	d, _ := c.Lookup(register.AddrSetPower)
	ws, _ := c.Writable(register.AddrSetPower)

	raw, err := Encode(-2500, d, ws)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xF63C), raw)
}

func TestEncode_RejectsOutOfRange(t *testing.T) {
	c := register.Default()
	d, _ := c.Lookup(register.AddrDeviceAddress)
	ws, _ := c.Writable(register.AddrDeviceAddress)

	for _, v := range []float64{0, 248, -1, math.NaN(), math.Inf(1)} {
		_, err := Encode(v, d, ws)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "value %v", v)
		assert.Equal(t, register.AddrDeviceAddress, ve.Address)
	}
}

func TestEncode_RejectsWordOverflow(t *testing.T) {
	d := register.Definition{Address: 1, Name: "x", Words: 1, Type: register.Int16, Scale: 1}
	ws := register.WritableSpec{Min: -100000, Max: 100000}

	_, err := Encode(40000, d, ws)
	assert.Error(t, err)

	d.Type = register.Uint16
	_, err = Encode(-1, d, ws)
	assert.Error(t, err)
	_, err = Encode(65536, d, ws)
	assert.Error(t, err)
}

func TestEncode_RejectsNonWritableType(t *testing.T) {
	d := register.Definition{Address: 1, Name: "x", Words: 2, Type: register.Uint32, Scale: 1}
	_, err := Encode(1, d, register.WritableSpec{Min: 0, Max: 10})
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	c := register.Default()

	rapid.Check(t, func(t *rapid.T) {
		addrs := c.WritableAddresses()
		addr := rapid.SampledFrom(addrs).Draw(t, "addr")
		d, _ := c.Lookup(addr)
		ws, _ := c.Writable(addr)

		v := rapid.Float64Range(ws.Min, ws.Max).Draw(t, "value")

		raw, err := Encode(v, d, ws)
		if err != nil {
			t.Fatalf("encode %v: %v", v, err)
		}
		got, err := Decode([]uint16{raw}, d)
		if err != nil {
			t.Fatalf("decode %d: %v", raw, err)
		}

		unit := d.Scale
		if unit == 0 {
			unit = 1
		}
		if math.Abs(got.Number-v) > unit+1e-9 {
			t.Fatalf("addr=%d value=%v raw=%d decoded=%v", addr, v, raw, got.Number)
		}
	})
}
