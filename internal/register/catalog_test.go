// internal/register/catalog_test.go
package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AscendingUniqueAddresses(t *testing.T) {
	c := Default()
	defs := c.All()
	require.NotEmpty(t, defs)

	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Address, defs[i].Address, "index %d", i)
	}
	assert.Equal(t, len(defs), c.Len())
}

func TestDefault_WritableSubsetOfCatalog(t *testing.T) {
	c := Default()

	addrs := c.WritableAddresses()
	assert.Equal(t, []uint16{AddrDeviceAddress, AddrSoCReserveMax, AddrSoCReserveMin, AddrSetPower}, addrs)

	for _, addr := range addrs {
		def, ok := c.Lookup(addr)
		require.True(t, ok, "writable %d missing from catalog", addr)
		assert.Equal(t, uint16(1), def.Words)

		ws, _ := c.Writable(addr)
		assert.LessOrEqual(t, ws.Min, ws.Max)
	}
}

func TestDefault_AlarmMapsOnBitfields(t *testing.T) {
	c := Default()

	for _, addr := range []uint16{AddrBatteryAlarms, AddrPCSAlarms} {
		def, ok := c.Lookup(addr)
		require.True(t, ok)
		assert.Equal(t, Bitfield32, def.Type)

		bits, ok := c.AlarmBits(addr)
		require.True(t, ok)
		assert.NotEmpty(t, bits)
	}

	bits, _ := c.AlarmBits(AddrBatteryAlarms)
	assert.Equal(t, "GROUND_FAULT", bits[22])
	_, defined := bits[2]
	assert.False(t, defined)
}

func TestDefault_Lookup(t *testing.T) {
	def, ok := Default().Lookup(40148)
	require.True(t, ok)
	assert.Equal(t, "Charge Energy", def.Name)
	assert.Equal(t, Uint32, def.Type)
	assert.Equal(t, uint16(2), def.Words)
	assert.Equal(t, 0.01, def.Scale)
	assert.Equal(t, ClassEnergy, def.Class)

	_, ok = Default().Lookup(40001)
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	ok := Definition{Address: 1, Name: "a", Words: 1, Type: Uint16, Scale: 1}
	bf := Definition{Address: 2, Name: "b", Words: 2, Type: Bitfield32, Scale: 1}

	cases := []struct {
		name     string
		defs     []Definition
		writable map[uint16]WritableSpec
		alarms   map[uint16]AlarmBitMap
	}{
		{"duplicate address", []Definition{ok, ok}, nil, nil},
		{"word count mismatch", []Definition{{Address: 3, Name: "c", Words: 1, Type: Uint32}}, nil, nil},
		{"empty string", []Definition{{Address: 3, Name: "c", Words: 0, Type: String}}, nil, nil},
		{"unknown type", []Definition{{Address: 3, Name: "c", Words: 1}}, nil, nil},
		{"missing name", []Definition{{Address: 3, Words: 1, Type: Uint16}}, nil, nil},
		{"writable not in catalog", []Definition{ok}, map[uint16]WritableSpec{9: {Min: 0, Max: 1}}, nil},
		{"writable min > max", []Definition{ok}, map[uint16]WritableSpec{1: {Min: 2, Max: 1}}, nil},
		{"writable bitfield", []Definition{bf}, map[uint16]WritableSpec{2: {Min: 0, Max: 1}}, nil},
		{"alarm on non-bitfield", []Definition{ok}, nil, map[uint16]AlarmBitMap{1: {0: "X"}}},
		{"alarm bit out of range", []Definition{bf}, nil, map[uint16]AlarmBitMap{2: {32: "X"}}},
		{"alarm not in catalog", []Definition{bf}, nil, map[uint16]AlarmBitMap{7: {0: "X"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.defs, tc.writable, tc.alarms)
			assert.Error(t, err)
		})
	}
}

func TestNewCatalog_SortsAndCopies(t *testing.T) {
	defs := []Definition{
		{Address: 20, Name: "b", Words: 1, Type: Int16, Scale: 1},
		{Address: 10, Name: "a", Words: 1, Type: Uint16, Scale: 1},
	}
	c, err := NewCatalog(defs, nil, nil)
	require.NoError(t, err)

	defs[0].Name = "mutated"

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, uint16(10), all[0].Address)
	assert.Equal(t, "b", all[1].Name)
}

func TestValueType_String(t *testing.T) {
	assert.Equal(t, "bitfield32", Bitfield32.String())
	assert.Equal(t, "ValueType(99)", ValueType(99).String())
	assert.True(t, Int16.Numeric())
	assert.False(t, Enum16.Numeric())
}

func TestChargeStatusLabel(t *testing.T) {
	label, ok := ChargeStatusLabel(4)
	assert.True(t, ok)
	assert.Equal(t, "CHARGING", label)

	label, ok = ChargeStatusLabel(7)
	assert.True(t, ok)
	assert.Equal(t, "TESTING", label)

	for _, raw := range []uint16{0, 8, 99} {
		label, ok = ChargeStatusLabel(raw)
		assert.False(t, ok, "raw %d", raw)
		assert.Empty(t, label, "raw %d", raw)
	}
}
