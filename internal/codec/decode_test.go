// internal/codec/decode_test.go
package codec

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tamzrod/apstorage-modbus/internal/register"
)

func def(t register.ValueType, words uint16, scale float64) register.Definition {
	return register.Definition{Address: 40000, Name: "test", Words: words, Type: t, Scale: scale}
}

func TestDecode_Uint16Scaled(t *testing.T) {
	v, err := Decode([]uint16{1234}, def(register.Uint16, 1, 0.1))
	require.NoError(t, err)
	assert.InDelta(t, 123.4, v.Number, 1e-9)
	assert.Equal(t, int64(1234), v.Raw)
}

func TestDecode_Int16Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := rapid.Uint16().Draw(t, "raw")

		v, err := Decode([]uint16{r}, def(register.Int16, 1, 1))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		want := int64(r)
		if r > 32767 {
			want = int64(r) - 65536
		}
		if v.Raw != want || v.Number != float64(want) {
			t.Fatalf("raw=%d got=%v/%v want=%d", r, v.Raw, v.Number, want)
		}
	})
}

func TestDecode_Int16ScaleAfterSign(t *testing.T) {
	v, err := Decode([]uint16{0xFFF6}, def(register.Int16, 1, 0.1)) // -10
	require.NoError(t, err)
	assert.InDelta(t, -1.0, v.Number, 1e-9)
}

func TestDecode_Uint32BigEndianWords(t *testing.T) {
	v, err := Decode([]uint16{0x0001, 0x0000}, def(register.Uint32, 2, 0.01))
	require.NoError(t, err)
	assert.InDelta(t, 655.36, v.Number, 1e-9)

	v, err = Decode([]uint16{0xFFFF, 0xFFFF}, def(register.Uint32, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, float64(4294967295), v.Number)
}

func TestDecode_Enum16(t *testing.T) {
	v, err := Decode([]uint16{4}, def(register.Enum16, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "CHARGING", v.Text)
	assert.Equal(t, "CHARGING", v.Interface())

	v, err = Decode([]uint16{99}, def(register.Enum16, 1, 0.1))
	require.NoError(t, err)
	assert.Contains(t, v.Text, "UNKNOWN")
	assert.Contains(t, v.Text, "99")
}

func TestDecode_Bitfield32(t *testing.T) {
	v, err := Decode([]uint16{0x0040, 0x0005}, def(register.Bitfield32, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00400005), v.Bits())
	assert.Equal(t, "0x00400005", v.String())
	assert.Equal(t, uint32(0x00400005), v.Interface())
}

func TestDecode_String(t *testing.T) {
	// "APstorage" + NUL padding
	raw := []uint16{0x4150, 0x7374, 0x6F72, 0x6167, 0x6500, 0x0000, 0x0000, 0x0000}
	v, err := Decode(raw, def(register.String, 8, 1))
	require.NoError(t, err)
	assert.Equal(t, "APstorage", v.Text)

	// trailing spaces are trimmed, latin-1 bytes map to their code points
	v, err = Decode([]uint16{0x32B0, 0x4320, 0x2020}, def(register.String, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "2°C", v.Text)
}

func TestDecode_EmptyStringIsAbsent(t *testing.T) {
	_, err := Decode([]uint16{0, 0x2020, 0}, def(register.String, 3, 1))
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestDecode_ShortInputIsAbsent(t *testing.T) {
	cases := []struct {
		name string
		raw  []uint16
		d    register.Definition
	}{
		{"empty uint16", nil, def(register.Uint16, 1, 1)},
		{"one word uint32", []uint16{1}, def(register.Uint32, 2, 1)},
		{"short string", []uint16{0x4142}, def(register.String, 4, 1)},
		{"zero words", []uint16{1}, def(register.Uint16, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw, tc.d)
			assert.ErrorIs(t, err, ErrNoValue)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]uint16{1}, def(register.ValueType(42), 1, 1))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, uint16(40000), de.Address)
}

func TestDecode_DefaultCatalogFixture(t *testing.T) {
	c := register.Default()

	soc, _ := c.Lookup(register.AddrStateOfCharge)
	v, err := Decode([]uint16{856}, soc)
	require.NoError(t, err)
	assert.InDelta(t, 85.6, v.Number, 1e-9)
	assert.Equal(t, "%", v.Unit)
	assert.Equal(t, "85.6", v.String())
}

func TestDecode_ScaledValuesRoundToScalePrecision(t *testing.T) {
	tests := []struct {
		raw  []uint16
		d    register.Definition
		want string
	}{
		{[]uint16{856}, def(register.Uint16, 1, 0.1), "85.6"},
		{[]uint16{0xFFF9}, def(register.Int16, 1, 0.1), "-0.7"},
		{[]uint16{0x0001, 0x0003}, def(register.Uint32, 2, 0.01), "655.39"},
		{[]uint16{850}, def(register.Uint16, 1, 0.1), "85"},
	}
	for _, tc := range tests {
		v, err := Decode(tc.raw, tc.d)
		require.NoError(t, err)
		assert.Equal(t, tc.want, v.String())
	}
}

func TestDecode_DefaultCatalogScaledRegisters(t *testing.T) {
	words := []uint16{0, 1, 7, 99, 856, 1234, 0x7FFF, 0xFFF9, 0xFFFF}

	for _, d := range register.Default().All() {
		if !d.Type.Numeric() || d.Scale == 0 || d.Scale == 1 {
			continue
		}
		places := Decimals(d.Scale)

		for _, w := range words {
			raw := []uint16{w}
			if d.Words == 2 {
				raw = []uint16{w, w}
			}
			v, err := Decode(raw, d)
			require.NoError(t, err)

			want, err := strconv.ParseFloat(strconv.FormatFloat(float64(v.Raw)*d.Scale, 'f', places, 64), 64)
			require.NoError(t, err)
			assert.Equal(t, want, v.Number, "register %d raw %v", d.Address, raw)

			s := v.String()
			if i := strings.IndexByte(s, '.'); i >= 0 {
				assert.LessOrEqual(t, len(s)-i-1, places, "register %d formatted %q", d.Address, s)
			}
		}
	}
}

func TestDecimals(t *testing.T) {
	assert.Equal(t, 0, Decimals(1))
	assert.Equal(t, 0, Decimals(10))
	assert.Equal(t, 1, Decimals(0.1))
	assert.Equal(t, 2, Decimals(0.01))
	assert.Equal(t, 2, Decimals(0.05))
	assert.Equal(t, 3, Decimals(0.001))
	assert.Equal(t, 0, Decimals(0))
}
