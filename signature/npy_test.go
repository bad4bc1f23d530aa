package signature

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawNPY assembles a version 1.0 file around an arbitrary header and body.
func rawNPY(descr string, fortran bool, shape string, body []byte) []byte {
	order := "False"
	if fortran {
		order = "True"
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': %s, 'shape': %s, }", descr, order, shape)
	if pad := (10 + len(header) + 1) % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := append([]byte{}, npyMagic...)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	return append(buf, body...)
}

func TestEncodeDecodeNPY(t *testing.T) {
	vecs := [][]float64{{0.5, 1, 2}, {-3, 4.25, 0}}
	data, err := EncodeNPY(vecs)
	require.NoError(t, err)
	assert.Equal(t, "\x93NUMPY", string(data[:6]))

	hlen := int(binary.LittleEndian.Uint16(data[8:10]))
	assert.Zero(t, (10+hlen)%64)

	s, err := Decode(data, FormatNPY, VectorOnly(0))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Dim())
	assert.Equal(t, vecs[0], s.Vector(0))
	assert.Equal(t, vecs[1], s.Vector(1))
	assert.Empty(t, s.Path(0))
}

func TestEncodeNPYRejectsRagged(t *testing.T) {
	_, err := EncodeNPY([][]float64{{1, 2}, {3}})
	require.Error(t, err)
}

func TestDecodeNPYDTypes(t *testing.T) {
	f4be := binary.BigEndian.AppendUint32(nil, math.Float32bits(1.5))
	f4be = binary.BigEndian.AppendUint32(f4be, math.Float32bits(-2))

	neg := int32(-7)
	i4 := binary.LittleEndian.AppendUint32(nil, uint32(neg))
	i4 = binary.LittleEndian.AppendUint32(i4, 9)

	tests := []struct {
		name  string
		descr string
		body  []byte
		want  []float64
	}{
		{"float32 big endian", ">f4", f4be, []float64{1.5, -2}},
		{"int32", "<i4", i4, []float64{-7, 9}},
		{"uint8", "|u1", []byte{3, 250}, []float64{3, 250}},
		{"int8", "|i1", []byte{0xff, 1}, []float64{-1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := rawNPY(tt.descr, false, "(1, 2)", tt.body)
			s, err := Decode(data, FormatNPY, VectorOnly(2))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Vector(0))
		})
	}
}

func TestDecodeNPYFortranOrder(t *testing.T) {
	var body []byte
	for _, v := range []float64{1, 4, 2, 5, 3, 6} {
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(v))
	}
	s, err := Decode(rawNPY("<f8", true, "(2, 3)", body), FormatNPY, VectorOnly(0))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Vector(0))
	assert.Equal(t, []float64{4, 5, 6}, s.Vector(1))
}

func TestDecodeNPYErrors(t *testing.T) {
	f8 := binary.LittleEndian.AppendUint64(nil, math.Float64bits(1))

	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", []byte("not an npy file at all")},
		{"object array", rawNPY("|O", false, "(1, 2)", nil)},
		{"complex dtype", rawNPY("<c16", false, "(1, 1)", make([]byte, 16))},
		{"one dimensional", rawNPY("<f8", false, "(1,)", f8)},
		{"three dimensional", rawNPY("<f8", false, "(1, 1, 1)", f8)},
		{"truncated body", rawNPY("<f8", false, "(2, 2)", f8)},
		{"shape overflows size", rawNPY("<f8", false, "(2305843009213693952, 8)", f8)},
		{"huge row count", rawNPY("<f8", false, "(9223372036854775807, 1)", f8)},
		{"zero width rows", rawNPY("<f8", false, "(2305843009213693952, 0)", nil)},
		{"nan value", rawNPY("<f8", false, "(1, 1)", binary.LittleEndian.AppendUint64(nil, math.Float64bits(math.NaN())))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, FormatNPY, VectorOnly(0))
			var le *ErrLoad
			require.ErrorAs(t, err, &le)
		})
	}
}

func TestDecodeNPYEmpty(t *testing.T) {
	s, err := Decode(rawNPY("<f8", false, "(0,)", nil), FormatNPY, VectorOnly(0))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s, err = Decode(rawNPY("<f8", false, "(0, 4)", nil), FormatNPY, VectorOnly(4))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 4, s.Dim())

	s, err = Decode(nil, FormatNPY, VectorOnly(0))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}
