package signature

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

type npyHeader struct {
	descr   string
	fortran bool
	shape   []int
}

// npyDType maps a NumPy dtype descriptor to an element reader.
type npyDType struct {
	size int
	read func(b []byte) float64
}

func parseDType(descr string) (npyDType, error) {
	if len(descr) >= 2 && descr[1] == 'O' {
		return npyDType{}, fmt.Errorf("object arrays are not supported; re-save the array with a numeric dtype")
	}
	if len(descr) < 3 {
		return npyDType{}, fmt.Errorf("malformed dtype %q", descr)
	}
	var order binary.ByteOrder
	switch descr[0] {
	case '<', '|', '=':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return npyDType{}, fmt.Errorf("malformed dtype %q", descr)
	}
	size, err := strconv.Atoi(descr[2:])
	if err != nil {
		return npyDType{}, fmt.Errorf("malformed dtype %q", descr)
	}

	switch kind := descr[1]; {
	case kind == 'f' && size == 8:
		return npyDType{8, func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }}, nil
	case kind == 'f' && size == 4:
		return npyDType{4, func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }}, nil
	case kind == 'i' && size == 1:
		return npyDType{1, func(b []byte) float64 { return float64(int8(b[0])) }}, nil
	case kind == 'i' && size == 2:
		return npyDType{2, func(b []byte) float64 { return float64(int16(order.Uint16(b))) }}, nil
	case kind == 'i' && size == 4:
		return npyDType{4, func(b []byte) float64 { return float64(int32(order.Uint32(b))) }}, nil
	case kind == 'i' && size == 8:
		return npyDType{8, func(b []byte) float64 { return float64(int64(order.Uint64(b))) }}, nil
	case kind == 'u' && size == 1:
		return npyDType{1, func(b []byte) float64 { return float64(b[0]) }}, nil
	case kind == 'u' && size == 2:
		return npyDType{2, func(b []byte) float64 { return float64(order.Uint16(b)) }}, nil
	case kind == 'u' && size == 4:
		return npyDType{4, func(b []byte) float64 { return float64(order.Uint32(b)) }}, nil
	case kind == 'u' && size == 8:
		return npyDType{8, func(b []byte) float64 { return float64(order.Uint64(b)) }}, nil
	default:
		return npyDType{}, fmt.Errorf("unsupported dtype %q", descr)
	}
}

// readNPYHeader parses the preamble and returns the header and the offset of
// the array data.
func readNPYHeader(data []byte) (npyHeader, int, error) {
	var h npyHeader
	if len(data) < 10 || !bytes.HasPrefix(data, npyMagic) {
		return h, 0, fmt.Errorf("missing npy magic")
	}
	major := data[6]
	var hlen, start int
	switch major {
	case 1:
		hlen, start = int(binary.LittleEndian.Uint16(data[8:10])), 10
	case 2, 3:
		if len(data) < 12 {
			return h, 0, fmt.Errorf("truncated npy preamble")
		}
		hlen, start = int(binary.LittleEndian.Uint32(data[8:12])), 12
	default:
		return h, 0, fmt.Errorf("unsupported npy version %d.%d", major, data[7])
	}
	if start+hlen > len(data) {
		return h, 0, fmt.Errorf("truncated npy header")
	}
	header := strings.ReplaceAll(string(data[start:start+hlen]), `"`, `'`)

	descr, ok := npyValue(header, "descr")
	if !ok {
		return h, 0, fmt.Errorf("npy header has no descr")
	}
	if strings.HasPrefix(descr, "[") {
		return h, 0, fmt.Errorf("structured dtypes are not supported")
	}
	h.descr = strings.Trim(descr, "'")

	fortran, ok := npyValue(header, "fortran_order")
	if !ok {
		return h, 0, fmt.Errorf("npy header has no fortran_order")
	}
	h.fortran = strings.HasPrefix(fortran, "True")

	shape, ok := npyValue(header, "shape")
	if !ok || !strings.HasPrefix(shape, "(") {
		return h, 0, fmt.Errorf("npy header has no shape")
	}
	end := strings.IndexByte(shape, ')')
	if end < 0 {
		return h, 0, fmt.Errorf("malformed shape %q", shape)
	}
	for _, f := range strings.Split(shape[1:end], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return h, 0, fmt.Errorf("malformed shape %q", shape[:end+1])
		}
		h.shape = append(h.shape, n)
	}
	return h, start + hlen, nil
}

// npyValue returns the raw text following 'key': in a header dict literal.
func npyValue(header, key string) (string, bool) {
	i := strings.Index(header, "'"+key+"'")
	if i < 0 {
		return "", false
	}
	rest := strings.TrimLeft(header[i+len(key)+2:], " ")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " ")
	if strings.HasPrefix(rest, "'") {
		if end := strings.IndexByte(rest[1:], '\''); end >= 0 {
			return rest[:end+2], true
		}
		return "", false
	}
	return rest, true
}

func decodeNPY(data []byte) (table, error) {
	h, off, err := readNPYHeader(data)
	if err != nil {
		return nil, loadErr(-1, err, "invalid npy file")
	}
	dt, err := parseDType(h.descr)
	if err != nil {
		return nil, loadErr(-1, err, "invalid npy file")
	}

	var rows, cols int
	switch len(h.shape) {
	case 1:
		if h.shape[0] != 0 {
			return nil, loadErr(-1, nil, "npy array is 1-D with shape (%d,); expected one row per record", h.shape[0])
		}
	case 2:
		rows, cols = h.shape[0], h.shape[1]
	default:
		return nil, loadErr(-1, nil, "npy array has %d dimensions, expected 2", len(h.shape))
	}

	body := data[off:]
	if rows > 0 && cols == 0 {
		return nil, loadErr(-1, nil, "npy shape (%d, %d) is not a signature matrix", rows, cols)
	}
	if cols > 0 && rows > len(body)/dt.size/cols {
		return nil, loadErr(-1, nil, "npy shape (%d, %d) exceeds %d data bytes", rows, cols, len(body))
	}
	need := rows * cols * dt.size
	if len(body) < need {
		return nil, loadErr(-1, nil, "npy data truncated: %d bytes, expected %d", len(body), need)
	}

	at := func(r, c int) float64 {
		i := r*cols + c
		if h.fortran {
			i = c*rows + r
		}
		return dt.read(body[i*dt.size:])
	}
	return matrixTable{rows: rows, cols: cols, at: at}, nil
}

// EncodeNPY serializes vectors as a version 1.0 little-endian float64 NPY
// array of shape (len(vectors), dim). All vectors must share one length.
func EncodeNPY(vectors [][]float64) ([]byte, error) {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has length %d, expected %d", i, len(v), dim)
		}
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", len(vectors), dim)
	// Preamble plus header is padded to a multiple of 64 and ends in '\n'.
	total := len(npyMagic) + 4 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := make([]byte, 0, len(npyMagic)+4+len(header)+len(vectors)*dim*8)
	buf = append(buf, npyMagic...)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	for _, v := range vectors {
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
		}
	}
	return buf, nil
}
