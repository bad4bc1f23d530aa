package signature

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/hupe1980/sigsearch/codec"
)

func decodeJSON(c codec.Codec, data []byte) (table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return cellTable(nil), nil
	}
	var rows [][]any
	if err := c.Unmarshal(data, &rows); err != nil {
		return nil, loadErr(-1, err, "invalid json rows")
	}
	t := make(cellTable, len(rows))
	for i, row := range rows {
		cells := make([]cell, len(row))
		for j, v := range row {
			switch v := v.(type) {
			case float64:
				cells[j] = numCell(v)
			case string:
				cells[j] = textCell(v)
			default:
				return nil, loadErr(i, nil, "field %d has unsupported json type %T", j, v)
			}
		}
		t[i] = cells
	}
	return t, nil
}

func decodeCSV(data []byte) (table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.ReuseRecord = false

	var t cellTable
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, loadErr(len(t), pe.Err, "invalid csv at line %d", pe.Line)
			}
			return nil, loadErr(len(t), err, "invalid csv")
		}
		cells := make([]cell, len(rec))
		for j, f := range rec {
			cells[j] = textCell(f)
		}
		t = append(t, cells)
	}
	return t, nil
}

func decodeTable(data []byte, f Format, c codec.Codec) (table, error) {
	switch f {
	case FormatNPY:
		if len(data) == 0 {
			return cellTable(nil), nil
		}
		return decodeNPY(data)
	case FormatJSON:
		return decodeJSON(c, data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return nil, loadErr(-1, nil, "unsupported format %v", f)
	}
}

// Decode parses an uncompressed signature array in the given format.
func Decode(data []byte, f Format, layout Layout, optFns ...func(o *LoadOptions)) (*Store, error) {
	opts := loadOptions(optFns)
	if f == FormatAuto {
		return nil, loadErr(-1, nil, "decode requires an explicit format")
	}
	t, err := decodeTable(data, f, opts.Codec)
	if err != nil {
		return nil, err
	}
	return build(t, layout)
}
