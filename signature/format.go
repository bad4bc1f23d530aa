package signature

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the serialization of a persisted signature array.
type Format uint8

const (
	// FormatAuto detects the format from the blob name.
	FormatAuto Format = iota
	// FormatNPY is a 2-D NumPy array (.npy).
	FormatNPY
	// FormatJSON is a JSON array of rows; cells are numbers or strings.
	FormatJSON
	// FormatCSV is comma-separated rows without a header.
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatNPY:
		return "npy"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat resolves a format by name ("auto", "npy", "json", "csv").
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "npy":
		return FormatNPY, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("unknown signature format %q", name)
	}
}

// Compression identifies an optional compression wrapper around the array.
type Compression uint8

const (
	CompressionNone Compression = iota
	// CompressionZSTD is a zstd frame (.zst).
	CompressionZSTD
	// CompressionLZ4 is an lz4 frame (.lz4).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// DetectFormat infers format and compression from a blob name such as
// "signatures.npy" or "glcm.json.zst".
func DetectFormat(name string) (Format, Compression, error) {
	base := strings.ToLower(path.Base(name))

	comp := CompressionNone
	switch {
	case strings.HasSuffix(base, ".zst"):
		comp = CompressionZSTD
		base = strings.TrimSuffix(base, ".zst")
	case strings.HasSuffix(base, ".lz4"):
		comp = CompressionLZ4
		base = strings.TrimSuffix(base, ".lz4")
	}

	switch path.Ext(base) {
	case ".npy":
		return FormatNPY, comp, nil
	case ".json":
		return FormatJSON, comp, nil
	case ".csv":
		return FormatCSV, comp, nil
	default:
		return FormatAuto, comp, fmt.Errorf("cannot detect signature format of %q", name)
	}
}

// Compress wraps data in the given compression frame.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %v", c)
	}
}

func decompress(data []byte, c Compression) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, loadErr(-1, err, "zstd init")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, loadErr(-1, err, "zstd decode")
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, loadErr(-1, err, "lz4 decode")
		}
		return out, nil
	default:
		return nil, loadErr(-1, nil, "unsupported compression %v", c)
	}
}
