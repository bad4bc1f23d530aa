// Package signature holds image signatures in memory and loads them from
// persisted arrays.
//
// A Store is immutable once built. Vectors live in one contiguous row-major
// arena; each record also carries an optional image path and label. Record
// IDs are 0-based ordinals in insertion (file) order.
//
// # Sources
//
// Load reads a blob from any blobstore.BlobStore and decodes it according to
// a Layout:
//
//   - .npy: 2-D NumPy arrays (float32/float64/integer dtypes, either byte order, C or Fortran order)
//   - .json: an array of rows whose cells are numbers or strings
//   - .csv: header-less comma-separated rows
//
// A trailing .zst or .lz4 suffix adds zstd or lz4 framing. LoadSQL reads the
// same row shape from a database/sql query.
//
// # Layouts
//
// Plain signature arrays use VectorOnly; tuple stores that append a label and
// an image path to every vector use VectorLabelPath:
//
//	s, err := signature.Load(ctx, store, "signatures.npy", signature.VectorOnly(0))
//	s, err := signature.Load(ctx, store, "glcm.json", signature.VectorLabelPath(6))
//
// Malformed input is reported as *ErrLoad with the failing row when known.
package signature
