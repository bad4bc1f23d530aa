package signature

import (
	"context"

	"github.com/hupe1980/sigsearch/blobstore"
	"github.com/hupe1980/sigsearch/codec"
)

// DefaultBlobName is the blob loaded when no name is configured.
const DefaultBlobName = "signatures.npy"

// LoadOptions controls how a persisted signature array is decoded.
type LoadOptions struct {
	// Format overrides detection from the blob name.
	Format Format
	// Compression overrides detection from the blob name. Only consulted
	// when Format is set explicitly.
	Compression Compression
	// Codec decodes JSON sources. Defaults to codec.Default.
	Codec codec.Codec
}

// WithFormat fixes the source format and compression instead of inferring
// them from the blob name.
func WithFormat(f Format, c Compression) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.Format = f
		o.Compression = c
	}
}

// WithCodec sets the JSON codec.
func WithCodec(c codec.Codec) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.Codec = c
	}
}

func loadOptions(optFns []func(o *LoadOptions)) LoadOptions {
	opts := LoadOptions{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	return opts
}

// Load reads the blob name from store and decodes it according to layout.
// Any failure is reported as an *ErrLoad carrying the blob name.
func Load(ctx context.Context, store blobstore.BlobStore, name string, layout Layout, optFns ...func(o *LoadOptions)) (*Store, error) {
	if name == "" {
		name = DefaultBlobName
	}
	s, err := load(ctx, store, name, layout, loadOptions(optFns))
	if err != nil {
		return nil, withSource(err, name)
	}
	return s, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, layout Layout, opts LoadOptions) (*Store, error) {
	format, comp := opts.Format, opts.Compression
	if format == FormatAuto {
		var err error
		if format, comp, err = DetectFormat(name); err != nil {
			return nil, loadErr(-1, err, "unknown format")
		}
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, loadErr(-1, err, "open")
	}
	// Mapped bytes stay valid until Close; build copies everything it keeps.
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, loadErr(-1, err, "read")
	}
	if data, err = decompress(data, comp); err != nil {
		return nil, err
	}

	t, err := decodeTable(data, format, opts.Codec)
	if err != nil {
		return nil, err
	}
	return build(t, layout)
}
