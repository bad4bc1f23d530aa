package sigsearch

import (
	"github.com/hupe1980/sigsearch/codec"
	"github.com/hupe1980/sigsearch/resource"
	"github.com/hupe1980/sigsearch/retrieval"
	"github.com/hupe1980/sigsearch/signature"
)

type options struct {
	blobName         string
	layout           signature.Layout
	format           signature.Format
	compression      signature.Compression
	codec            codec.Codec
	parallelism      int
	chunkSize        int
	resource         *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Open and New.
type Option func(*options)

func defaultOptions() options {
	return options{
		blobName:         signature.DefaultBlobName,
		layout:           signature.VectorOnly(0),
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// WithBlobName sets the blob loaded from a Local or Remote source.
// Defaults to signature.DefaultBlobName.
func WithBlobName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.blobName = name
		}
	}
}

// WithLayout configures how persisted rows map onto records.
// Defaults to signature.VectorOnly(0).
func WithLayout(layout signature.Layout) Option {
	return func(o *options) {
		o.layout = layout
	}
}

// WithFormat fixes the blob format and compression instead of detecting them
// from the blob name.
func WithFormat(f signature.Format, c signature.Compression) Option {
	return func(o *options) {
		o.format = f
		o.compression = c
	}
}

// WithCodec configures the codec used for decoding JSON signature rows.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithParallelism sets how many store chunks a search scores concurrently.
// n <= 0 uses GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithChunkSize sets the number of records per scan task.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithResourceController shares rc for query admission and store memory
// accounting. Several DBs may use the same controller.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithResourceLimits creates a private controller from cfg.
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.resource = resource.NewController(cfg)
	}
}

// WithMetricsCollector sets a custom metrics collector.
//
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a custom logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func (o options) engineOptions() []retrieval.Option {
	opts := []retrieval.Option{retrieval.WithResourceController(o.resource)}
	if o.parallelism > 0 {
		opts = append(opts, retrieval.WithParallelism(o.parallelism))
	}
	if o.chunkSize > 0 {
		opts = append(opts, retrieval.WithChunkSize(o.chunkSize))
	}
	return opts
}

func (o options) loadOptions() []func(*signature.LoadOptions) {
	opts := []func(*signature.LoadOptions){signature.WithCodec(o.codec)}
	if o.format != signature.FormatAuto {
		opts = append(opts, signature.WithFormat(o.format, o.compression))
	}
	return opts
}
