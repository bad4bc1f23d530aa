package retrieval

import (
	"runtime"

	"github.com/hupe1980/sigsearch/resource"
)

// DefaultChunkSize is the number of records one scan task scores.
const DefaultChunkSize = 4096

type options struct {
	parallelism int
	chunkSize   int
	rc          *resource.Controller
}

// Option configures an Engine.
type Option func(*options)

// WithParallelism sets how many chunks are scored concurrently.
// n <= 0 uses GOMAXPROCS; 1 scans sequentially.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithChunkSize sets the number of records per scan task.
// n <= 0 uses DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithResourceController admits every query through rc before scanning.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func defaultOptions() options {
	return options{
		parallelism: runtime.GOMAXPROCS(0),
		chunkSize:   DefaultChunkSize,
	}
}
