package retrieval

import (
	"context"
	"iter"
	"math"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/signature"
)

// Query selects the k records closest to Vector under Metric.
type Query struct {
	Vector []float64
	Metric distance.Metric
	K      int
	// Labels restricts the scan to records carrying one of these labels.
	// Empty means every record is a candidate.
	Labels []string
}

// ScoredResult is one ranked record.
type ScoredResult struct {
	RecordID int     `json:"record_id"`
	Path     string  `json:"path,omitempty"`
	Label    string  `json:"label,omitempty"`
	Score    float64 `json:"score"`
	// Rank is the 0-based position in the result.
	Rank int `json:"rank"`
}

// Result is ordered by ascending score, ties by ascending record id.
type Result []ScoredResult

// IDs returns the record ids in rank order.
func (r Result) IDs() []int {
	ids := make([]int, len(r))
	for i, sr := range r {
		ids[i] = sr.RecordID
	}
	return ids
}

// Paths returns the record paths in rank order.
func (r Result) Paths() []string {
	paths := make([]string, len(r))
	for i, sr := range r {
		paths[i] = sr.Path
	}
	return paths
}

// Engine answers exact top-k queries against one immutable store.
// It is safe for concurrent use.
type Engine struct {
	store *signature.Store
	opts  options
}

// New creates an Engine over store. A nil store behaves as an empty one.
func New(store *signature.Store, optFns ...Option) *Engine {
	if store == nil {
		store, _ = signature.NewStore()
	}
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.parallelism <= 0 {
		opts.parallelism = defaultOptions().parallelism
	}
	if opts.chunkSize <= 0 {
		opts.chunkSize = DefaultChunkSize
	}
	return &Engine{store: store, opts: opts}
}

// Store returns the store the engine searches.
func (e *Engine) Store() *signature.Store {
	return e.store
}

// Search scores every candidate record and returns the min(K, candidates)
// best. Any failed comparison aborts the query with an *Error; no partial
// result is returned.
func (e *Engine) Search(ctx context.Context, q Query) (Result, error) {
	fn, err := q.Metric.Func()
	if err != nil {
		return nil, err
	}
	if q.K < 1 {
		return nil, ErrInvalidK
	}
	for _, v := range q.Vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrInvalidQuery
		}
	}

	var ids []uint32
	n := e.store.Len()
	if len(q.Labels) > 0 {
		ids = e.store.Select(q.Labels...).ToArray()
		n = len(ids)
	}
	if n == 0 {
		return Result{}, nil
	}

	release, err := e.opts.rc.AcquireQuery(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	top, err := e.scan(ctx, fn, q.Vector, ids, n, min(q.K, n))
	if err != nil {
		return nil, err
	}

	res := make(Result, len(top))
	for rank, c := range top {
		res[rank] = ScoredResult{
			RecordID: c.id,
			Path:     e.store.Path(c.id),
			Label:    e.store.Label(c.id),
			Score:    c.score,
			Rank:     rank,
		}
	}
	return res, nil
}

// Stream runs Search and yields the results in rank order. A failed query
// yields a single error.
func (e *Engine) Stream(ctx context.Context, q Query) iter.Seq2[ScoredResult, error] {
	return func(yield func(ScoredResult, error) bool) {
		res, err := e.Search(ctx, q)
		if err != nil {
			yield(ScoredResult{}, err)
			return
		}
		for _, r := range res {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// scan scores the n candidates in contiguous chunks. Each chunk keeps its own
// bounded queue; the union of the queues always contains the global top k,
// so sorting it by (score, id) reproduces the sequential ranking.
func (e *Engine) scan(ctx context.Context, fn distance.Func, query []float64, ids []uint32, n, k int) ([]candidate, error) {
	size := e.opts.chunkSize
	numChunks := (n + size - 1) / size

	queues := make([]*boundedQueue, numChunks)
	fails := make([]*Error, numChunks)

	// Position of the earliest failure seen so far. Chunks starting after it
	// cannot change the outcome and are skipped.
	var failedAt atomic.Int64
	failedAt.Store(math.MaxInt64)

	scanChunk := func(ctx context.Context, c int) error {
		start := c * size
		end := min(start+size, n)
		if int64(start) > failedAt.Load() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		q := newBoundedQueue(k)
		for pos := start; pos < end; pos++ {
			id := pos
			if ids != nil {
				id = int(ids[pos])
			}
			score, err := fn(e.store.Vector(id), query)
			if err != nil {
				fails[c] = &Error{RecordID: id, Err: err}
				for {
					cur := failedAt.Load()
					if int64(pos) >= cur || failedAt.CompareAndSwap(cur, int64(pos)) {
						break
					}
				}
				return nil
			}
			q.Push(candidate{id: id, score: score})
		}
		queues[c] = q
		return nil
	}

	if e.opts.parallelism == 1 || numChunks == 1 {
		for c := range numChunks {
			if err := scanChunk(ctx, c); err != nil {
				return nil, err
			}
			if fails[c] != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.parallelism)
		for c := range numChunks {
			g.Go(func() error { return scanChunk(gctx, c) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Chunks are in candidate order and candidate ids ascend, so the first
	// failing chunk holds the lowest failing id.
	for _, f := range fails {
		if f != nil {
			return nil, f
		}
	}

	total := 0
	for _, q := range queues {
		total += q.Len()
	}
	merged := make([]candidate, 0, total)
	for _, q := range queues {
		merged = append(merged, q.Items()...)
	}
	slices.SortFunc(merged, compareCandidates)
	return merged[:min(k, len(merged))], nil
}
