package sigsearch

import (
	"context"
	"iter"

	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/retrieval"
)

// DefaultK is the result count used when K is not set.
const DefaultK = 10

// Search creates a new fluent search builder for the given query vector.
// The metric defaults to Euclidean and k to DefaultK.
//
// Example:
//
//	results, err := db.Search(query).
//	    Metric(distance.Manhattan).
//	    K(5).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for result, err := range db.Search(query).K(100).Stream(ctx) {
//	    if err != nil { break }
//	    if result.Score > threshold { break }
//	    process(result)
//	}
func (db *DB) Search(query []float64) *SearchBuilder {
	return &SearchBuilder{
		db: db,
		q: retrieval.Query{
			Vector: query,
			Metric: distance.Euclidean,
			K:      DefaultK,
		},
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	db  *DB
	q   retrieval.Query
	err error
}

// Metric sets the distance metric.
func (sb *SearchBuilder) Metric(m distance.Metric) *SearchBuilder {
	sb.q.Metric = m
	return sb
}

// MetricName sets the distance metric by name or alias ("l1", "cityblock",
// "euclidienne", ...). An unknown name fails the search.
func (sb *SearchBuilder) MetricName(name string) *SearchBuilder {
	m, err := distance.ParseMetric(name)
	if err != nil {
		sb.err = err
		return sb
	}
	sb.q.Metric = m
	return sb
}

// K sets the number of results to return.
func (sb *SearchBuilder) K(k int) *SearchBuilder {
	sb.q.K = k
	return sb
}

// Labels restricts the search to records carrying one of labels.
func (sb *SearchBuilder) Labels(labels ...string) *SearchBuilder {
	sb.q.Labels = labels
	return sb
}

// Query returns the query the builder would run.
func (sb *SearchBuilder) Query() retrieval.Query {
	return sb.q
}

// Execute runs the search and returns the results.
func (sb *SearchBuilder) Execute(ctx context.Context) (retrieval.Result, error) {
	if sb.err != nil {
		return nil, translateError(sb.err)
	}
	return sb.db.Query(ctx, sb.q)
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) retrieval.Result {
	results, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return results
}

// Stream returns an iterator over search results.
// Results are yielded in rank order; a failed search yields a single error.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[retrieval.ScoredResult, error] {
	return func(yield func(retrieval.ScoredResult, error) bool) {
		results, err := sb.Execute(ctx)
		if err != nil {
			yield(retrieval.ScoredResult{}, err)
			return
		}
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// First returns only the nearest result, or ErrNotFound if none found.
func (sb *SearchBuilder) First(ctx context.Context) (retrieval.ScoredResult, error) {
	sb.q.K = 1
	results, err := sb.Execute(ctx)
	if err != nil {
		return retrieval.ScoredResult{}, err
	}
	if len(results) == 0 {
		return retrieval.ScoredResult{}, ErrNotFound
	}
	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}
