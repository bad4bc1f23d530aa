// Package retrieval ranks the records of a signature store against a query.
//
// Search is an exact linear scan. The store is split into contiguous chunks
// that are scored concurrently; each chunk keeps a bounded queue of its best
// k candidates and the queues are merged by (score, record id). Results are
// therefore identical to a sequential scan for any parallelism or chunk size:
// ascending score, ties in store insertion order.
//
// # Usage
//
//	e := retrieval.New(store, retrieval.WithParallelism(4))
//	res, err := e.Search(ctx, retrieval.Query{
//	    Vector: query,
//	    Metric: distance.Euclidean,
//	    K:      10,
//	})
//
// k larger than the number of candidates returns every candidate; an empty
// store returns an empty Result. k < 1 fails with ErrInvalidK, and a
// comparison failure aborts the query with an *Error naming the lowest
// failing record.
package retrieval
