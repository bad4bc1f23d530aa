// Package sigsearch retrieves the images whose feature signatures are closest
// to a query signature.
//
// A signature store is loaded once from a persisted array and then serves
// any number of concurrent queries. Each query picks its own metric and
// result count; ranking is an exact scan ordered by ascending distance with
// ties in store order.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	db, _ := sigsearch.Open(ctx, sigsearch.Local("./data"))  // ./data/signatures.npy
//	defer db.Close()
//
// Tuple stores (vector, label, path per row):
//
//	db, _ := sigsearch.Open(ctx, sigsearch.Local("./data"),
//	    sigsearch.WithBlobName("glcm.json.zst"),
//	    sigsearch.WithLayout(signature.VectorLabelPath(6)),
//	)
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", func(o *s3.Options) { o.Prefix = "signatures/" })
//	db, _ := sigsearch.Open(ctx, sigsearch.Remote(s3Store))
//
// SQL mode:
//
//	sqlDB, _ := signature.OpenSQLite("signatures.db")
//	db, _ := sigsearch.Open(ctx, sigsearch.SQL(sqlDB, "SELECT f0, f1, f2, label, path FROM sigs ORDER BY id"),
//	    sigsearch.WithLayout(signature.VectorLabelPath(3)),
//	)
//
// # Search
//
//	results, _ := db.Search(query).Metric(distance.Manhattan).K(5).Execute(ctx)
//	for _, r := range results {
//	    fmt.Println(r.Rank, r.Path, r.Label, r.Score)
//	}
//
// # Errors
//
// Errors returned from this package can be matched with errors.As against
// *ErrDimensionMismatch, *ErrUnknownMetric, *ErrStoreLoad and *ErrOutOfRange,
// and with errors.Is against ErrInvalidArgument.
package sigsearch
