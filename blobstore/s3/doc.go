// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "signatures/"
//	    o.Region = "eu-west-1"
//	})
//
//	db, err := sigsearch.Open(ctx, sigsearch.Remote(store), "glcm.npy",
//	    sigsearch.WithLayout(signature.VectorOnly(0)))
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large signature files
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
