// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works against MinIO and other S3-compatible object stores (Ceph,
// SeaweedFS, Garage) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "images", "signatures/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	db, err := sigsearch.Open(ctx, sigsearch.Remote(store), "bitdesc.json",
//	    sigsearch.WithLayout(signature.VectorLabelPath(0)))
package minio
