package sigsearch

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"sync/atomic"
	"time"

	"github.com/hupe1980/sigsearch/blobstore"
	"github.com/hupe1980/sigsearch/resource"
	"github.com/hupe1980/sigsearch/retrieval"
	"github.com/hupe1980/sigsearch/signature"
)

// Source locates a persisted signature store.
type Source struct {
	desc  string
	store blobstore.BlobStore
	db    *sql.DB
	query string
}

// Local reads the store blob from a directory on the local filesystem.
func Local(dir string) Source {
	return Source{desc: dir, store: blobstore.NewLocalStore(dir)}
}

// Remote reads the store blob from any BlobStore (S3, MinIO, in-memory).
func Remote(store blobstore.BlobStore) Source {
	return Source{store: store}
}

// SQL reads store rows from the result of query against db.
func SQL(db *sql.DB, query string) Source {
	return Source{desc: "sql", db: db, query: query}
}

func (s Source) describe(blobName string) string {
	switch {
	case s.db != nil:
		return s.desc
	case s.desc != "":
		return path.Join(s.desc, blobName)
	default:
		return blobName
	}
}

// DB is a loaded signature store ready for queries.
// It is safe for concurrent use.
type DB struct {
	store    *signature.Store
	engine   *retrieval.Engine
	opts     options
	reserved int64
	closed   atomic.Bool
}

// Open loads the store described by src.
//
// Load failures are returned as *ErrStoreLoad.
func Open(ctx context.Context, src Source, optFns ...Option) (*DB, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	desc := src.describe(opts.blobName)
	opts.logger = opts.logger.WithSource(desc)

	start := time.Now()
	var (
		store *signature.Store
		err   error
	)
	switch {
	case src.db != nil:
		store, err = signature.LoadSQL(ctx, src.db, src.query, opts.layout)
	case src.store != nil:
		store, err = signature.Load(ctx, src.store, opts.blobName, opts.layout, opts.loadOptions()...)
	default:
		err = fmt.Errorf("%w: source has no store", ErrInvalidArgument)
	}

	if err != nil {
		opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		opts.logger.LogLoad(ctx, 0, err)
		return nil, translateError(err)
	}

	db, err := newDB(store, opts)
	if err != nil {
		opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		opts.logger.LogLoad(ctx, 0, err)
		return nil, err
	}

	opts.metricsCollector.RecordLoad(store.Len(), time.Since(start), nil)
	db.opts.logger.LogLoad(ctx, store.Len(), nil)
	return db, nil
}

// New wraps an in-memory store, for example one produced by a
// signature.Builder during feature extraction.
func New(store *signature.Store, optFns ...Option) (*DB, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newDB(store, opts)
}

func newDB(store *signature.Store, opts options) (*DB, error) {
	size := store.SizeBytes()
	if !opts.resource.TryAcquireMemory(size) {
		return nil, fmt.Errorf("reserve %d bytes for store: %w", size, resource.ErrMemoryLimit)
	}
	opts.logger = opts.logger.WithDimension(store.Dim())
	return &DB{
		store:    store,
		engine:   retrieval.New(store, opts.engineOptions()...),
		opts:     opts,
		reserved: size,
	}, nil
}

// Store returns the underlying immutable store.
func (db *DB) Store() *signature.Store {
	return db.store
}

// Len returns the number of records.
func (db *DB) Len() int {
	return db.store.Len()
}

// Dim returns the vector length shared by every record.
func (db *DB) Dim() int {
	return db.store.Dim()
}

// Labels returns the distinct labels in order of first appearance.
func (db *DB) Labels() []string {
	return db.store.Labels()
}

// Stats describes a loaded store and its resource usage.
type Stats struct {
	Records       int
	Dimension     int
	SizeBytes     int64
	MemoryUsage   int64
	ActiveQueries int64
	Limits        resource.Config
}

// Stats returns the current store and resource statistics.
func (db *DB) Stats() Stats {
	rc := db.opts.resource
	return Stats{
		Records:       db.store.Len(),
		Dimension:     db.store.Dim(),
		SizeBytes:     db.store.SizeBytes(),
		MemoryUsage:   rc.MemoryUsage(),
		ActiveQueries: rc.ActiveQueries(),
		Limits:        rc.Config(),
	}
}

// Get returns the record at ordinal id.
func (db *DB) Get(id int) (signature.Record, error) {
	if db.closed.Load() {
		return signature.Record{}, ErrClosed
	}
	r, err := db.store.Get(id)
	return r, translateError(err)
}

// Query runs q against the store.
func (db *DB) Query(ctx context.Context, q retrieval.Query) (retrieval.Result, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	res, err := db.engine.Search(ctx, q)
	err = translateError(err)

	db.opts.metricsCollector.RecordSearch(q.Metric.String(), q.K, len(res), time.Since(start), err)
	db.opts.logger.LogSearch(ctx, q.Metric.String(), q.K, len(res), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}
