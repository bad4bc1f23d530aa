package sigsearch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigsearch/blobstore"
	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/resource"
	"github.com/hupe1980/sigsearch/retrieval"
	"github.com/hupe1980/sigsearch/signature"
)

const tupleJSON = `[
  [0, 0, "cat", "a"],
  [3, 4, "dog", "b"],
  [1, 0, "cat", "c"]
]`

func openTuples(t *testing.T, optFns ...Option) *DB {
	t.Helper()
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "glcm.json", []byte(tupleJSON)))

	opts := append([]Option{WithBlobName("glcm.json"), WithLayout(signature.VectorLabelPath(2))}, optFns...)
	db, err := Open(ctx, Remote(bs), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRemote(t *testing.T) {
	db := openTuples(t)

	assert.Equal(t, 3, db.Len())
	assert.Equal(t, 2, db.Dim())
	assert.Equal(t, []string{"cat", "dog"}, db.Labels())

	r, err := db.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", r.Path)
	assert.Equal(t, "dog", r.Label)
}

func TestOpenLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	data, err := signature.EncodeNPY([][]float64{{0, 0}, {3, 4}, {1, 0}})
	require.NoError(t, err)
	require.NoError(t, blobstore.NewLocalStore(dir).Put(ctx, signature.DefaultBlobName, data))

	db, err := Open(ctx, Local(dir))
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Search([]float64{0, 0}).K(2).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, res.IDs())
	assert.Equal(t, []float64{0, 1}, []float64{res[0].Score, res[1].Score})
}

func TestOpenSQL(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := signature.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	_, err = sqlDB.ExecContext(ctx, `CREATE TABLE sigs (id INTEGER PRIMARY KEY, f0 REAL, f1 REAL, label TEXT, path TEXT)`)
	require.NoError(t, err)
	_, err = sqlDB.ExecContext(ctx, `INSERT INTO sigs (f0, f1, label, path) VALUES (0, 0, 'cat', 'a'), (3, 4, 'dog', 'b'), (1, 0, 'cat', 'c')`)
	require.NoError(t, err)

	db, err := Open(ctx, SQL(sqlDB, `SELECT f0, f1, label, path FROM sigs ORDER BY id`), WithLayout(signature.VectorLabelPath(2)))
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Search([]float64{0, 0}).Metric(distance.Manhattan).K(3).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, res.Paths())
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "bad.csv", []byte("1,2\n3\n")))

	_, err := Open(ctx, Remote(bs), WithBlobName("bad.csv"))
	var sl *ErrStoreLoad
	require.ErrorAs(t, err, &sl)
	assert.Equal(t, "bad.csv", sl.Source)
	assert.Equal(t, 1, sl.Row)

	_, err = Open(ctx, Remote(bs))
	require.ErrorAs(t, err, &sl)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = Open(ctx, Source{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchBuilder(t *testing.T) {
	db := openTuples(t, WithParallelism(2), WithChunkSize(1))
	ctx := context.Background()

	res, err := db.Search([]float64{0, 0}).K(2).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, res.Paths())
	assert.Equal(t, []float64{0, 1}, []float64{res[0].Score, res[1].Score})

	res, err = db.Search([]float64{0, 0}).MetricName("cityblock").K(3).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, res.Paths())
	assert.Equal(t, 7.0, res[2].Score)

	res, err = db.Search([]float64{0, 0}).Labels("dog").Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.Paths())

	first, err := db.Search([]float64{3, 3}).Metric(distance.Chebyshev).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", first.Path)
	assert.Equal(t, 0, first.Rank)

	_, err = db.Search([]float64{0, 0}).Labels("bird").First(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := db.Search([]float64{0, 0}).K(100).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var paths []string
	for r, err := range db.Search([]float64{0, 0}).K(3).Stream(ctx) {
		require.NoError(t, err)
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"a", "c", "b"}, paths)

	q := db.Search([]float64{1}).Metric(distance.Canberra).K(4).Labels("cat").Query()
	assert.Equal(t, retrieval.Query{Vector: []float64{1}, Metric: distance.Canberra, K: 4, Labels: []string{"cat"}}, q)

	assert.Len(t, db.Search([]float64{0, 0}).MustExecute(ctx), 3)
	assert.Panics(t, func() { db.Search([]float64{0, 0}).K(0).MustExecute(ctx) })
}

func TestPublicErrors(t *testing.T) {
	db := openTuples(t)
	ctx := context.Background()

	_, err := db.Search([]float64{0, 0, 0}).Execute(ctx)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
	assert.Equal(t, 0, dm.RecordID)
	var re *retrieval.Error
	assert.ErrorAs(t, err, &re)

	_, err = db.Search([]float64{0, 0}).MetricName("hamming").Execute(ctx)
	var um *ErrUnknownMetric
	require.ErrorAs(t, err, &um)
	assert.Equal(t, "hamming", um.Name)

	_, err = db.Query(ctx, retrieval.Query{Vector: []float64{0, 0}, K: 1})
	require.ErrorAs(t, err, &um)

	_, err = db.Search([]float64{0, 0}).K(0).Execute(ctx)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, retrieval.ErrInvalidK)

	_, err = db.Get(3)
	var oor *ErrOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 3, oor.ID)
	assert.Equal(t, 3, oor.Len)
}

func TestTranslateErrorPassesThrough(t *testing.T) {
	assert.NoError(t, translateError(nil))

	other := errors.New("boom")
	assert.Same(t, other, translateError(other))
}

func TestNewFromStore(t *testing.T) {
	s, err := signature.NewStore(
		signature.Record{Vector: []float64{1, 1}, Path: "x"},
		signature.Record{Vector: []float64{0, 0}, Path: "y"},
	)
	require.NoError(t, err)

	db, err := New(s)
	require.NoError(t, err)
	assert.Same(t, s, db.Store())

	r, err := db.Search([]float64{0.1, 0.1}).First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "y", r.Path)
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "empty.csv", nil))

	db, err := Open(ctx, Remote(bs), WithBlobName("empty.csv"))
	require.NoError(t, err)

	res, err := db.Search([]float64{1, 2}).K(5).Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestCloseReleasesMemory(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	db := openTuples(t, WithResourceController(rc))
	assert.Equal(t, db.Store().SizeBytes(), rc.MemoryUsage())

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	assert.Zero(t, rc.MemoryUsage())

	_, err := db.Search([]float64{0, 0}).Execute(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.Get(0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryLimit(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "glcm.json", []byte(tupleJSON)))

	_, err := Open(ctx, Remote(bs), WithBlobName("glcm.json"), WithLayout(signature.VectorLabelPath(2)),
		WithResourceLimits(resource.Config{MemoryLimitBytes: 8}))
	assert.ErrorIs(t, err, resource.ErrMemoryLimit)
}

func TestMetricsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &BasicMetricsCollector{}

	db := openTuples(t, WithLogger(logger), WithMetricsCollector(mc))
	ctx := context.Background()

	_, err := db.Search([]float64{0, 0}).K(2).Execute(ctx)
	require.NoError(t, err)
	_, err = db.Search([]float64{0}).Execute(ctx)
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(3), stats.LoadRecords)
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(1), stats.SearchErrors)
	assert.Equal(t, int64(2), stats.SearchResults)

	out := buf.String()
	assert.Contains(t, out, `"msg":"store loaded"`)
	assert.Contains(t, out, `"msg":"search completed"`)
	assert.Contains(t, out, `"msg":"search failed"`)
	assert.Contains(t, out, `"metric":"euclidean"`)
	assert.Contains(t, out, `"source":"glcm.json"`)
	assert.Contains(t, out, `"dimension":2`)
}

func TestOpenLoadFailureLogsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	_, err := Open(context.Background(), Local(t.TempDir()), WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"store load failed"`)
	assert.Contains(t, buf.String(), `"source":"`)
}

func TestStats(t *testing.T) {
	limits := resource.Config{MemoryLimitBytes: 1 << 20, MaxConcurrentQueries: 2}
	db := openTuples(t, WithResourceLimits(limits))

	st := db.Stats()
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, 2, st.Dimension)
	assert.Equal(t, db.Store().SizeBytes(), st.SizeBytes)
	assert.Equal(t, st.SizeBytes, st.MemoryUsage)
	assert.Zero(t, st.ActiveQueries)
	assert.Equal(t, limits, st.Limits)

	plain, err := New(db.Store())
	require.NoError(t, err)
	st = plain.Stats()
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, resource.Config{}, st.Limits)
	assert.Zero(t, st.MemoryUsage)
}

func TestOptionDefaults(t *testing.T) {
	o := defaultOptions()
	WithLogger(nil)(&o)
	WithMetricsCollector(nil)(&o)
	WithCodec(nil)(&o)
	WithBlobName("")(&o)

	assert.NotNil(t, o.logger)
	assert.Equal(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.NotNil(t, o.codec)
	assert.Equal(t, signature.DefaultBlobName, o.blobName)
}
