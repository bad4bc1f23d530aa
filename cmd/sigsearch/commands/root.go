package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sigsearch"
	"github.com/hupe1980/sigsearch/blobstore"
	"github.com/hupe1980/sigsearch/blobstore/minio"
	"github.com/hupe1980/sigsearch/blobstore/s3"
	"github.com/hupe1980/sigsearch/cmd/sigsearch/internal/config"
	"github.com/hupe1980/sigsearch/codec"
	"github.com/hupe1980/sigsearch/signature"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sigsearch",
	Short: "Content-based image retrieval over precomputed signatures",
	Long: `sigsearch - rank stored image signatures against a query signature.

The store is read from a local directory, Amazon S3, MinIO or SQLite as
configured in a YAML file (--config). Without a config file the store is
./signatures.npy with one vector per row.

Examples:
  # Five nearest images by Manhattan distance
  sigsearch query --vector 0.12,0.4,0.9 --metric manhattan -k 5

  # Query signature stored as a one-row .npy file, JSON output
  sigsearch -c sigsearch.yaml query --vector-file query.npy -o json

  # Store summary
  sigsearch -c sigsearch.yaml inspect`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("SIGSEARCH_CONFIG"), "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// loadConfig reads the configured file, or the defaults when none is set.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newLogger(cfg *config.Config) (*sigsearch.Logger, error) {
	lvl, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = min(lvl, slog.LevelDebug)
	}
	if cfg.Log.Format == "json" {
		return sigsearch.NewJSONLogger(lvl), nil
	}
	return sigsearch.NewTextLogger(lvl), nil
}

func outputCodec(cfg *config.Config) codec.Codec {
	if c, ok := codec.ByName(cfg.Output.Codec); ok {
		return c
	}
	return codec.Default
}

// openSource builds the store source described by cfg. Blob-backed sources
// also return their BlobStore; SQL sources return nil. The returned closer
// releases any database handle.
func openSource(ctx context.Context, cfg *config.Config) (sigsearch.Source, blobstore.BlobStore, func(), error) {
	noop := func() {}
	src := cfg.Source

	switch src.Kind {
	case config.KindLocal:
		return sigsearch.Local(src.Dir), blobstore.NewLocalStore(src.Dir), noop, nil

	case config.KindS3:
		store, err := s3.New(ctx, src.S3.Bucket, func(o *s3.Options) {
			o.Prefix = src.S3.Prefix
			o.Region = src.S3.Region
			o.Endpoint = src.S3.Endpoint
			o.UsePathStyle = src.S3.UsePathStyle
		})
		if err != nil {
			return sigsearch.Source{}, nil, nil, fmt.Errorf("s3 source: %w", err)
		}
		return sigsearch.Remote(store), store, noop, nil

	case config.KindMinIO:
		store, err := minio.Dial(minio.Config{
			Endpoint:  src.MinIO.Endpoint,
			AccessKey: src.MinIO.AccessKey,
			SecretKey: src.MinIO.SecretKey,
			Region:    src.MinIO.Region,
			Secure:    src.MinIO.Secure,
		}, src.MinIO.Bucket, src.MinIO.Prefix)
		if err != nil {
			return sigsearch.Source{}, nil, nil, fmt.Errorf("minio source: %w", err)
		}
		return sigsearch.Remote(store), store, noop, nil

	case config.KindSQLite:
		db, err := signature.OpenSQLite(src.SQLite.DSN)
		if err != nil {
			return sigsearch.Source{}, nil, nil, fmt.Errorf("sqlite source: %w", err)
		}
		return sigsearch.SQL(db, src.SQLite.Query), nil, closeDB(db), nil

	default:
		return sigsearch.Source{}, nil, nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// openDB loads the configured store. The BlobStore it was read from is
// returned alongside, nil for SQL sources.
func openDB(ctx context.Context, cfg *config.Config, extra ...sigsearch.Option) (*sigsearch.DB, blobstore.BlobStore, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	format, err := signature.ParseFormat(cfg.Source.Format)
	if err != nil {
		return nil, nil, err
	}

	src, blobs, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeSrc()

	opts := []sigsearch.Option{
		sigsearch.WithLogger(logger),
		sigsearch.WithBlobName(cfg.Source.Blob),
		sigsearch.WithLayout(cfg.Layout),
		sigsearch.WithParallelism(cfg.Search.Parallelism),
		sigsearch.WithChunkSize(cfg.Search.ChunkSize),
		sigsearch.WithResourceLimits(cfg.Limits),
	}
	if format != signature.FormatAuto {
		_, comp, _ := signature.DetectFormat(cfg.Source.Blob)
		opts = append(opts, sigsearch.WithFormat(format, comp))
	}
	opts = append(opts, extra...)

	db, err := sigsearch.Open(ctx, src, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, blobs, nil
}
