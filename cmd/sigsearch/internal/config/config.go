// Package config loads the sigsearch CLI configuration from YAML.
//
// Example:
//
//	source:
//	  kind: s3                 # local | s3 | minio | sqlite
//	  blob: glcm.json.zst
//	  s3:
//	    bucket: images
//	    prefix: signatures/
//	    region: eu-central-1
//	layout:
//	  dim: 6
//	  label_column: -2
//	  path_column: -1
//	search:
//	  metric: manhattan
//	  k: 5
//	limits:
//	  max_concurrent_queries: 4
//	log:
//	  level: debug
//	  format: json
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/hupe1980/sigsearch/codec"
	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/resource"
	"github.com/hupe1980/sigsearch/signature"
)

// Source kinds.
const (
	KindLocal  = "local"
	KindS3     = "s3"
	KindMinIO  = "minio"
	KindSQLite = "sqlite"
)

// Config is the root CLI configuration.
type Config struct {
	Source Source           `yaml:"source"`
	Layout signature.Layout `yaml:"layout"`
	Search Search           `yaml:"search"`
	Limits resource.Config  `yaml:"limits"`
	Log    Log              `yaml:"log"`
	Output Output           `yaml:"output"`
}

// Source locates the signature store.
type Source struct {
	Kind   string `yaml:"kind"`
	Dir    string `yaml:"dir"`
	Blob   string `yaml:"blob"`
	Format string `yaml:"format"`
	S3     S3     `yaml:"s3"`
	MinIO  MinIO  `yaml:"minio"`
	SQLite SQLite `yaml:"sqlite"`
}

// S3 configures an Amazon S3 (or S3-compatible) source.
type S3 struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// MinIO configures a MinIO source.
type MinIO struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Secure    bool   `yaml:"secure"`
}

// SQLite configures a SQLite source.
type SQLite struct {
	DSN   string `yaml:"dsn"`
	Query string `yaml:"query"`
}

// Search holds query defaults.
type Search struct {
	Metric      string `yaml:"metric"`
	K           int    `yaml:"k"`
	Parallelism int    `yaml:"parallelism"`
	ChunkSize   int    `yaml:"chunk_size"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Output configures result printing.
type Output struct {
	// Format is "table" or "json".
	Format string `yaml:"format"`
	// Codec names the JSON codec ("json" or "go-json").
	Codec string `yaml:"codec"`
}

// Default returns the configuration used when no file is given: a local
// signatures.npy in the working directory, Euclidean distance, k = 10.
func Default() *Config {
	return &Config{
		Source: Source{
			Kind:   KindLocal,
			Dir:    ".",
			Blob:   signature.DefaultBlobName,
			Format: "auto",
		},
		Search: Search{
			Metric: distance.Euclidean.String(),
			K:      10,
		},
		Log:    Log{Level: "warn", Format: "text"},
		Output: Output{Format: "table", Codec: "go-json"},
	}
}

// Load reads path; fields left unset take their Default values. An empty
// path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Source.Kind == "" {
		c.Source.Kind = d.Source.Kind
	}
	if c.Source.Kind == KindLocal && c.Source.Dir == "" {
		c.Source.Dir = d.Source.Dir
	}
	if c.Source.Blob == "" {
		c.Source.Blob = d.Source.Blob
	}
	if c.Source.Format == "" {
		c.Source.Format = d.Source.Format
	}
	if c.Search.Metric == "" {
		c.Search.Metric = d.Search.Metric
	}
	if c.Search.K == 0 {
		c.Search.K = d.Search.K
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Output.Codec == "" {
		c.Output.Codec = d.Output.Codec
	}
}

// Validate checks the fields that cannot be checked at use time.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case KindLocal:
	case KindS3:
		if c.Source.S3.Bucket == "" {
			return fmt.Errorf("source.s3.bucket is required")
		}
	case KindMinIO:
		if c.Source.MinIO.Endpoint == "" || c.Source.MinIO.Bucket == "" {
			return fmt.Errorf("source.minio.endpoint and source.minio.bucket are required")
		}
	case KindSQLite:
		if c.Source.SQLite.DSN == "" || c.Source.SQLite.Query == "" {
			return fmt.Errorf("source.sqlite.dsn and source.sqlite.query are required")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if _, err := distance.ParseMetric(c.Search.Metric); err != nil {
		return fmt.Errorf("search.metric: %w", err)
	}
	if c.Search.K < 1 {
		return fmt.Errorf("search.k must be at least 1, got %d", c.Search.K)
	}
	if _, err := signature.ParseFormat(c.Source.Format); err != nil {
		return fmt.Errorf("source.format: %w", err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if _, ok := codec.ByName(c.Output.Codec); !ok {
		return fmt.Errorf("unknown output codec %q", c.Output.Codec)
	}
	return nil
}

// Metric returns the parsed default metric.
func (c *Config) Metric() (distance.Metric, error) {
	return distance.ParseMetric(c.Search.Metric)
}

// SlogLevel parses Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
