package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sigsearch/cmd/sigsearch/internal/config"
	"github.com/hupe1980/sigsearch/codec"
	"github.com/hupe1980/sigsearch/distance"
	"github.com/hupe1980/sigsearch/retrieval"
	"github.com/hupe1980/sigsearch/signature"
)

var queryFlags struct {
	vector     string
	vectorFile string
	record     int
	metric     string
	k          int
	labels     []string
	output     string
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Rank the store against a query signature",
	Long: `Rank every stored signature against a query signature and print the k
closest, nearest first. Ties keep store order.

The query comes from exactly one of:
  --vector       comma-separated components
  --vector-file  .npy, .json or .csv file; its first row is the query
  --record       the signature of a stored record`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryFlags.vector, "vector", "", "query components, e.g. 0.1,0.5,2")
	f.StringVar(&queryFlags.vectorFile, "vector-file", "", "file holding the query signature")
	f.IntVar(&queryFlags.record, "record", -1, "use stored record N as the query")
	f.StringVarP(&queryFlags.metric, "metric", "m", "", "manhattan, euclidean, chebyshev or canberra (default from config)")
	f.IntVarP(&queryFlags.k, "k", "k", 0, "number of results (default from config)")
	f.StringSliceVarP(&queryFlags.labels, "label", "l", nil, "only rank records with this label (repeatable)")
	f.StringVarP(&queryFlags.output, "output", "o", "", "table or json (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	metric, err := cfg.Metric()
	if err != nil {
		return err
	}
	if queryFlags.metric != "" {
		if metric, err = distance.ParseMetric(queryFlags.metric); err != nil {
			return err
		}
	}
	k := cfg.Search.K
	if cmd.Flags().Changed("k") {
		k = queryFlags.k
	}
	if k < 1 {
		return fmt.Errorf("k must be at least 1, got %d", k)
	}
	output := cfg.Output.Format
	if queryFlags.output != "" {
		output = queryFlags.output
	}

	ctx := cmd.Context()
	db, _, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	vector, err := queryVector(db.Get)
	if err != nil {
		return err
	}

	res, err := db.Search(vector).Metric(metric).K(k).Labels(queryFlags.labels...).Execute(ctx)
	if err != nil {
		return err
	}
	return printResults(cmd.OutOrStdout(), cfg, output, res)
}

func queryVector(get func(int) (signature.Record, error)) ([]float64, error) {
	sources := 0
	for _, set := range []bool{queryFlags.vector != "", queryFlags.vectorFile != "", queryFlags.record >= 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of --vector, --vector-file or --record is required")
	}

	switch {
	case queryFlags.vector != "":
		return parseVector(queryFlags.vector)
	case queryFlags.vectorFile != "":
		return readVectorFile(queryFlags.vectorFile)
	default:
		r, err := get(queryFlags.record)
		if err != nil {
			return nil, err
		}
		return r.Vector, nil
	}
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	v := make([]float64, 0, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("vector component %d: %w", i, err)
		}
		v = append(v, x)
	}
	return v, nil
}

// readVectorFile reads the first row of a signature file. JSON files may
// also hold a single flat array.
func readVectorFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, comp, err := signature.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if comp != signature.CompressionNone {
		return nil, fmt.Errorf("compressed query files are not supported")
	}

	if format == signature.FormatJSON {
		var flat []float64
		if err := codec.Default.Unmarshal(bytes.TrimSpace(data), &flat); err == nil {
			return flat, nil
		}
	}

	s, err := signature.Decode(data, format, signature.VectorOnly(0))
	if err != nil {
		return nil, err
	}
	r, err := s.Get(0)
	if err != nil {
		return nil, fmt.Errorf("%s holds no signature", path)
	}
	return r.Vector, nil
}

func printResults(w io.Writer, cfg *config.Config, output string, res retrieval.Result) error {
	switch output {
	case "json":
		data, err := outputCodec(cfg).MarshalIndent(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tID\tSCORE\tLABEL\tPATH")
		for _, r := range res {
			fmt.Fprintf(tw, "%d\t%d\t%.6g\t%s\t%s\n", r.Rank, r.RecordID, r.Score, r.Label, r.Path)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
