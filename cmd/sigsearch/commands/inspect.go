package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sigsearch/signature"
)

var inspectFlags struct {
	show  int
	blobs bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show store size, dimension, labels and resource usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		db, blobs, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		st := db.Stats()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "records:   %d\n", st.Records)
		fmt.Fprintf(w, "dimension: %d\n", st.Dimension)
		fmt.Fprintf(w, "bytes:     %d\n", st.SizeBytes)
		if l := st.Limits; l.MemoryLimitBytes > 0 || l.MaxConcurrentQueries > 0 || l.QueriesPerSecond > 0 {
			fmt.Fprintf(w, "limits:    memory %d/%d bytes, %d concurrent queries, %g queries/s\n",
				st.MemoryUsage, l.MemoryLimitBytes, l.MaxConcurrentQueries, l.QueriesPerSecond)
		}

		s := db.Store()
		labels := s.Labels()
		if len(labels) > 0 {
			fmt.Fprintln(w, "labels:")
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, l := range labels {
				fmt.Fprintf(tw, "  %s\t%d\n", l, s.LabelBitmap(l).GetCardinality())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}

		if inspectFlags.blobs && blobs != nil {
			names, err := blobs.List(ctx, "")
			if err != nil {
				return fmt.Errorf("list blobs: %w", err)
			}
			fmt.Fprintln(w, "blobs:")
			for _, name := range names {
				if _, _, err := signature.DetectFormat(name); err != nil {
					continue
				}
				mark := " "
				if name == cfg.Source.Blob {
					mark = "*"
				}
				fmt.Fprintf(w, "  %s %s\n", mark, name)
			}
		}

		if inspectFlags.show > 0 {
			fmt.Fprintln(w, "records:")
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for id, r := range s.All() {
				if id >= inspectFlags.show {
					break
				}
				fmt.Fprintf(tw, "  %d\t%v\t%s\t%s\n", id, r.Vector, r.Label, r.Path)
			}
			return tw.Flush()
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectFlags.show, "show", "n", 0, "print the first N records")
	inspectCmd.Flags().BoolVar(&inspectFlags.blobs, "blobs", false, "list the signature files next to the configured one")
	rootCmd.AddCommand(inspectCmd)
}
