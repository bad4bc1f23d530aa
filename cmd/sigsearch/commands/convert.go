package commands

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sigsearch/blobstore"
	"github.com/hupe1980/sigsearch/codec"
	"github.com/hupe1980/sigsearch/signature"
)

var convertCmd = &cobra.Command{
	Use:   "convert OUTPUT",
	Short: "Re-encode the store as NPY, JSON or CSV rows",
	Long: `Load the configured store and write it to OUTPUT. The format follows the
file name: .npy keeps vectors only; .json and .csv append the label and the
path to every row (load them back with layout label_column: -2,
path_column: -1). A trailing .zst or .lz4 compresses the output. An
existing OUTPUT is only replaced with --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := args[0]
		format, comp, err := signature.DetectFormat(out)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		dst := blobstore.NewLocalStore(filepath.Dir(out))
		if !convertForce {
			exists, err := blobstore.Exists(ctx, dst, filepath.Base(out))
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%s already exists (use --force to replace it)", out)
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := encodeStore(db.Store(), format, outputCodec(cfg))
		if err != nil {
			return err
		}
		if data, err = signature.Compress(data, comp); err != nil {
			return err
		}

		if err := dst.Put(ctx, filepath.Base(out), data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records (%s, %s) to %s\n", db.Len(), format, comp, out)
		return nil
	},
}

var convertForce bool

func init() {
	convertCmd.Flags().BoolVarP(&convertForce, "force", "f", false, "replace an existing OUTPUT")
	rootCmd.AddCommand(convertCmd)
}

func encodeStore(s *signature.Store, format signature.Format, c codec.Codec) ([]byte, error) {
	switch format {
	case signature.FormatNPY:
		vecs := make([][]float64, 0, s.Len())
		for _, r := range s.All() {
			vecs = append(vecs, r.Vector)
		}
		return signature.EncodeNPY(vecs)

	case signature.FormatJSON:
		rows := make([][]any, 0, s.Len())
		for _, r := range s.All() {
			row := make([]any, 0, len(r.Vector)+2)
			for _, v := range r.Vector {
				row = append(row, v)
			}
			rows = append(rows, append(row, r.Label, r.Path))
		}
		return c.Marshal(rows)

	case signature.FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		for _, r := range s.All() {
			row := make([]string, 0, len(r.Vector)+2)
			for _, v := range r.Vector {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(append(row, r.Label, r.Path)); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()

	default:
		return nil, fmt.Errorf("unsupported output format %v", format)
	}
}
