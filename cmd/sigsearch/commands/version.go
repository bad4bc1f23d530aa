package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sigsearch/cmd/sigsearch/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, build.String())
		if IsVerbose() {
			fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
			if configPath != "" {
				fmt.Fprintf(w, "  config: %s\n", configPath)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
