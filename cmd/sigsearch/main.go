// Package main is the entry point for the sigsearch CLI.
//
// Usage:
//
//	sigsearch [flags] <command> [args]
//
// Commands:
//
//	query    - Rank the store against a query signature
//	inspect  - Show store size, dimension and labels
//	convert  - Re-encode a store as NPY or JSON rows, optionally compressed
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/sigsearch/cmd/sigsearch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
