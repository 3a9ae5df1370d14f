// Package main provides the docpulse CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	noColor bool
	verbose bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "docpulse-cli",
	Short: "docpulse CLI for offline document orientation analysis",
	Long: `docpulse CLI analyzes documents without the server pipeline.

Use this tool to:
- Analyze a PDF or image locally and print per-page orientation results
- Sanity-check a document before uploading it to the API`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
