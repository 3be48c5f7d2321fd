// Command codegraphctl is a thin cobra driver over package session: it
// ingests a Go source tree with internal/ingest/gosrc, runs the analysis
// pipeline, and prints results. It is an ambient convenience (spec.md §6
// excludes a CLI from the core), not part of the importable kernel API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codegraphctl",
	Short: "Drive a codegraph analysis session from the command line",
	Long: `codegraphctl ingests a Go source tree into the codegraph IR and
drives a session's analysis pipeline: run-pipeline executes every stage,
query filters the resulting symbol occurrences, and impact reports the
files an incremental change would affect.`,
}

func main() {
	rootCmd.AddCommand(runPipelineCmd, queryCmd, impactCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
