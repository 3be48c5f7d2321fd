package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/internal/ingest/gosrc"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/pipeline"
	"github.com/viant/codegraph/session"
)

var runPipelineSkipTests bool

var runPipelineCmd = &cobra.Command{
	Use:   "run-pipeline <dir>",
	Short: "Ingest a Go source tree and run every pipeline stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := gosrc.LoadDirectory(context.Background(), args[0], runPipelineSkipTests)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", args[0], err)
		}

		s, err := session.NewSession(session.Inputs{Documents: []*ir.Document{doc}})
		if err != nil {
			return fmt.Errorf("building session: %w", err)
		}

		results, err := s.RunPipeline(pipeline.AllStages())
		if err != nil {
			return fmt.Errorf("running pipeline: %w", err)
		}

		for _, id := range pipeline.AllStages() {
			r := results[id]
			line := fmt.Sprintf("%-28s %-10s %v", id.Name(), r.State, r.Duration)
			if r.Err != nil {
				line += " — " + r.Err.Error()
			}
			fmt.Println(line)
		}

		fmt.Printf("\n%d vulnerabilities, %d typestate violations, %d clone pairs\n",
			len(s.TaintVulnerabilities()), len(s.TypestateViolations()), len(s.ClonePairs()))
		return nil
	},
}

func init() {
	runPipelineCmd.Flags().BoolVar(&runPipelineSkipTests, "skip-tests", true, "Skip _test.go files during ingestion")
}
