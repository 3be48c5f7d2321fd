package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/internal/ingest/gosrc"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/session"
)

var impactSkipTests bool

var impactCmd = &cobra.Command{
	Use:   "impact <dir> <changed-file>",
	Short: "Report the files affected by a change to one file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, changedFile := args[0], args[1]

		doc, err := gosrc.LoadDirectory(context.Background(), dir, impactSkipTests)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", dir, err)
		}

		s, err := session.NewSession(session.Inputs{Documents: []*ir.Document{doc}})
		if err != nil {
			return fmt.Errorf("building session: %w", err)
		}

		var modified []*ir.Node
		for _, n := range doc.Nodes {
			if n.File == changedFile {
				modified = append(modified, n)
			}
		}
		if len(modified) == 0 {
			return fmt.Errorf("no symbols found in %s", changedFile)
		}

		_, affected, err := s.Update(session.Delta{ModifiedNodes: modified})
		if err != nil {
			return fmt.Errorf("computing impact: %w", err)
		}

		for _, f := range affected {
			fmt.Println(f)
		}
		fmt.Printf("\n%d file(s) affected by changes to %s\n", len(affected), changedFile)
		return nil
	},
}

func init() {
	impactCmd.Flags().BoolVar(&impactSkipTests, "skip-tests", true, "Skip _test.go files during ingestion")
}
