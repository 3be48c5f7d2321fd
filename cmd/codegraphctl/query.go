package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/internal/ingest/gosrc"
	"github.com/viant/codegraph/ir"
	"github.com/viant/codegraph/query"
	"github.com/viant/codegraph/session"
)

var (
	queryKind     string
	queryNameHas  string
	querySkipTest bool
)

var queryCmd = &cobra.Command{
	Use:   "query <dir>",
	Short: "Filter the symbols ingested from a Go source tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := gosrc.LoadDirectory(context.Background(), args[0], querySkipTest)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", args[0], err)
		}

		s, err := session.NewSession(session.Inputs{Documents: []*ir.Document{doc}})
		if err != nil {
			return fmt.Errorf("building session: %w", err)
		}

		rows := rowsFromDocument(doc)

		expr := queryExpr()
		matched, err := s.QueryRows(expr, rows)
		if err != nil {
			return fmt.Errorf("evaluating query: %w", err)
		}

		for _, row := range matched {
			fmt.Printf("%-10v %-40v %v\n", row["kind"], row["fqn"], row["file"])
		}
		fmt.Printf("\n%d of %d symbols matched\n", len(matched), len(rows))
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "Restrict to a node kind (function, method, class, ...)")
	queryCmd.Flags().StringVar(&queryNameHas, "name-contains", "", "Restrict to symbols whose FQN contains this substring")
	queryCmd.Flags().BoolVar(&querySkipTest, "skip-tests", true, "Skip _test.go files during ingestion")
}

// rowsFromDocument flattens a document's nodes into the generic query.Row
// shape QueryRows expects, one row per symbol.
func rowsFromDocument(doc *ir.Document) []query.Row {
	rows := make([]query.Row, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		rows = append(rows, query.Row{
			"kind": string(n.Kind),
			"fqn":  n.FQN,
			"file": n.File,
			"id":   n.ID,
		})
	}
	return rows
}

// queryExpr builds a filter expression from the command's flags. No string
// query language exists, so each populated flag contributes one comparison
// and multiple flags combine with And.
func queryExpr() *query.Expr {
	var clauses []*query.Expr
	if queryKind != "" {
		clauses = append(clauses, query.Compare(query.Field("kind"), query.Eq, query.StringLit(queryKind)))
	}
	if queryNameHas != "" {
		clauses = append(clauses, query.StringExpr(query.Field("fqn"), query.Contains, queryNameHas))
	}

	switch len(clauses) {
	case 0:
		return query.IsNotNull(query.Field("fqn"))
	case 1:
		return clauses[0]
	default:
		expr := clauses[0]
		for _, c := range clauses[1:] {
			expr = query.And(expr, c)
		}
		return expr
	}
}
