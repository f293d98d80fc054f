package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/internal/metadata"
)

// tablesCmd lists the resolved relations and many-to-many join tables.
func tablesCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List relations and many-to-many join tables",
		Long: `List every relation of the schema with its kind and the side that owns
the foreign key, followed by the join tables many-to-many relations need.`,
		Example: `  ormer tables
  ormer tables --schema shop.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compileSchema()
			if err != nil {
				return a.report(err)
			}
			meta := out.Metadata

			joins := joinTables(meta)
			if jsonOutput {
				return writeJSON(a.out, map[string]any{
					"relations":   meta.Relations,
					"join_tables": joins,
				})
			}

			rels := cli.NewTable("RELATION", "KIND", "FROM", "TO", "OWNER", "FIELDS")
			for _, r := range meta.Relations {
				fields := ""
				if len(r.Fields) > 0 {
					fields = fmt.Sprintf("%v -> %v", r.Fields, r.References)
				}
				rels.AddRow(r.Name, r.Kind, r.From, r.To, r.Owner, fields)
			}
			a.printf("%s\n%s\n", cli.Bold(cli.FormatCount(rels.Len(), "relation", "relations")), rels)

			jt := cli.NewTable("JOIN TABLE", "RELATION", "SOURCE", "TARGET")
			for _, j := range joins {
				jt.AddRow(j.Name, j.Relation,
					j.SourceTable+"."+j.SourceColumn,
					j.TargetTable+"."+j.TargetColumn)
			}
			a.printf("%s\n", cli.Bold(cli.FormatCount(jt.Len(), "join table", "join tables")))
			if jt.Len() > 0 {
				fmt.Fprint(a.out, jt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// joinTables returns the join tables of meta sorted by table name.
func joinTables(meta *metadata.Metadata) []*metadata.JoinTableMeta {
	out := make([]*metadata.JoinTableMeta, 0, len(meta.JoinTables))
	for _, jt := range meta.JoinTables {
		out = append(out, jt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
