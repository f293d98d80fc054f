package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/pkg/ormer"
)

// parseCmd parses a single member annotation.
func parseCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse <annotation>",
		Short: "Parse one member annotation",
		Long: `Parse one member annotation and print the directive it describes.
The canonical form is the annotation as ormer would write it back.`,
		Example: `  ormer parse "Int @id @default(@autoInc)"
  ormer parse "User? @relation(name: written, fields:[authorId], references:[id])" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			d, err := ormer.ParseDirective(text)
			if err != nil {
				return a.report(err)
			}
			if jsonOutput {
				return writeJSON(a.out, map[string]any{
					"annotation": text,
					"canonical":  directive.Render(d),
					"directive":  d,
				})
			}
			fmt.Fprint(a.out, directiveTable(d).String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func directiveTable(d *directive.Directive) *cli.Table {
	t := cli.NewTable("PROPERTY", "VALUE")
	t.AddRow("type", d.MemberType)
	t.AddRow("list", yesNo(d.IsList))
	t.AddRow("optional", yesNo(d.IsOptional))
	t.AddRow("id", yesNo(d.IsID))
	if d.Default != directive.NoDefault {
		t.AddRow("default", d.Default.Keyword())
	}
	if r := d.Relation; r != nil {
		if r.Name != "" {
			t.AddRow("relation", r.Name)
		} else {
			t.AddRow("relation", cli.Dim("(unnamed)"))
		}
		if len(r.Fields) > 0 {
			t.AddRow("fields", strings.Join(r.Fields, ", "))
			t.AddRow("references", strings.Join(r.References, ", "))
		}
	}
	t.AddRow("canonical", directive.Render(d))
	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
