package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/internal/metadata"
)

// WriteText writes the browser's content as plain text: one section per
// model, then the relation table.
func WriteText(w io.Writer, meta *metadata.Metadata) error {
	var s strings.Builder

	fmt.Fprintf(&s, "%s  %s\n\n", cli.Bold("database: "+meta.Database),
		cli.FormatCount(len(meta.Tables), "model", "models"))

	for _, name := range sortedModels(meta) {
		t := meta.Tables[name]
		fmt.Fprintf(&s, "%s %s\n", cli.Accent(name), cli.Dim("("+t.Name+")"))

		tbl := cli.NewTable("COLUMN", "TYPE", "NULL", "DEFAULT")
		for _, c := range t.Columns {
			col := c.Name
			if c.PrimaryKey {
				col += " (pk)"
			}
			null := ""
			if c.Nullable {
				null = "yes"
			}
			typ := c.Type
			if c.List {
				typ += "[]"
			}
			tbl.AddRow(col, typ, null, c.Default)
		}
		s.WriteString(cli.Indent(tbl.String(), 2))
		s.WriteString("\n")
	}

	if len(meta.Relations) > 0 {
		tbl := cli.NewTable("RELATION", "KIND", "FROM", "TO", "FOREIGN KEY", "JOIN TABLE")
		for _, r := range meta.Relations {
			join := ""
			if jt, ok := meta.JoinTables[r.Name]; ok {
				join = jt.Name
			}
			tbl.AddRow(r.Name, r.Kind, r.From, r.To, foreignKey(r), join)
		}
		s.WriteString(tbl.String())
	}

	_, err := io.WriteString(w, s.String())
	return err
}
