package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/ui"
)

// browseCmd opens the interactive schema browser.
func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse models and relations interactively",
		Long: `Open an interactive browser over the resolved schema: models with their
columns on one tab, relations and join tables on the other. When stdout is
not a terminal the same content is printed as plain text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compileSchema()
			if err != nil {
				return a.report(err)
			}
			if f, ok := a.out.(*os.File); ok {
				return ui.Browse(out.Metadata, f)
			}
			return ui.WriteText(a.out, out.Metadata)
		},
	}
}
