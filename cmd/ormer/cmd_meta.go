package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/cli"
)

// metaCmd exports schema metadata to a JSON file.
func metaCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Export schema metadata to a JSON file",
		Long: `Export schema metadata to a JSON file for use by external tools.

The metadata includes:
- Tables and their columns, per model
- Relations, their kind and the side owning the foreign key
- Join tables of many-to-many relations, with quoted names`,
		Example: `  # Export metadata to the default location (.ormer/metadata.json)
  ormer meta

  # Export to a custom file, or to stdout
  ormer meta -o schema-metadata.json
  ormer meta -o -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compileSchema()
			if err != nil {
				return a.report(err)
			}

			if output == "" {
				output = a.config.MetaFile
			}
			if output == "-" {
				data, err := out.Metadata.JSON()
				if err != nil {
					return a.report(err)
				}
				_, err = a.out.Write(append(data, '\n'))
				return err
			}

			absPath, err := filepath.Abs(output)
			if err != nil {
				return a.report(alerr.Wrap(alerr.ErrMetadataSave, err, "failed to resolve output path").WithFile(output))
			}
			if err := out.Metadata.SaveToFile(absPath); err != nil {
				return a.report(err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				return a.report(alerr.Wrap(alerr.ErrMetadataSave, err, "failed to read metadata file").WithFile(absPath))
			}

			fmt.Fprint(a.out, cli.RenderPanel(cli.PanelSuccess, "Metadata exported",
				cli.FormatKeyValue("Saved to", absPath)+"\n"+
					cli.FormatKeyValue("Size", fmt.Sprintf("%d bytes", info.Size()))+"\n"+
					cli.FormatKeyValue("Tables", fmt.Sprint(len(out.Metadata.Tables)))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path, - for stdout (default from config: .ormer/metadata.json)")
	return cmd
}
