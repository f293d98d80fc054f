package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/pkg/ormer"
)

// checkCmd validates schema documents.
func checkCmd(a *app) *cobra.Command {
	var jsonOutput, watch bool

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate schema documents",
		Long: `Validate schema documents: parse every annotation, assemble the models
and resolve their relations. Without arguments the configured schema is
checked. Several documents are checked concurrently.`,
		Example: `  # Check the configured schema
  ormer check

  # Check several documents and print a JSON report
  ormer check blog.yaml shop.js --json

  # Re-check whenever a document changes
  ormer check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{a.config.Schema}
			}

			if watch {
				return watchFiles(cmd.Context(), paths, func() {
					fmt.Fprintln(a.out, cli.Dim("── checking "+joinPaths(paths)))
					_, _ = runCheck(cmd.Context(), a, paths, jsonOutput)
				})
			}

			ok, err := runCheck(cmd.Context(), a, paths, jsonOutput)
			if err != nil {
				return err
			}
			if !ok {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the check whenever a document changes")
	return cmd
}

// checkReport is the JSON form of one checked document.
type checkReport struct {
	File        string       `json:"file"`
	Valid       bool         `json:"valid"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Models      int          `json:"models,omitempty"`
	Relations   int          `json:"relations,omitempty"`
	JoinTables  int          `json:"join_tables,omitempty"`
	Cached      bool         `json:"cached,omitempty"`
	Error       *errorReport `json:"error,omitempty"`
}

// errorReport is the JSON form of an error.
type errorReport struct {
	Code     string         `json:"code,omitempty"`
	Kind     string         `json:"kind"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
	Location string         `json:"location,omitempty"`
}

func newErrorReport(err error) *errorReport {
	chain := alerr.Chain(err)
	if len(chain) == 0 {
		return &errorReport{Kind: alerr.KindUnknown.String(), Message: err.Error()}
	}
	e := chain[0]
	return &errorReport{
		Code:     string(e.GetCode()),
		Kind:     e.GetKind().String(),
		Message:  e.GetMessage(),
		Context:  e.GetContext(),
		Location: e.GetLocation().String(),
	}
}

func newCheckReport(r ormer.FileResult) checkReport {
	if r.Err != nil {
		return checkReport{File: r.Path, Error: newErrorReport(r.Err)}
	}
	c := r.Compiled
	return checkReport{
		File:        r.Path,
		Valid:       true,
		Fingerprint: c.Fingerprint.Root,
		Models:      len(c.Schema.Models()),
		Relations:   len(c.Relations),
		JoinTables:  len(c.JoinTables),
		Cached:      c.FromCache,
	}
}

// runCheck compiles paths and prints one report per document. ok is false
// when any document failed.
func runCheck(ctx context.Context, a *app, paths []string, jsonOutput bool) (ok bool, err error) {
	c := a.compiler()
	defer c.Close()

	results, err := c.CompileFiles(ctx, paths...)
	if err != nil {
		return false, err
	}

	ok = true
	reports := make([]checkReport, len(results))
	for i, r := range results {
		reports[i] = newCheckReport(r)
		ok = ok && reports[i].Valid
	}

	if jsonOutput {
		return ok, writeJSON(a.out, map[string]any{"valid": ok, "files": reports})
	}

	for i, r := range results {
		if r.Err != nil {
			fmt.Fprint(a.errOut, cli.FormatError(r.Err))
			continue
		}
		fmt.Fprint(a.out, cli.RenderPanel(cli.PanelSuccess, "Schema check passed", checkSummary(reports[i])))
	}
	if len(results) > 1 {
		fmt.Fprintln(a.out, checkTally(reports))
	}
	return ok, nil
}

func checkSummary(r checkReport) string {
	source := r.File
	if r.Cached {
		source += " " + cli.Dim("(cached)")
	}
	return cli.FormatKeyValue("File", source) + "\n" +
		cli.FormatKeyValue("Models", fmt.Sprint(r.Models)) + "\n" +
		cli.FormatKeyValue("Relations", fmt.Sprint(r.Relations)) + "\n" +
		cli.FormatKeyValue("Join tables", fmt.Sprint(r.JoinTables)) + "\n" +
		cli.FormatKeyValue("Fingerprint", truncateHash(r.Fingerprint))
}

func checkTally(reports []checkReport) string {
	l := cli.NewList()
	for _, r := range reports {
		if r.Valid {
			l.AddSuccess(r.File)
		} else {
			l.AddError(fmt.Sprintf("%s %s", r.File, cli.Dim("["+r.Error.Code+"]")))
		}
	}
	return l.String()
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncateHash returns the first 12 characters of a hash.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
