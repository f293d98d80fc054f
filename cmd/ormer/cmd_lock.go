package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/internal/lockfile"
)

// lockCmd writes the schema fingerprint to the lock file.
func lockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Write the schema fingerprint to ormer.lock",
		Long: `Write the schema fingerprint to the lock file.

The lock file holds the merkle root of the resolved schema and one checksum
per model and join table. Commit it, then run 'ormer verify' in CI to catch
schema changes nobody accepted.`,
		Example: `  ormer lock
  ormer lock --schema shop.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compileSchema()
			if err != nil {
				return a.report(err)
			}
			if err := lockfile.Write(a.config.LockFile, out.Fingerprint); err != nil {
				return a.report(err)
			}

			lf := lockfile.FromHash(out.Fingerprint)
			fmt.Fprint(a.out, cli.RenderPanel(cli.PanelSuccess, "Lock file written",
				cli.FormatKeyValue("File", a.config.LockFile)+"\n"+
					cli.FormatKeyValue("Entries", fmt.Sprint(len(lf.Entries)))+"\n"+
					cli.FormatKeyValue("Root", truncateHash(lf.Root))))
			return nil
		},
	}
	return cmd
}

// verifyCmd compares the schema against the lock file.
func verifyCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the schema against ormer.lock",
		Long: `Compare the resolved schema against the lock file and list the models
and join tables that were added, removed or changed since 'ormer lock'.
Exits with status 1 on any difference.`,
		Example: `  ormer verify
  ormer verify --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.compileSchema()
			if err != nil {
				return a.report(err)
			}

			res, err := lockfile.VerifyDetailed(a.config.LockFile, out.Fingerprint)
			if err != nil {
				return a.report(err)
			}

			if jsonOutput {
				if err := writeJSON(a.out, map[string]any{
					"valid":       res.Valid,
					"lock_exists": res.LockFileExists,
					"root_match":  res.RootMatch,
					"added":       res.Added,
					"removed":     res.Removed,
					"changed":     res.Changed,
					"verified":    res.Verified,
				}); err != nil {
					return err
				}
				if !res.Valid {
					return errReported
				}
				return nil
			}

			if res.Valid {
				fmt.Fprint(a.out, cli.RenderPanel(cli.PanelSuccess, "Schema matches the lock file",
					cli.FormatKeyValue("Verified", strings.Join(res.Verified, ", "))))
				return nil
			}

			// Verify renders the same outcome as a structured error.
			return a.report(lockfile.Verify(a.config.LockFile, out.Fingerprint))
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
