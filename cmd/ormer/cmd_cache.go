package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/cache"
	"github.com/hlop3z/ormer/internal/cli"
)

// cacheCmd inspects or clears the snapshot cache.
func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the snapshot cache",
		Long: `The snapshot cache (.ormer/cache.db) keeps resolved schemas keyed by
document content, so unchanged documents are not parsed again. It is
optional and safe to delete.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.config.CacheDir
			if !cache.Exists(dir) {
				fmt.Fprint(a.out, cli.RenderPanel(cli.PanelInfo, "No cache", cli.FormatKeyValue("Directory", dir)))
				return nil
			}

			c, err := cache.Open(dir)
			if err != nil {
				return a.report(err)
			}
			defer c.Close()

			stats, err := c.GetStats()
			if err != nil {
				return a.report(err)
			}
			fmt.Fprint(a.out, cli.RenderPanel(cli.PanelInfo, "Snapshot cache",
				cli.FormatKeyValue("File", c.Path())+"\n"+
					cli.FormatKeyValue("Snapshots", fmt.Sprint(stats.Snapshots))+"\n"+
					cli.FormatKeyValue("Documents", fmt.Sprint(stats.Sources))+"\n"+
					cli.FormatKeyValue("Size", fmt.Sprintf("%d bytes", stats.DatabaseSize))))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cache.Remove(a.config.CacheDir); err != nil {
				return a.report(err)
			}
			fmt.Fprint(a.out, cli.FormatSuccess("cache cleared: "+a.config.CacheDir))
			return nil
		},
	})

	return cmd
}
