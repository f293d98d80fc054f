package main

import (
	"fmt"
	"io"

	"github.com/hlop3z/ormer/internal/cli"
)

// commandInfo is one line of the root help.
type commandInfo struct {
	name, desc string
}

// commandCategory groups related commands in the root help.
type commandCategory struct {
	title    string
	commands []commandInfo
}

var helpCategories = []commandCategory{
	{
		title: "Schema",
		commands: []commandInfo{
			{"check", "Validate schema documents (--watch to re-run on change)"},
			{"parse", "Parse one member annotation"},
			{"tables", "List relations and many-to-many join tables"},
			{"browse", "Browse models and relations interactively"},
		},
	},
	{
		title: "Artifacts",
		commands: []commandInfo{
			{"meta", "Export schema metadata to a JSON file"},
			{"lock", "Write the schema fingerprint to ormer.lock"},
			{"verify", "Compare the schema against ormer.lock"},
			{"cache", "Inspect or clear the snapshot cache"},
		},
	},
}

var helpFlags = []commandInfo{
	{"-c, --config", "Path to config file (default: ormer.yaml)"},
	{"-s, --schema", "Path to the schema document (default: schema.yaml)"},
	{"    --cache-dir", "Snapshot cache directory (default: .ormer)"},
	{"    --no-cache", "Disable the snapshot cache"},
	{"-v, --verbose", "Enable debug logging"},
	{"-h, --help", "Show help information"},
}

// renderHelp writes the categorized root help.
func renderHelp(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", cli.Bold("ormer - schema-definition compiler"))
	fmt.Fprintf(w, "%s ormer <command> [flags]\n\n", cli.Dim("Usage:"))

	for _, cat := range helpCategories {
		fmt.Fprintln(w, cli.Accent(cat.title))
		for _, c := range cat.commands {
			fmt.Fprintf(w, "  %-10s %s\n", c.name, c.desc)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, cli.Accent("Flags"))
	for _, f := range helpFlags {
		fmt.Fprintf(w, "  %-18s %s\n", f.name, f.desc)
	}
	fmt.Fprintf(w, "\nRun 'ormer <command> --help' for details on a command.\n")
}
