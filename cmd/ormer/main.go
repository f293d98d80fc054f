// Package main provides the CLI for the ormer schema compiler.
// ormer reads a schema document, checks every member annotation, resolves
// the relations between models and reports what it found.
//
// Usage:
//
//	ormer check [files...]       # Validate schema documents
//	ormer check --watch          # Re-validate on every change
//	ormer parse <annotation>     # Parse one member annotation
//	ormer tables                 # List relations and join tables
//	ormer meta -o file.json      # Export schema metadata
//	ormer lock                   # Write ormer.lock
//	ormer verify                 # Compare the schema against ormer.lock
//	ormer browse                 # Interactive schema browser
//	ormer cache stats|clear      # Inspect or drop the snapshot cache
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hlop3z/ormer/internal/cli"
	"github.com/hlop3z/ormer/pkg/ormer"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("ormer: failure reported")

// app carries the global flags and output streams shared by all commands.
type app struct {
	configFile string
	verbose    bool

	out    io.Writer
	errOut io.Writer

	config *Config
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// compiler returns a Compiler configured from the loaded config.
func (a *app) compiler() *ormer.Compiler {
	opts := []ormer.Option{
		ormer.WithCacheDir(a.config.CacheDir),
		ormer.WithScriptTimeout(a.config.ScriptTimeout),
	}
	if a.config.NoCache {
		opts = append(opts, ormer.WithoutCache())
	}
	return ormer.New(opts...)
}

// compileSchema compiles the configured schema document.
func (a *app) compileSchema() (*ormer.Compiled, error) {
	c := a.compiler()
	defer c.Close()
	return c.CompileFile(a.config.Schema)
}

// report prints err to the error stream and returns errReported.
func (a *app) report(err error) error {
	fmt.Fprint(a.errOut, cli.FormatError(err))
	return errReported
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "ormer",
		Short: "Schema-definition compiler",
		Long: `ormer compiles a schema document: it parses every member annotation,
assembles the models, resolves and classifies their relations and derives
the join tables many-to-many relations need.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(a.errOut, a.verbose)
			cfg, err := loadConfig(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.config = cfg
			slog.Debug("config loaded", "file", a.configFile, "schema", cfg.Schema, "cache_dir", cfg.CacheDir)
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}
		renderHelp(out)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", defaultConfigFile, "Path to config file")
	pf.StringP("schema", "s", "", "Path to the schema document")
	pf.String("cache-dir", "", "Snapshot cache directory")
	pf.Bool("no-cache", false, "Disable the snapshot cache")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		checkCmd(a),
		parseCmd(a),
		tablesCmd(a),
		metaCmd(a),
		lockCmd(a),
		verifyCmd(a),
		browseCmd(a),
		cacheCmd(a),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetDefault(cli.Detect(os.Stdout))

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprint(os.Stderr, cli.FormatError(err))
		}
		stop()
		os.Exit(1)
	}
}
