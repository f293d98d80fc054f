// Package cli renders ormer diagnostics and reports for the terminal.
// Errors are printed Cargo/rustc-style, reports as tables and panels,
// and color is only used when the output is an interactive terminal.
package cli

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text without colors (pipes and CI).
	ModePlain
	// ModeJSON outputs structured JSON for programmatic consumption.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTTY:
		return "tty"
	case ModePlain:
		return "plain"
	case ModeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Config holds CLI output configuration.
type Config struct {
	Mode   OutputMode
	Out    io.Writer
	ErrOut io.Writer
}

// Detect returns the configuration for the given output file.
// Rules:
//   - f is a terminal and neither NO_COLOR nor TERM=dumb is set -> ModeTTY
//   - anything else -> ModePlain
//
// ModeJSON is only ever selected explicitly, through WithMode.
func Detect(f *os.File) *Config {
	return &Config{
		Mode:   detectMode(f),
		Out:    f,
		ErrOut: os.Stderr,
	}
}

func detectMode(f *os.File) OutputMode {
	if f == nil {
		return ModePlain
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return ModePlain
	}
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return ModePlain
	}
	return ModeTTY
}

// WithMode returns a copy of c using mode.
func (c *Config) WithMode(mode OutputMode) *Config {
	cp := *c
	cp.Mode = mode
	return &cp
}

// IsTTY returns true if running in interactive terminal mode.
func (c *Config) IsTTY() bool { return c.Mode == ModeTTY }

// IsJSON returns true if running in JSON output mode.
func (c *Config) IsJSON() bool { return c.Mode == ModeJSON }

var (
	defaultMu  sync.RWMutex
	defaultCfg *Config
)

// Default returns the process-wide configuration, detecting it from stdout
// on first use.
func Default() *Config {
	defaultMu.RLock()
	cfg := defaultCfg
	defaultMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCfg == nil {
		defaultCfg = Detect(os.Stdout)
	}
	return defaultCfg
}

// SetDefault replaces the process-wide configuration. Passing nil makes the
// next Default call detect it again.
func SetDefault(cfg *Config) {
	defaultMu.Lock()
	defaultCfg = cfg
	defaultMu.Unlock()
}

// EnableColors returns true if colors should be used.
func EnableColors() bool {
	return Default().IsTTY()
}
