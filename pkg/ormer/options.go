package ormer

import (
	"time"

	"github.com/hlop3z/ormer/internal/cache"
	"github.com/hlop3z/ormer/internal/config"
)

// Config holds all configuration options for the Compiler.
type Config struct {
	// CacheDir is the directory holding the snapshot cache.
	// Default: ./.ormer
	CacheDir string

	// NoCache disables the snapshot cache. CompileFile then always parses
	// and resolves the document.
	NoCache bool

	// ScriptTimeout bounds the evaluation of JavaScript schema documents.
	// Default: 5s
	ScriptTimeout time.Duration

	// Concurrency bounds how many documents CompileFiles handles at once.
	// Zero means GOMAXPROCS.
	Concurrency int
}

func defaultConfig() *Config {
	return &Config{
		CacheDir:      cache.DefaultDir,
		ScriptTimeout: config.DefaultScriptTimeout,
	}
}

// Option is a functional option for configuring the Compiler.
type Option func(*Config)

// WithCacheDir sets the snapshot cache directory.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.CacheDir = dir
		}
	}
}

// WithoutCache disables the snapshot cache.
func WithoutCache() Option {
	return func(c *Config) {
		c.NoCache = true
	}
}

// WithScriptTimeout sets how long a JavaScript schema document may run.
func WithScriptTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ScriptTimeout = d
	}
}

// WithConcurrency bounds how many documents CompileFiles handles at once.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.Concurrency = n
	}
}
