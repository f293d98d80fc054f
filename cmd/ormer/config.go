package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/cache"
	"github.com/hlop3z/ormer/internal/config"
	"github.com/hlop3z/ormer/internal/lockfile"
	"github.com/hlop3z/ormer/internal/metadata"
)

const defaultConfigFile = "ormer.yaml"

// Environment overrides.
const (
	envSchema   = "ORMER_SCHEMA"
	envCacheDir = "ORMER_CACHE_DIR"
)

// Config represents the ormer.yaml configuration file.
type Config struct {
	Schema        string        `yaml:"schema"`
	CacheDir      string        `yaml:"cache_dir"`
	NoCache       bool          `yaml:"no_cache"`
	LockFile      string        `yaml:"lock_file"`
	MetaFile      string        `yaml:"meta_file"`
	ScriptTimeout time.Duration `yaml:"script_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Schema:        "schema.yaml",
		CacheDir:      cache.DefaultDir,
		LockFile:      lockfile.DefaultPath(),
		MetaFile:      metadata.DefaultPath("."),
		ScriptTimeout: config.DefaultScriptTimeout,
	}
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
//
// A missing config file is only an error when its path was given explicitly.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrToolConfig, err, "failed to parse config file").
				WithFile(path)
		}
		cfg.Schema = expandEnvVars(cfg.Schema)
		cfg.CacheDir = expandEnvVars(cfg.CacheDir)
		cfg.LockFile = expandEnvVars(cfg.LockFile)
		cfg.MetaFile = expandEnvVars(cfg.MetaFile)
	case errors.Is(err, fs.ErrNotExist) && !flags.Changed("config"):
	default:
		return nil, alerr.Wrap(alerr.ErrToolConfig, err, "failed to read config file").
			WithFile(path)
	}

	if v := os.Getenv(envSchema); v != "" {
		cfg.Schema = v
	}
	if v := os.Getenv(envCacheDir); v != "" {
		cfg.CacheDir = v
	}

	if flags.Changed("schema") {
		cfg.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir, _ = flags.GetString("cache-dir")
	}
	if flags.Changed("no-cache") {
		cfg.NoCache, _ = flags.GetBool("no-cache")
	}

	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}
