package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvOutputDir = "SEARCHSTIMS_OUTPUT_DIR"
	EnvSeed      = "SEARCHSTIMS_SEED"
	EnvWorkers   = "SEARCHSTIMS_WORKERS"
	EnvLogLevel  = "SEARCHSTIMS_LOG_LEVEL"
	EnvLogFile   = "SEARCHSTIMS_LOG_FILE"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from SEARCHSTIMS_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.General.OutputDir = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		c.General.Seed = seed
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, v, err)
		}
		c.General.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	return nil
}
