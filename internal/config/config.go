// Package config carries process-wide settings shared by the CLI and the
// workflow packages.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Verbose enables debug logging when true.
var Verbose bool

// LoadEnv loads a local .env file (if one exists) so credentials can come
// from the environment instead of argv. Must run before flag parsing for
// env-backed flag defaults to resolve.
func LoadEnv() {
	_ = godotenv.Load()
}

// SetVerbose wires the default slog logger to the requested level.
func SetVerbose(verbose bool) {
	Verbose = verbose
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
