package testsupport

import (
	"path/filepath"
	"testing"

	"magf/internal/config"
)

// ConfigOption adjusts a generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns defaults rooted in a per-test temp directory, with the
// API bound to an ephemeral loopback port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithStrictDimensions makes the encoder reject mismatched frame sizes.
func WithStrictDimensions() ConfigOption {
	return func(c *config.Config) { c.Encoding.StrictDimensions = true }
}

// WithDefaultFPS overrides the encoding default frame rate.
func WithDefaultFPS(fps int) ConfigOption {
	return func(c *config.Config) { c.Encoding.DefaultFPS = fps }
}

// WithDecodeWorkers sets the player's parallel decode width.
func WithDecodeWorkers(n int) ConfigOption {
	return func(c *config.Config) { c.Player.DecodeWorkers = n }
}

// BaseDir returns the temp directory holding the data and log directories.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
