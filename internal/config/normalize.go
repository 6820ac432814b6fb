package config

import (
	"fmt"
	"os"
	"strings"
)

// normalize fills omitted values with defaults and expands "~" in paths.
// Validation runs afterwards on the normalized result.
func (c *Config) normalize() error {
	dirs := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, dir := range dirs {
		raw := strings.TrimSpace(*dir.value)
		if raw == "" {
			raw = dir.fallback
		}
		expanded, err := expandPath(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", dir.key, err)
		}
		*dir.value = expanded
	}

	c.Paths.APIBind = firstNonEmpty(os.Getenv(apiBindEnv), c.Paths.APIBind, defaultAPIBind)

	if c.Encoding.DefaultFPS == 0 {
		c.Encoding.DefaultFPS = defaultFPS
	}
	if c.Player.DecodeWorkers <= 0 {
		c.Player.DecodeWorkers = defaultDecodeWorkers
	}

	// Unknown formats fall back to console; unknown levels are rejected by
	// validate.
	if strings.EqualFold(strings.TrimSpace(c.Logging.Format), "json") {
		c.Logging.Format = "json"
	} else {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(firstNonEmpty(c.Logging.Level, defaultLogLevel))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
