package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
)

const maxDecodeWorkers = 64

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	_, port, err := net.SplitHostPort(c.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("paths.api_bind %q: %w", c.Paths.APIBind, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > math.MaxUint16 {
		return fmt.Errorf("paths.api_bind %q: invalid port", c.Paths.APIBind)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.DefaultFPS < 1 || c.Encoding.DefaultFPS > math.MaxUint16 {
		return fmt.Errorf("encoding.default_fps must be between 1 and %d", math.MaxUint16)
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.DecodeWorkers > maxDecodeWorkers {
		return fmt.Errorf("player.decode_workers must be at most %d", maxDecodeWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
