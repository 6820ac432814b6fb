package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"magf/internal/catalog"
	"magf/internal/config"
	"magf/internal/logging"
)

// commandContext loads configuration on first use so commands that never
// touch it (config init) work without a valid file.
type commandContext struct {
	configFlag *string

	once   sync.Once
	loaded loadedConfig
}

type loadedConfig struct {
	cfg    *config.Config
	path   string
	exists bool
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() { c.loaded = c.load() })
	return c.loaded.cfg, c.loaded.err
}

func (c *commandContext) load() loadedConfig {
	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, resolved, exists, err := config.Load(path)
	if err == nil {
		err = cfg.EnsureDirectories()
	}
	if err != nil {
		return loadedConfig{err: err}
	}
	return loadedConfig{cfg: cfg, path: resolved, exists: exists}
}

func (c *commandContext) withStore(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// logger writes to stderr; stdout carries command output.
func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Sinks:  []string{"stderr"},
	})
}

const skipConfigAnnotation = "skipConfigLoad"

var skipConfig = map[string]string{skipConfigAnnotation: "true"}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
