package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"magf/internal/api"
	"magf/internal/catalog"
	"magf/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check directories, the catalog and the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			results = append(results, catalogCheck(cmd.Context(), ctx))
			results = append(results, preflight.CheckDaemon(cmd.Context(), cfg.Paths.APIBind))

			if jsonOutput {
				return writeJSON(cmd, api.FromPreflight(results))
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			configDetail := ctx.loaded.path
			if !ctx.loaded.exists {
				configDetail += " (not found, defaults in use)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configDetail, colorize))
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				fmt.Fprintln(out, checkLine(result, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func catalogCheck(ctx context.Context, c *commandContext) preflight.Result {
	result := preflight.Result{Name: "Catalog"}
	err := c.withStore(func(store *catalog.Store) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		result.Passed = true
		result.Detail = fmt.Sprintf("%s (%d containers, %d frames, %s)",
			store.Path(), stats.Containers, stats.Frames, formatBytes(int(stats.EncodedSize)))
		return nil
	})
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}

// checkLine renders a stopped daemon as a warning; every other failure is an error.
func checkLine(result preflight.Result, colorize bool) string {
	switch {
	case result.Passed:
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	case result.Name == "Daemon" && strings.Contains(result.Detail, "not running"):
		return renderStatusLine(result.Name, statusWarn, result.Detail, colorize)
	default:
		return renderStatusLine(result.Name, statusError, result.Detail, colorize)
	}
}
