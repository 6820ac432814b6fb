package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"magf/internal/api"
	"magf/internal/catalog"
	"magf/internal/fileutil"
	"magf/internal/magf"
	"magf/internal/subtitles"
	"magf/internal/textutil"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"cat"},
		Short:   "Manage the local container catalog",
	}
	catalogCmd.AddCommand(newCatalogAddCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogRemoveCommand(ctx))
	catalogCmd.AddCommand(newCatalogExportCommand(ctx))
	return catalogCmd
}

func newCatalogAddCommand(ctx *commandContext) *cobra.Command {
	var flags assetFlags
	var name string
	var metadata map[string]string

	cmd := &cobra.Command{
		Use:   "add FRAME...",
		Short: "Store frame images, audio and cues as a new catalog entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := flags.load(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				entry, err := store.Create(cmd.Context(), catalog.CreateRequest{
					Name:      name,
					Frames:    assets.frames,
					Audio:     assets.audio,
					Subtitles: assets.cues,
					FPS:       flags.fps,
					Duration:  flags.duration,
					Metadata:  metadata,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added container #%d %q (%d frames, %s)\n",
					entry.ID, entry.Name, entry.FrameCount, formatBytes(entry.EncodedSize))
				if assets.removedAds > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d advertisement cue(s)\n", assets.removedAds)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Entry name (default MAGF-<id>)")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "Metadata key=value pairs")
	return cmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.ContainerListResponse{Containers: api.FromEntries(entries)})
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.Name,
						strconv.Itoa(e.FrameCount),
						fmt.Sprintf("%dx%d", e.Width, e.Height),
						strconv.Itoa(e.FPS),
						formatSeconds(e.Duration),
						tracks(e),
						formatBytes(e.EncodedSize),
						humanize.Time(e.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Frames", "Canvas", "FPS", "Duration", "Tracks", "Size", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func tracks(e *catalog.Entry) string {
	parts := []string{"video"}
	if e.HasAudio {
		parts = append(parts, "audio")
	}
	if e.HasText {
		parts = append(parts, "text")
	}
	return strings.Join(parts, "+")
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				entry, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromEntry(entry))
				}
				renderEntry(cmd.OutOrStdout(), entry)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderEntry(out io.Writer, e *catalog.Entry) {
	fmt.Fprintf(out, "#%d %s\n", e.ID, e.Name)
	fmt.Fprintf(out, "  Frames:    %d at %d fps\n", e.FrameCount, e.FPS)
	fmt.Fprintf(out, "  Canvas:    %dx%d\n", e.Width, e.Height)
	fmt.Fprintf(out, "  Duration:  %s\n", formatSeconds(e.Duration))
	fmt.Fprintf(out, "  Tracks:    %s\n", tracks(e))
	fmt.Fprintf(out, "  Size:      %s\n", formatBytes(e.EncodedSize))
	fmt.Fprintf(out, "  Created:   %s (%s)\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(e.CreatedAt))
	if len(e.Metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(out, "  Metadata:")
	for _, k := range keys {
		fmt.Fprintf(out, "    %s = %s\n", k, e.Metadata[k])
	}
}

func newCatalogRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"remove"},
		Short:   "Delete catalog entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return ctx.withStore(func(store *catalog.Store) error {
				for _, id := range ids {
					if err := store.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete #%d: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted container #%d\n", id)
				}
				return nil
			})
		},
	}
}

func newCatalogExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var srtOutput string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Encode a catalog entry to a .magf file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				assets, err := store.Assets(cmd.Context(), id)
				if err != nil {
					return err
				}
				buf, err := store.Export(cmd.Context(), id)
				if err != nil {
					return err
				}

				target := strings.TrimSpace(output)
				if target == "" {
					target = exportFileName(assets.Entry)
				}
				if err := fileutil.WriteFileAtomic(target, buf, 0o644); err != nil {
					return fmt.Errorf("write container: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Wrote %s (%s)\n", target, formatBytes(len(buf)))

				if srt := strings.TrimSpace(srtOutput); srt != "" {
					if err := writeSRTFile(srt, assets); err != nil {
						return err
					}
					fmt.Fprintf(out, "Wrote %s (%d cues)\n", srt, len(assets.Subtitles))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default <name>.magf)")
	cmd.Flags().StringVar(&srtOutput, "srt", "", "Also write the text track as SRT to this path")
	return cmd
}

func exportFileName(e *catalog.Entry) string {
	name := textutil.FileName(e.Name)
	if name == "" {
		name = catalog.DefaultName(e.ID)
	}
	return name + magf.FileExtension
}

func writeSRTFile(path string, assets *catalog.Assets) error {
	if !assets.Entry.HasText {
		return fmt.Errorf("container #%d has no text track", assets.Entry.ID)
	}
	var buf bytes.Buffer
	if err := subtitles.WriteSRT(&buf, assets.Subtitles); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
