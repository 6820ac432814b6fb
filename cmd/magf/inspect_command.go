package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"magf/internal/api"
	"magf/internal/magf"
)

func newInspectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "inspect FILE",
		Short:       "Describe the structure of a MAGF container",
		Args:        cobra.ExactArgs(1),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := readContainerFile(args[0])
			if err != nil {
				return err
			}
			result, err := api.Inspect(buf)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			renderInspect(cmd.OutOrStdout(), args[0], result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// readContainerFile refuses files larger than the container ceiling before
// reading them into memory.
func readContainerFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	if info.Size() > magf.MaxContainerSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", magf.ErrSizeLimitExceeded, path, info.Size())
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return buf, nil
}

func renderInspect(out io.Writer, name string, r *api.InspectResult) {
	m := r.Manifest
	fmt.Fprintf(out, "%s\n", name)
	fmt.Fprintf(out, "  Version:   %d\n", r.Version)
	fmt.Fprintf(out, "  Size:      %s\n", formatBytes(r.TotalSize))
	fmt.Fprintf(out, "  Duration:  %s\n", formatSeconds(r.Duration))
	fmt.Fprintf(out, "  FPS:       %d (%.2f ms/frame)\n", r.FPS, r.IntervalMS)
	fmt.Fprintf(out, "  Canvas:    %dx%d\n", m.Width, m.Height)
	fmt.Fprintf(out, "  Audio:     %s\n", yesNo(m.Audio))
	fmt.Fprintf(out, "  Text:      %s\n", yesNo(m.Text))

	rows := make([][]string, 0, len(r.Frames))
	for _, f := range r.Frames {
		dims := ""
		if f.Width > 0 {
			dims = fmt.Sprintf("%dx%d", f.Width, f.Height)
		}
		format := f.Format
		if f.Error != "" {
			format = "error: " + f.Error
		}
		rows = append(rows, []string{strconv.Itoa(f.Index), formatBytes(f.Size), dims, format})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"#", "Size", "Dimensions", "Format"}, rows, []columnAlignment{alignRight, alignRight}))

	if a := r.Audio; a != nil {
		fmt.Fprintln(out)
		if a.Error != "" {
			fmt.Fprintf(out, "Audio: %s (error: %s)\n", formatBytes(a.Size), a.Error)
		} else {
			fmt.Fprintf(out, "Audio: %s, %d Hz, %d ch, %d-bit, %s\n",
				formatBytes(a.Size), a.SampleRate, a.Channels, a.BitDepth, formatSeconds(a.Seconds))
		}
	}

	if len(r.Subtitles) > 0 {
		cueRows := make([][]string, 0, len(r.Subtitles))
		for i, c := range r.Subtitles {
			cueRows = append(cueRows, []string{
				strconv.Itoa(i),
				formatSeconds(c.Start),
				formatSeconds(c.End),
				strings.ReplaceAll(c.Text, "\n", " / "),
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"#", "Start", "End", "Text"}, cueRows, []columnAlignment{alignRight, alignRight, alignRight}))
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
