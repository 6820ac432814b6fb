package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"magf/internal/fileutil"
	"magf/internal/magf"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var flags assetFlags
	var output string

	cmd := &cobra.Command{
		Use:   "encode FRAME...",
		Short: "Encode frame images, audio and cues into a MAGF container",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			assets, err := flags.load(args)
			if err != nil {
				return err
			}
			enc := magf.Encoder{StrictDimensions: cfg.Encoding.StrictDimensions}
			buf, err := enc.Encode(magf.EncodeInput{
				Frames:    assets.frames,
				Audio:     assets.audio,
				Subtitles: assets.cues,
				FPS:       flags.fpsOr(cfg.Encoding.DefaultFPS),
				Duration:  flags.duration,
			})
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			target := strings.TrimSpace(output)
			if err := fileutil.WriteFileAtomic(target, buf, 0o644); err != nil {
				return fmt.Errorf("write container: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d frames, %s)\n", target, len(assets.frames), formatBytes(len(buf)))
			if assets.removedAds > 0 {
				fmt.Fprintf(out, "Removed %d advertisement cue(s)\n", assets.removedAds)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination .magf file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
