package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"magf/internal/fileutil"
	"magf/internal/media"
)

func newToneCommand() *cobra.Command {
	var (
		output   string
		freq     float64
		length   time.Duration
		rate     int
		channels int
	)

	cmd := &cobra.Command{
		Use:         "tone",
		Short:       "Write a sine tone WAV file for use as an audio track",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if freq <= 0 || length <= 0 || rate <= 0 || channels <= 0 {
				return fmt.Errorf("tone: freq, length, rate and channels must be positive")
			}
			clip := media.SineTone(freq, length, rate, channels)
			data, err := media.EncodeWAVBytes(clip)
			if err != nil {
				return err
			}
			if err := fileutil.WriteFileAtomic(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d Hz, %d ch)\n", output, clip.Duration(), rate, channels)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination .wav file")
	cmd.Flags().Float64Var(&freq, "freq", 440, "Tone frequency in Hz")
	cmd.Flags().DurationVar(&length, "length", time.Second, "Tone length")
	cmd.Flags().IntVar(&rate, "rate", 44100, "Sample rate in Hz")
	cmd.Flags().IntVar(&channels, "channels", 1, "Channel count")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
