package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"magf/internal/catalog"
	"magf/internal/logging"
	"magf/internal/media"
	"magf/internal/player"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var fromCatalog bool
	var loops int
	var workers int

	cmd := &cobra.Command{
		Use:   "play FILE|ID",
		Short: "Play a container in the terminal",
		Long: "Play decodes every frame up front and then loops through them at the\n" +
			"container frame rate, printing the frame index and active subtitle.\n" +
			"Use --catalog to play a catalog entry by id.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if loops < 0 {
				return fmt.Errorf("--loops must not be negative")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			var buf []byte
			if fromCatalog {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				err = ctx.withStore(func(store *catalog.Store) error {
					var exportErr error
					buf, exportErr = store.Export(cmd.Context(), id)
					return exportErr
				})
				if err != nil {
					return err
				}
			} else if buf, err = readContainerFile(args[0]); err != nil {
				return err
			}

			if workers <= 0 {
				workers = cfg.Player.DecodeWorkers
			}
			out := cmd.OutOrStdout()
			surface := newTerminalSurface(out, shouldColorize(out))
			p := player.New(player.Config{
				Surface:       surface,
				Audio:         silentAudio{logger: logging.NewComponentLogger(logger, "audio")},
				Logger:        logger,
				DecodeWorkers: workers,
			})
			defer p.Close()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return playUntil(runCtx, p, buf, uint64(loops), surface)
		},
	}
	cmd.Flags().BoolVar(&fromCatalog, "catalog", false, "Treat the argument as a catalog id")
	cmd.Flags().IntVar(&loops, "loops", 0, "Stop after this many loops (0 plays until interrupted)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel frame decoders (default from config)")
	return cmd
}

// playUntil loads and plays buf until ctx ends or the loop budget is spent.
func playUntil(ctx context.Context, p *player.Player, buf []byte, loops uint64, surface *terminalSurface) error {
	if err := p.Load(ctx, buf); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := p.Play(); err != nil {
		return err
	}
	defer surface.finish()

	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Pause()
			return nil
		case <-poll.C:
			if loops > 0 && p.Stats().Loops >= loops {
				p.Pause()
				return nil
			}
		}
	}
}

// terminalSurface prints playback progress. On a terminal it redraws one
// status line in place; otherwise it prints a line whenever the subtitle
// changes.
type terminalSurface struct {
	out   io.Writer
	live  bool
	last  string
	drawn bool
}

func newTerminalSurface(out io.Writer, live bool) *terminalSurface {
	return &terminalSurface{out: out, live: live}
}

func (s *terminalSurface) Resize(width, height int) {
	fmt.Fprintf(s.out, "canvas %dx%d\n", width, height)
}

func (s *terminalSurface) Render(v player.View) {
	text := ""
	if v.HasSubtitle {
		text = strings.ReplaceAll(v.Subtitle, "\n", " / ")
	}
	if s.live {
		fmt.Fprintf(s.out, "\r\x1b[2Kframe %4d  %s", v.Index, text)
		s.drawn = true
		return
	}
	if text != s.last {
		if text != "" {
			fmt.Fprintf(s.out, "frame %d: %s\n", v.Index, text)
		}
		s.last = text
	}
}

func (s *terminalSurface) finish() {
	if s.live && s.drawn {
		fmt.Fprintln(s.out)
	}
}

// silentAudio stands in for an audio device. It reports the clip it would
// have played.
type silentAudio struct {
	logger *slog.Logger
}

func (a silentAudio) Start(clip *media.Audio) error {
	a.logger.Debug("audio start",
		logging.Int("sample_rate", clip.SampleRate),
		logging.Int("channels", clip.Channels),
		logging.Duration("length", clip.Duration()),
	)
	return nil
}

func (a silentAudio) Stop() {
	a.logger.Debug("audio stop")
}
