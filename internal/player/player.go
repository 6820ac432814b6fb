package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"magf/internal/logging"
	"magf/internal/magf"
	"magf/internal/media"
)

// View is what the surface draws for one frame.
type View struct {
	Index       int
	Image       image.Image
	Subtitle    string
	HasSubtitle bool
}

// Surface receives frames. Render is called with the player lock held, so it
// must not call Load, Play, Pause, Restart or Close.
type Surface interface {
	Resize(width, height int)
	Render(View)
}

// AudioOutput plays a decoded clip from its beginning.
type AudioOutput interface {
	Start(*media.Audio) error
	Stop()
}

// Config wires a Player to its host. Only Surface is required.
type Config struct {
	Surface Surface
	Audio   AudioOutput
	Clock   Clock
	Logger  *slog.Logger
	// DecodeWorkers above 1 decodes frames in parallel during Load.
	DecodeWorkers int
	DecodeFrame   func(index int, data []byte) (image.Image, error)
	DecodeAudio   func(data []byte) (*media.Audio, error)
}

// Stats counts playback events for the current player.
type Stats struct {
	Ticks         uint64
	Loops         uint64
	AudioRestarts uint64
}

type session struct {
	id       string
	manifest *magf.Manifest
	err      error
}

// Player is a playback state machine for one container at a time.
type Player struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	gen         uint64
	closed      bool
	frames      []image.Image
	audio       *media.Audio
	cues        []magf.Cue
	interval    time.Duration
	ticker      Ticker
	stop        chan struct{}
	accumulated time.Duration
	startedAt   time.Time

	state         atomic.Int32
	index         atomic.Int64
	subtitle      atomic.Pointer[string]
	session       atomic.Pointer[session]
	ticks         atomic.Uint64
	loops         atomic.Uint64
	audioRestarts atomic.Uint64
}

// New returns an Idle player.
func New(cfg Config) *Player {
	if cfg.Clock == nil {
		cfg.Clock = WallClock{}
	}
	if cfg.Surface == nil {
		cfg.Surface = nopSurface{}
	}
	if cfg.DecodeFrame == nil {
		cfg.DecodeFrame = media.DecodeFrame
	}
	if cfg.DecodeAudio == nil {
		cfg.DecodeAudio = media.DecodeAudio
	}
	p := &Player{
		cfg:    cfg,
		logger: logging.NewComponentLogger(cfg.Logger, "player"),
	}
	p.session.Store(&session{})
	return p
}

// Load decodes buf and materializes its assets. It blocks until the player is
// Ready or Failed. Any current playback is stopped and its assets dropped.
func (p *Player) Load(ctx context.Context, buf []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.State() == Loading {
		p.mu.Unlock()
		return ErrLoadInProgress
	}
	p.haltLocked()
	p.releaseLocked()
	p.gen++
	gen := p.gen
	id := uuid.NewString()
	p.session.Store(&session{id: id})
	p.setState(Loading)
	p.mu.Unlock()

	logger := p.logger.With(logging.String(logging.FieldSessionID, id))
	logger.Debug("loading container", logging.Int("bytes", len(buf)))
	started := time.Now()
	loaded, err := p.materialize(ctx, buf)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return ErrClosed
	}
	if err != nil {
		p.session.Store(&session{id: id, err: err})
		p.setState(Failed)
		logger.Warn("container load failed", logging.Error(err))
		return err
	}

	manifest := loaded.container.Manifest
	p.frames = loaded.frames
	p.audio = loaded.audio
	p.cues = loaded.container.Subtitles
	p.interval = loaded.container.Interval()
	p.session.Store(&session{id: id, manifest: &manifest})
	p.setState(Ready)
	p.cfg.Surface.Resize(manifest.Width, manifest.Height)
	p.renderLocked(0, "", false)

	logger.Info("container loaded",
		logging.Int("frames", manifest.Frames),
		logging.Int("fps", int(loaded.container.Header.FPS)),
		logging.Bool("audio", loaded.audio != nil),
		logging.Int("cues", len(p.cues)),
		logging.Duration("took", time.Since(started)),
	)
	return nil
}

type materialized struct {
	container *magf.Container
	frames    []image.Image
	audio     *media.Audio
}

func (p *Player) materialize(ctx context.Context, buf []byte) (*materialized, error) {
	container, err := magf.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode container: %w", err)
	}
	frames, err := p.decodeFrames(ctx, container.Frames)
	if err != nil {
		return nil, err
	}
	out := &materialized{container: container, frames: frames}
	if container.HasAudio() {
		audio, err := p.cfg.DecodeAudio(container.Audio)
		if err == nil && audio == nil {
			err = errors.New("decoder returned no audio")
		}
		if err != nil {
			return nil, asAssetError(magf.AssetAudio, -1, err)
		}
		out.audio = audio
	}
	return out, nil
}

// decodeFrames returns images in table order. With more than one worker the
// decodes run concurrently but each result lands in its own index slot.
func (p *Player) decodeFrames(ctx context.Context, blobs [][]byte) ([]image.Image, error) {
	images := make([]image.Image, len(blobs))
	if p.cfg.DecodeWorkers <= 1 {
		for i, blob := range blobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := p.decodeFrame(i, blob)
			if err != nil {
				return nil, err
			}
			images[i] = img
		}
		return images, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.DecodeWorkers)
	for i, blob := range blobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := p.decodeFrame(i, blob)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (p *Player) decodeFrame(index int, data []byte) (image.Image, error) {
	img, err := p.cfg.DecodeFrame(index, data)
	if err == nil && img == nil {
		err = errors.New("decoder returned no image")
	}
	if err != nil {
		return nil, asAssetError(magf.AssetFrame, index, err)
	}
	return img, nil
}

func asAssetError(kind string, index int, err error) error {
	if errors.Is(err, magf.ErrAssetDecode) {
		return err
	}
	return &magf.AssetError{Kind: kind, Index: index, Err: err}
}

// Play starts or resumes playback. Audio always starts from its beginning.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.State() {
	case Playing:
		return nil
	case Ready, Paused:
	default:
		return ErrNotReady
	}

	p.gen++
	gen := p.gen
	p.startedAt = p.cfg.Clock.Now()
	ticker := p.cfg.Clock.NewTicker(p.interval)
	stop := make(chan struct{})
	p.ticker, p.stop = ticker, stop
	p.startAudioLocked()
	p.setState(Playing)
	go p.run(gen, ticker, stop)
	return nil
}

func (p *Player) run(gen uint64, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			p.tick(gen)
		}
	}
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.State() != Playing {
		return
	}

	idx := int(p.index.Load())
	cue, ok := magf.ActiveCue(p.cues, p.elapsedLocked().Seconds())
	p.renderLocked(idx, cue.Text, ok)
	p.ticks.Add(1)

	next := (idx + 1) % len(p.frames)
	if next == 0 {
		p.loops.Add(1)
		if p.audio != nil && p.cfg.Audio != nil {
			p.cfg.Audio.Stop()
			p.startAudioLocked()
			p.audioRestarts.Add(1)
		}
	}
	p.index.Store(int64(next))
}

// Pause stops the ticker and audio, keeping the frame index and elapsed
// time. It is a no-op unless playing. No frame is rendered after Pause
// returns.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.State() != Playing {
		return
	}
	p.haltLocked()
	p.setState(Paused)
}

// Restart returns to frame 0 in Ready and redraws it without starting the
// ticker. Elapsed time and the active subtitle are cleared.
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.State() {
	case Ready, Playing, Paused:
	default:
		return ErrNotReady
	}
	p.haltLocked()
	p.gen++
	p.index.Store(0)
	p.accumulated = 0
	p.setState(Ready)
	p.renderLocked(0, "", false)
	return nil
}

// Close stops playback and drops all assets. The player cannot be reused.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.haltLocked()
	p.gen++
	p.closed = true
	p.releaseLocked()
	p.setState(Idle)
}

// haltLocked cancels the running tick loop, if any, and folds the current
// run into the accumulated elapsed time.
func (p *Player) haltLocked() {
	if p.State() != Playing {
		return
	}
	p.gen++
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	p.accumulated += p.cfg.Clock.Now().Sub(p.startedAt)
	if p.audio != nil && p.cfg.Audio != nil {
		p.cfg.Audio.Stop()
	}
}

func (p *Player) releaseLocked() {
	p.frames = nil
	p.audio = nil
	p.cues = nil
	p.interval = 0
	p.accumulated = 0
	p.index.Store(0)
	p.subtitle.Store(nil)
}

func (p *Player) elapsedLocked() time.Duration {
	if p.State() != Playing {
		return p.accumulated
	}
	return p.accumulated + p.cfg.Clock.Now().Sub(p.startedAt)
}

func (p *Player) startAudioLocked() {
	if p.audio == nil || p.cfg.Audio == nil {
		return
	}
	if err := p.cfg.Audio.Start(p.audio); err != nil {
		p.logger.Warn("audio start failed; continuing without sound",
			logging.String(logging.FieldSessionID, p.SessionID()),
			logging.Error(err),
		)
	}
}

func (p *Player) renderLocked(idx int, text string, hasText bool) {
	if hasText {
		p.subtitle.Store(&text)
	} else {
		p.subtitle.Store(nil)
	}
	p.cfg.Surface.Render(View{
		Index:       idx,
		Image:       p.frames[idx],
		Subtitle:    text,
		HasSubtitle: hasText,
	})
}

func (p *Player) setState(s State) {
	p.state.Store(int32(s))
}

// State reports the current lifecycle state.
func (p *Player) State() State {
	return State(p.state.Load())
}

// CurrentFrame is the index the next tick will render.
func (p *Player) CurrentFrame() int {
	return int(p.index.Load())
}

// ActiveSubtitle is the cue text shown with the most recently rendered frame.
func (p *Player) ActiveSubtitle() (string, bool) {
	if text := p.subtitle.Load(); text != nil {
		return *text, true
	}
	return "", false
}

// Err is the error that put the player in Failed, if any.
func (p *Player) Err() error {
	return p.session.Load().err
}

// SessionID identifies the most recent Load. It is empty before the first.
func (p *Player) SessionID() string {
	return p.session.Load().id
}

// Manifest returns the loaded container manifest.
func (p *Player) Manifest() (magf.Manifest, bool) {
	if m := p.session.Load().manifest; m != nil {
		return *m, true
	}
	return magf.Manifest{}, false
}

// Stats returns playback counters accumulated over the player lifetime.
func (p *Player) Stats() Stats {
	return Stats{
		Ticks:         p.ticks.Load(),
		Loops:         p.loops.Load(),
		AudioRestarts: p.audioRestarts.Load(),
	}
}

type nopSurface struct{}

func (nopSurface) Resize(int, int) {}

func (nopSurface) Render(View) {}
