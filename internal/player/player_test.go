package player

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"magf/internal/magf"
	"magf/internal/media"
)

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticker = &manualTicker{ch: make(chan time.Time)}
	return c.ticker
}

// advance moves time forward and, when fire is set, delivers one tick to the
// running ticker.
func (c *manualClock) advance(t *testing.T, d time.Duration, fire bool) {
	t.Helper()
	c.mu.Lock()
	c.now = c.now.Add(d)
	now, ticker := c.now, c.ticker
	c.mu.Unlock()
	if !fire {
		return
	}
	if ticker == nil || ticker.isStopped() {
		t.Fatal("no running ticker to fire")
	}
	select {
	case ticker.ch <- now:
	case <-time.After(2 * time.Second):
		t.Fatal("tick was not received")
	}
}

type recordingSurface struct {
	mu            sync.Mutex
	width, height int
	renders       chan View
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{renders: make(chan View, 64)}
}

func (s *recordingSurface) Resize(w, h int) {
	s.mu.Lock()
	s.width, s.height = w, h
	s.mu.Unlock()
}

func (s *recordingSurface) Render(v View) { s.renders <- v }

func (s *recordingSurface) next(t *testing.T) View {
	t.Helper()
	select {
	case v := <-s.renders:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for render")
		return View{}
	}
}

func (s *recordingSurface) expectNone(t *testing.T) {
	t.Helper()
	select {
	case v := <-s.renders:
		t.Fatalf("unexpected render of frame %d", v.Index)
	default:
	}
}

type fakeAudio struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (a *fakeAudio) Start(*media.Audio) error {
	a.mu.Lock()
	a.starts++
	a.mu.Unlock()
	return nil
}

func (a *fakeAudio) Stop() {
	a.mu.Lock()
	a.stops++
	a.mu.Unlock()
}

func (a *fakeAudio) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts, a.stops
}

// frameImage encodes the frame index in the image width so ordering is visible.
func frameImage(index int, data []byte) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, int(data[0])+1, 1)), nil
}

func renderedIndex(v View) int {
	return v.Image.Bounds().Dx() - 1
}

func fakeAudioDecode([]byte) (*media.Audio, error) {
	return &media.Audio{SampleRate: 8000, Channels: 1, BitDepth: 16, Samples: make([]int, 800)}, nil
}

func container(t *testing.T, frames int, fps int, audio bool, cues []magf.Cue) []byte {
	t.Helper()
	in := magf.EncodeInput{FPS: fps, Subtitles: cues}
	for i := 0; i < frames; i++ {
		in.Frames = append(in.Frames, magf.Frame{Data: []byte{byte(i)}, Width: 4, Height: 3})
	}
	if audio {
		in.Audio = []byte("RIFF")
	}
	buf, err := magf.Encode(in)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf
}

type harness struct {
	clock   *manualClock
	surface *recordingSurface
	audio   *fakeAudio
	player  *Player
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{clock: newManualClock(), surface: newRecordingSurface(), audio: &fakeAudio{}}
	cfg := Config{
		Surface:     h.surface,
		Audio:       h.audio,
		Clock:       h.clock,
		DecodeFrame: frameImage,
		DecodeAudio: fakeAudioDecode,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.player = New(cfg)
	t.Cleanup(h.player.Close)
	return h
}

func (h *harness) load(t *testing.T, buf []byte) {
	t.Helper()
	if err := h.player.Load(context.Background(), buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v := h.surface.next(t); v.Index != 0 || renderedIndex(v) != 0 {
		t.Fatalf("expected frame 0 on load, got %d", v.Index)
	}
}

func (h *harness) play(t *testing.T) {
	t.Helper()
	if err := h.player.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
}

// tick advances by d, fires one tick and waits until it has fully run.
func (h *harness) tick(t *testing.T, d time.Duration) View {
	t.Helper()
	h.clock.advance(t, d, true)
	v := h.surface.next(t)
	h.player.mu.Lock()
	h.player.mu.Unlock()
	return v
}

func TestLoadRendersFirstFrameAndResizes(t *testing.T) {
	h := newHarness(t, nil)
	if h.player.State() != Idle {
		t.Fatalf("expected idle, got %s", h.player.State())
	}
	h.load(t, container(t, 4, 10, false, nil))

	if h.player.State() != Ready {
		t.Fatalf("expected ready, got %s", h.player.State())
	}
	if h.surface.width != 4 || h.surface.height != 3 {
		t.Fatalf("surface not resized: %dx%d", h.surface.width, h.surface.height)
	}
	m, ok := h.player.Manifest()
	if !ok || m.Frames != 4 || m.FPS != 10 {
		t.Fatalf("unexpected manifest %+v (%v)", m, ok)
	}
	if h.player.SessionID() == "" {
		t.Fatal("expected a session id")
	}
	if h.player.Err() != nil {
		t.Fatalf("unexpected error %v", h.player.Err())
	}
}

func TestLoopWraparoundRestartsAudioOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 4, 10, true, nil))
	h.play(t)

	want := []int{0, 1, 2, 3, 0}
	for i, idx := range want {
		v := h.tick(t, 100*time.Millisecond)
		if renderedIndex(v) != idx || v.Index != idx {
			t.Fatalf("tick %d rendered frame %d, want %d", i+1, v.Index, idx)
		}
	}

	if got := h.player.CurrentFrame(); got != 5%4 {
		t.Fatalf("current frame = %d, want 1", got)
	}
	stats := h.player.Stats()
	if stats.Ticks != 5 || stats.Loops != 1 || stats.AudioRestarts != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	starts, stops := h.audio.counts()
	if starts != 2 || stops != 1 {
		t.Fatalf("audio starts=%d stops=%d, want 2 and 1", starts, stops)
	}
}

func TestLoopWithoutAudioCountsLoops(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 2, 10, false, nil))
	h.play(t)
	for i := 0; i < 4; i++ {
		h.tick(t, 100*time.Millisecond)
	}
	stats := h.player.Stats()
	if stats.Loops != 2 || stats.AudioRestarts != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if starts, _ := h.audio.counts(); starts != 0 {
		t.Fatalf("audio started without a clip: %d", starts)
	}
}

func TestSubtitleActivationInclusiveWindow(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 100, 10, false, []magf.Cue{{Start: 1.5, End: 3.0, Text: "X"}}))
	h.play(t)

	steps := []struct {
		advance time.Duration
		active  bool
	}{
		{1490 * time.Millisecond, false}, // 1.49
		{10 * time.Millisecond, true},    // 1.50
		{1500 * time.Millisecond, true},  // 3.00
		{10 * time.Millisecond, false},   // 3.01
	}
	for i, step := range steps {
		v := h.tick(t, step.advance)
		if v.HasSubtitle != step.active {
			t.Fatalf("step %d: subtitle active = %v, want %v", i, v.HasSubtitle, step.active)
		}
		text, ok := h.player.ActiveSubtitle()
		if ok != step.active || (ok && text != "X") || (v.HasSubtitle && v.Subtitle != "X") {
			t.Fatalf("step %d: ActiveSubtitle = %q %v", i, text, ok)
		}
	}
}

func TestPauseResumeContinuesFromSameFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 4, 10, true, []magf.Cue{{Start: 0.25, End: 0.35, Text: "after"}}))
	h.play(t)
	h.tick(t, 100*time.Millisecond)
	h.tick(t, 100*time.Millisecond)

	h.player.Pause()
	if h.player.State() != Paused {
		t.Fatalf("expected paused, got %s", h.player.State())
	}
	if h.player.CurrentFrame() != 2 {
		t.Fatalf("paused at %d, want 2", h.player.CurrentFrame())
	}
	h.player.Pause() // no-op
	h.clock.advance(t, 5*time.Second, false)

	h.play(t)
	v := h.tick(t, 100*time.Millisecond)
	if v.Index != 2 {
		t.Fatalf("resumed at frame %d, want 2", v.Index)
	}
	if !v.HasSubtitle || v.Subtitle != "after" {
		t.Fatalf("expected elapsed time to exclude the pause, got %+v", v)
	}
	if starts, stops := h.audio.counts(); starts != 2 || stops != 1 {
		t.Fatalf("audio starts=%d stops=%d", starts, stops)
	}
}

func TestPlayWhilePlayingIsNoOp(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 3, 10, true, nil))
	h.play(t)
	first := h.clock.ticker
	h.play(t)
	if h.clock.ticker != first {
		t.Fatal("second Play should not create a new ticker")
	}
	if starts, _ := h.audio.counts(); starts != 1 {
		t.Fatalf("audio started %d times", starts)
	}
}

func TestRestartReturnsToFirstFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 4, 10, false, []magf.Cue{{Start: 0, End: 10, Text: "on"}}))
	h.play(t)
	h.tick(t, 100*time.Millisecond)
	h.tick(t, 100*time.Millisecond)
	h.tick(t, 100*time.Millisecond)
	ticker := h.clock.ticker

	if err := h.player.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	v := h.surface.next(t)
	if v.Index != 0 || v.HasSubtitle {
		t.Fatalf("restart should redraw frame 0 without subtitle, got %+v", v)
	}
	if h.player.State() != Ready || h.player.CurrentFrame() != 0 {
		t.Fatalf("state=%s frame=%d", h.player.State(), h.player.CurrentFrame())
	}
	if _, ok := h.player.ActiveSubtitle(); ok {
		t.Fatal("subtitle should be cleared")
	}
	if !ticker.isStopped() {
		t.Fatal("restart should stop the ticker")
	}

	h.play(t)
	if v := h.tick(t, 100*time.Millisecond); v.Index != 0 {
		t.Fatalf("play after restart rendered %d", v.Index)
	}
}

func TestStaleTickDoesNotRender(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 4, 10, false, nil))
	h.play(t)

	h.player.mu.Lock()
	gen := h.player.gen
	h.player.mu.Unlock()

	h.player.Pause()
	h.player.tick(gen)
	h.surface.expectNone(t)
	if h.player.Stats().Ticks != 0 {
		t.Fatalf("stale tick counted: %+v", h.player.Stats())
	}

	if err := h.player.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	h.surface.next(t)
	h.player.tick(gen)
	h.surface.expectNone(t)
}

func TestLoadFailureTransitionsToFailed(t *testing.T) {
	h := newHarness(t, nil)
	err := h.player.Load(context.Background(), []byte("definitely not a container"))
	if !errors.Is(err, magf.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if h.player.State() != Failed {
		t.Fatalf("expected failed, got %s", h.player.State())
	}
	if !errors.Is(h.player.Err(), magf.ErrInvalidFormat) {
		t.Fatalf("Err() = %v", h.player.Err())
	}
	h.surface.expectNone(t)
	if err := h.player.Play(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Play from failed = %v", err)
	}
	if err := h.player.Restart(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Restart from failed = %v", err)
	}

	buf := container(t, 2, 10, false, nil)
	truncated := buf[:len(buf)-1]
	if err := h.player.Load(context.Background(), truncated); !errors.Is(err, magf.ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}

	h.load(t, buf)
	if h.player.Err() != nil {
		t.Fatalf("error should clear after a successful load: %v", h.player.Err())
	}
}

func TestBadFrameFailsWholeLoad(t *testing.T) {
	h := newHarness(t, func(cfg *Config) {
		cfg.DecodeFrame = func(index int, data []byte) (image.Image, error) {
			if index == 2 {
				return nil, errors.New("corrupt")
			}
			return frameImage(index, data)
		}
	})
	err := h.player.Load(context.Background(), container(t, 4, 10, false, nil))
	var asset *magf.AssetError
	if !errors.As(err, &asset) || asset.Index != 2 || asset.Kind != magf.AssetFrame {
		t.Fatalf("expected frame AssetError at 2, got %v", err)
	}
	if !errors.Is(err, magf.ErrAssetDecode) {
		t.Fatalf("expected ErrAssetDecode, got %v", err)
	}
	if h.player.State() != Failed {
		t.Fatalf("expected failed, got %s", h.player.State())
	}
	h.surface.expectNone(t)
}

func TestBadAudioFailsLoad(t *testing.T) {
	h := newHarness(t, func(cfg *Config) {
		cfg.DecodeAudio = media.DecodeAudio
	})
	err := h.player.Load(context.Background(), container(t, 2, 10, true, nil))
	var asset *magf.AssetError
	if !errors.As(err, &asset) || asset.Kind != magf.AssetAudio {
		t.Fatalf("expected audio AssetError, got %v", err)
	}
	if h.player.State() != Failed {
		t.Fatalf("expected failed, got %s", h.player.State())
	}
}

func TestParallelDecodePreservesOrder(t *testing.T) {
	const frames = 12
	h := newHarness(t, func(cfg *Config) {
		cfg.DecodeWorkers = 4
		cfg.DecodeFrame = func(index int, data []byte) (image.Image, error) {
			time.Sleep(time.Duration(frames-index) * time.Millisecond)
			return frameImage(index, data)
		}
	})
	h.load(t, container(t, frames, 30, false, nil))
	h.play(t)
	for i := 0; i < frames; i++ {
		if v := h.tick(t, 33*time.Millisecond); renderedIndex(v) != i {
			t.Fatalf("tick %d showed image for frame %d", i, renderedIndex(v))
		}
	}
}

func TestLoadRejectedWhileLoading(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h := newHarness(t, func(cfg *Config) {
		cfg.DecodeFrame = func(index int, data []byte) (image.Image, error) {
			once.Do(func() { close(entered) })
			<-release
			return frameImage(index, data)
		}
	})

	buf := container(t, 2, 10, false, nil)
	done := make(chan error, 1)
	go func() { done <- h.player.Load(context.Background(), buf) }()
	<-entered

	if h.player.State() != Loading {
		t.Fatalf("expected loading, got %s", h.player.State())
	}
	if err := h.player.Load(context.Background(), container(t, 1, 10, false, nil)); !errors.Is(err, ErrLoadInProgress) {
		t.Fatalf("expected ErrLoadInProgress, got %v", err)
	}
	if err := h.player.Play(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Play while loading = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if h.player.State() != Ready {
		t.Fatalf("expected ready, got %s", h.player.State())
	}
}

func TestLoadHonoursCancelledContext(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.player.Load(ctx, container(t, 2, 10, false, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.player.State() != Failed {
		t.Fatalf("expected failed, got %s", h.player.State())
	}
}

func TestLoadWhilePlayingDiscardsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 4, 10, true, nil))
	first := h.player.SessionID()
	h.play(t)
	h.tick(t, 100*time.Millisecond)
	ticker := h.clock.ticker

	h.load(t, container(t, 2, 5, false, nil))
	if !ticker.isStopped() {
		t.Fatal("previous ticker should be stopped")
	}
	if h.player.SessionID() == first {
		t.Fatal("expected a new session id")
	}
	if h.player.CurrentFrame() != 0 || h.player.State() != Ready {
		t.Fatalf("state=%s frame=%d", h.player.State(), h.player.CurrentFrame())
	}
	if _, stops := h.audio.counts(); stops != 1 {
		t.Fatalf("audio should stop when the session is replaced, stops=%d", stops)
	}
}

func TestCloseStopsPlayback(t *testing.T) {
	h := newHarness(t, nil)
	h.load(t, container(t, 2, 10, false, nil))
	h.play(t)
	ticker := h.clock.ticker

	h.player.Close()
	if !ticker.isStopped() {
		t.Fatal("close should stop the ticker")
	}
	if h.player.State() != Idle {
		t.Fatalf("expected idle, got %s", h.player.State())
	}
	if err := h.player.Load(context.Background(), container(t, 1, 10, false, nil)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	h.player.Close()
}

func TestControlsBeforeLoad(t *testing.T) {
	p := New(Config{})
	if err := p.Play(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Play = %v", err)
	}
	if err := p.Restart(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Restart = %v", err)
	}
	p.Pause()
	if p.State() != Idle {
		t.Fatalf("expected idle, got %s", p.State())
	}
	if _, ok := p.Manifest(); ok {
		t.Fatal("no manifest before load")
	}
}
