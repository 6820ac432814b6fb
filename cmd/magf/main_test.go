package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"magf/internal/api"
	"magf/internal/magf"
	"magf/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	dir        string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t, opts...)
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	base := testsupport.BaseDir(cfg)
	return &cliTestEnv{
		configPath: testsupport.WriteFile(t, base, "config.toml", data),
		dir:        base,
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("magf %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// writeFrames writes n PNG frames and returns their paths in order.
func (e *cliTestEnv) writeFrames(t *testing.T, n, width, height int) []string {
	t.Helper()
	paths := make([]string, n)
	for i, f := range testsupport.PNGFrames(t, n, width, height) {
		paths[i] = testsupport.WriteFile(t, e.dir, filepath.Join("frames", string(rune('a'+i))+".png"), f.Data)
	}
	return paths
}

const sampleSRT = "1\n00:00:00,000 --> 00:00:00,100\nHello\n\n2\n00:00:00,100 --> 00:00:00,200\nSubtitles by example.org\n"

func TestEncodeThenInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	frames := env.writeFrames(t, 3, 4, 3)
	wav := testsupport.WriteFile(t, env.dir, "tone.wav", testsupport.WAVClip(t, 200*time.Millisecond))
	srt := testsupport.WriteFile(t, env.dir, "cues.srt", []byte(sampleSRT))
	target := filepath.Join(env.dir, "out.magf")

	args := append([]string{"encode", "-o", target, "--fps", "10", "--audio", wav, "--subtitles", srt, "--strip-ads"}, frames...)
	out := env.mustRun(t, args...)
	if !strings.Contains(out, "3 frames") || !strings.Contains(out, "Removed 1 advertisement cue") {
		t.Fatalf("unexpected encode output %q", out)
	}

	out = env.mustRun(t, "inspect", "--json", target)
	var result api.InspectResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode inspect json: %v\n%s", err, out)
	}
	if result.Manifest.Frames != 3 || result.FPS != 10 || result.Audio == nil || len(result.Subtitles) != 1 {
		t.Fatalf("unexpected inspect result %+v", result)
	}
	if result.Subtitles[0].Text != "Hello" {
		t.Fatalf("expected ad cue to be stripped, got %+v", result.Subtitles)
	}
}

func TestInspectTable(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.dir, "plain.magf")
	env.mustRun(t, append([]string{"encode", "-o", target}, env.writeFrames(t, 2, 4, 3)...)...)

	out := env.mustRun(t, "inspect", target)
	for _, want := range []string{"Version:   1", "FPS:       15", "Canvas:    4x3", "png"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeStrictDimensions(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStrictDimensions())
	a := testsupport.WriteFile(t, env.dir, "a.png", testsupport.PNGFrame(t, 4, 3, 0).Data)
	b := testsupport.WriteFile(t, env.dir, "b.png", testsupport.PNGFrame(t, 6, 3, 0).Data)

	_, err := env.run(t, "encode", "-o", filepath.Join(env.dir, "x.magf"), a, b)
	if !errors.Is(err, magf.ErrInconsistentFrameDimensions) {
		t.Fatalf("expected inconsistent dimensions error, got %v", err)
	}
}

func TestEncodeRejectsNonImage(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := testsupport.WriteFile(t, env.dir, "notes.txt", []byte("hello"))
	_, err := env.run(t, "encode", "-o", filepath.Join(env.dir, "x.magf"), bad)
	if !errors.Is(err, magf.ErrAssetDecode) {
		t.Fatalf("expected asset decode error, got %v", err)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFile(t, env.dir, "junk.magf", bytes.Repeat([]byte{0xff}, 64))
	if _, err := env.run(t, "inspect", path); !errors.Is(err, magf.ErrInvalidFormat) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestToneWritesPlayableAudio(t *testing.T) {
	env := setupCLITestEnv(t)
	wav := filepath.Join(env.dir, "beep.wav")
	out := env.mustRun(t, "tone", "-o", wav, "--length", "250ms", "--rate", "8000")
	if !strings.Contains(out, "250ms") {
		t.Fatalf("unexpected tone output %q", out)
	}
	target := filepath.Join(env.dir, "beep.magf")
	env.mustRun(t, append([]string{"encode", "-o", target, "--audio", wav}, env.writeFrames(t, 1, 2, 2)...)...)
}

func TestCatalogLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	srt := testsupport.WriteFile(t, env.dir, "cues.srt", []byte(sampleSRT))
	frames := env.writeFrames(t, 2, 4, 3)

	out := env.mustRun(t, append([]string{"catalog", "add", "--name", "Title Card", "--meta", "source=test", "--subtitles", srt}, frames...)...)
	if !strings.Contains(out, `Added container #1 "Title Card"`) {
		t.Fatalf("unexpected add output %q", out)
	}
	env.mustRun(t, append([]string{"catalog", "add"}, frames...)...)

	out = env.mustRun(t, "catalog", "list", "--json")
	var list api.ContainerListResponse
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(list.Containers) != 2 || list.Containers[1].Name != "MAGF-2" {
		t.Fatalf("unexpected list %+v", list)
	}

	out = env.mustRun(t, "catalog", "list")
	if !strings.Contains(out, "Title Card") || !strings.Contains(out, "video+text") {
		t.Fatalf("unexpected list table:\n%s", out)
	}

	out = env.mustRun(t, "catalog", "show", "1")
	if !strings.Contains(out, "source = test") {
		t.Fatalf("show missing metadata:\n%s", out)
	}

	target := filepath.Join(env.dir, "export.magf")
	srtOut := filepath.Join(env.dir, "out", "cues.srt")
	env.mustRun(t, "catalog", "export", "1", "-o", target, "--srt", srtOut)
	buf, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	c, err := magf.Decode(buf)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(c.Frames) != 2 || len(c.Subtitles) != 2 {
		t.Fatalf("unexpected exported container %+v", c.Manifest)
	}
	srtData, err := os.ReadFile(srtOut)
	if err != nil || !strings.Contains(string(srtData), "00:00:00,100 --> 00:00:00,200") {
		t.Fatalf("unexpected srt export %q (%v)", srtData, err)
	}

	env.mustRun(t, "catalog", "rm", "1")
	if _, err := env.run(t, "catalog", "show", "1"); err == nil {
		t.Fatal("expected error showing deleted entry")
	}
	if _, err := env.run(t, "catalog", "export", "2", "--srt", srtOut, "-o", target); err == nil {
		t.Fatal("expected error exporting srt for entry without text")
	}
}

func TestCatalogExportDefaultName(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, append([]string{"catalog", "add", "--name", "a/b: c"}, env.writeFrames(t, 1, 2, 2)...)...)
	t.Chdir(env.dir)
	env.mustRun(t, "catalog", "export", "1")
	if _, err := os.Stat(filepath.Join(env.dir, "a-b- c.magf")); err != nil {
		t.Fatalf("expected sanitized default export name: %v", err)
	}
}

func TestPlayStopsAfterLoops(t *testing.T) {
	env := setupCLITestEnv(t)
	srt := testsupport.WriteFile(t, env.dir, "cues.srt", []byte("1\n00:00:00,000 --> 00:00:01,000\nHello\n"))
	target := filepath.Join(env.dir, "loop.magf")
	env.mustRun(t, append([]string{"encode", "-o", target, "--fps", "50", "--subtitles", srt}, env.writeFrames(t, 3, 4, 3)...)...)

	out := env.mustRun(t, "play", "--loops", "2", "--workers", "2", target)
	if !strings.Contains(out, "canvas 4x3") || !strings.Contains(out, "frame 0: Hello") {
		t.Fatalf("unexpected play output %q", out)
	}
}

func TestPlayFromCatalog(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDecodeWorkers(3))
	env.mustRun(t, append([]string{"catalog", "add", "--fps", "50"}, env.writeFrames(t, 2, 5, 4)...)...)
	out := env.mustRun(t, "play", "--catalog", "--loops", "1", "1")
	if !strings.Contains(out, "canvas 5x4") {
		t.Fatalf("unexpected play output %q", out)
	}
	if _, err := env.run(t, "play", "--catalog", "9"); err == nil {
		t.Fatal("expected error for unknown catalog id")
	}
}

func TestCheckJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "check", "--json")
	var results []api.CheckResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode check: %v\n%s", err, out)
	}
	byName := map[string]api.CheckResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["Catalog"].Passed {
		t.Fatalf("catalog check should pass: %+v", byName["Catalog"])
	}
	if d, ok := byName["Daemon"]; !ok || d.Passed {
		t.Fatalf("daemon should be reported as not running: %+v", d)
	}
}

func TestCheckText(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "check")
	if !strings.Contains(out, "== Checks ==") || !strings.Contains(out, "Catalog:") {
		t.Fatalf("unexpected check output:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.dir, "new", "config.toml")
	out := env.mustRun(t, "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	env.mustRun(t, "config", "init", "--path", target, "--overwrite")

	out = env.mustRun(t, "config", "show")
	if !strings.Contains(out, "# loaded from "+env.configPath) || !strings.Contains(out, "default_fps = 15") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[encoding]\ndefault_fps = 70000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := env.run(t, "catalog", "list"); err == nil {
		t.Fatal("expected config validation error")
	}
}
