package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/config"
	"github.com/coreman2200/funtimes-gradient/internal/surface/snapshot"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

func TestConfigOverridesFlags(t *testing.T) {
	f := flags{surface: "term", fps: 60, preset: "site", addr: ":8080", noise: "simplex"}
	cfg := &config.Config{Surface: "preview", FPS: 24, Preview: config.Preview{Addr: ":9000"}}

	s := effective(f, cfg)
	assert.Equal(t, "preview", s.surface)
	assert.Equal(t, 24, s.fps)
	assert.Equal(t, ":9000", s.addr)
	assert.Equal(t, "site", s.preset)
	assert.Equal(t, "site", cfg.Preset)
	assert.Equal(t, "simplex", cfg.Noise.Field)
}

func TestFlagsKeptWhenConfigEmpty(t *testing.T) {
	f := flags{surface: "led", fps: 30, preset: "legacy"}
	s := effective(f, &config.Config{})
	assert.Equal(t, "led", s.surface)
	assert.Equal(t, 30, s.fps)
	assert.Equal(t, "legacy", s.preset)
}

func TestFixedClock(t *testing.T) {
	now := fixedClock(time.Second / 4)
	a := now()
	b := now()
	assert.Equal(t, 250*time.Millisecond, b.Sub(a))
}

func TestSnapshotFramesAndLimitAreSeparate(t *testing.T) {
	f := flags{frames: 1}
	s := effective(f, &config.Config{Snapshot: config.Snapshot{Limit: 2}})
	assert.Equal(t, 1, s.frames)

	s = effective(f, &config.Config{Snapshot: config.Snapshot{Frames: 12, Limit: 2}})
	assert.Equal(t, 12, s.frames)
}

func snapshotRun(t *testing.T, frames, limit int) []string {
	t.Helper()
	surf, err := snapshot.New(snapshot.Options{W: 4, H: 2, Dir: t.TempDir(), Limit: limit}, nil)
	require.NoError(t, err)
	bg := widget.New("snap", surf, widget.Options{Settle: -1})
	require.NoError(t, bg.Err())
	defer bg.Teardown()
	require.NoError(t, renderSnapshots(bg, surf, frames, time.Second/30))
	return surf.Written
}

func TestRenderSnapshots(t *testing.T) {
	assert.Len(t, snapshotRun(t, 3, 0), 3)
	assert.Len(t, snapshotRun(t, 5, 2), 2)
	assert.Len(t, snapshotRun(t, 1, 4), 1)
}
