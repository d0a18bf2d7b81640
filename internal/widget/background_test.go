package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/pipeline"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/sequence"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

const frame = time.Second / 60

func newBG(t *testing.T, opts Options) (*Background, *soft.Surface) {
	t.Helper()
	s := &soft.Surface{W: 8, H: 8}
	if opts.Settle == 0 {
		opts.Settle = -1
	}
	b := New("bg", s, opts)
	require.NoError(t, b.Err())
	return b, s
}

func ticks(t *testing.T, b *Background, total time.Duration) {
	t.Helper()
	for el := time.Duration(0); el < total; el += frame {
		require.NoError(t, b.Tick(frame))
	}
}

func TestNilSurfaceIsInert(t *testing.T) {
	b := New("bg", nil, Options{})
	assert.ErrorIs(t, b.Err(), pipeline.ErrMissingContainer)
	assert.NoError(t, b.Tick(frame))
	assert.ErrorIs(t, b.Run(context.Background()), pipeline.ErrMissingContainer)
	b.Resize(10, 10)
	b.Teardown()
}

type brokenSurface struct{}

func (brokenSurface) Context() (gpu.Device, error) { return nil, errors.New("no gl") }
func (brokenSurface) Size() (int, int)             { return 1, 1 }
func (brokenSurface) PixelRatio() float64          { return 1 }
func (brokenSurface) Present() error               { return nil }

func TestInitFailureIsInert(t *testing.T) {
	b := New("bg", brokenSurface{}, Options{})
	var ie *pipeline.InitError
	assert.ErrorAs(t, b.Err(), &ie)
	assert.NoError(t, b.Tick(frame))
}

func TestThemeScenarioThroughTicks(t *testing.T) {
	cfg := render.Config{Brightness: 1.8, AnimationSpeed: 5, Shape: render.DefaultShape()}
	b, s := newBG(t, Options{Config: &cfg})
	require.True(t, b.RequestTheme(theme.Dark, 800*time.Millisecond))
	ticks(t, b, 800*time.Millisecond)
	assert.InDelta(t, theme.DarkBrightness, b.Config().Brightness, 1e-3)
	assert.Equal(t, "dark", b.Stats().Theme)
	assert.Greater(t, s.Device().Draws, 40)
}

func TestSettleOnStart(t *testing.T) {
	cfg := render.Config{Brightness: 1.8}
	b := New("bg", &soft.Surface{W: 2, H: 2}, Options{Config: &cfg, Settle: 100 * time.Millisecond})
	ticks(t, b, 100*time.Millisecond)
	assert.Equal(t, theme.LightBrightness, b.Config().Brightness)
}

func TestEditsApplyOnTick(t *testing.T) {
	b, _ := newBG(t, Options{})
	require.NoError(t, b.SetParam("speed", 0))
	assert.Error(t, b.SetParam("hue", 1))
	assert.Equal(t, 5.0, b.Config().AnimationSpeed, "not applied before the tick")
	assert.Equal(t, 1, b.Stats().Pending)

	require.NoError(t, b.Tick(frame))
	assert.Equal(t, 0.0, b.Config().AnimationSpeed)

	require.NoError(t, b.ApplyPreset("legacy", 0))
	assert.Error(t, b.ApplyPreset("nope", 0))
	require.NoError(t, b.Tick(frame))
	c := b.Config()
	assert.Equal(t, "#0d151b", c.Palette.Dark1.Hex())
	assert.Equal(t, 0.2, c.Brightness, "preset keeps the theme brightness")
}

func TestPresetCrossfade(t *testing.T) {
	b, _ := newBG(t, Options{Preset: "site"})
	site := b.Config().Palette
	require.NoError(t, b.ApplyPreset("indigo", 100*time.Millisecond))
	require.NoError(t, b.Tick(frame))
	mid := b.Config().Palette
	assert.NotEqual(t, site, mid)

	ticks(t, b, 100*time.Millisecond)
	pr, _ := render.BuiltinPresets().Get("indigo")
	assert.Equal(t, pr.Config().Palette, b.Config().Palette)
}

func TestConcurrentSubmit(t *testing.T) {
	b, _ := newBG(t, Options{Theme: theme.Options{Mode: theme.Scroll}})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.ScrollProgress(1)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, b.Tick(frame))
	assert.InDelta(t, theme.LightBrightness, b.Config().Brightness, 1e-12)
	assert.Equal(t, 0, b.Stats().Pending)
}

func TestFadeInLiftsVeil(t *testing.T) {
	b, _ := newBG(t, Options{FadeIn: 200 * time.Millisecond})
	assert.Equal(t, 1.0, b.Config().Veil)
	ticks(t, b, 200*time.Millisecond)
	assert.Equal(t, 0.0, b.Config().Veil)
}

func TestProgramDrivesTheme(t *testing.T) {
	b, _ := newBG(t, Options{})
	require.NoError(t, b.LoadProgram(sequence.Program{Cues: []sequence.Cue{
		{Theme: "dark", HoldS: 1, FadeS: 0.5},
		{Theme: "light", HoldS: 1, FadeS: 0.5},
	}}))
	ticks(t, b, 700*time.Millisecond)
	assert.Equal(t, theme.DarkBrightness, b.Config().Brightness)
	ticks(t, b, time.Second)
	assert.Equal(t, theme.LightBrightness, b.Config().Brightness)
}

func TestTeardownThenTick(t *testing.T) {
	b, s := newBG(t, Options{})
	require.True(t, b.RequestTheme(theme.Dark, time.Second))
	require.NoError(t, b.Tick(frame))
	draws := s.Device().Draws

	b.Teardown()
	b.Teardown()
	assert.NoError(t, b.Tick(frame))
	assert.Equal(t, draws, s.Device().Draws)
	assert.False(t, b.Submit(func(*render.Config, *theme.Controller) {}))
	assert.Equal(t, 0, s.Device().Live())
}

func TestRunStopsOnTeardown(t *testing.T) {
	b, s := newBG(t, Options{FPS: 200})
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	require.Eventually(t, func() bool { return b.Stats().Frames > 2 }, 2*time.Second, 5*time.Millisecond)
	b.Teardown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, 0, s.Device().Live())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := New("a", nil, Options{})
	bb := New("b", nil, Options{})
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(bb))
	assert.Error(t, r.Register(New("a", nil, Options{})))
	assert.Equal(t, []string{"a", "b"}, r.List())

	r.HideOthers("b")
	assert.False(t, a.PanelVisible())
	assert.True(t, bb.PanelVisible())

	got, ok := r.Unregister("a")
	assert.True(t, ok)
	assert.Same(t, a, got)
	_, ok = r.Get("a")
	assert.False(t, ok)
	r.TeardownAll()
	assert.Empty(t, r.List())
}

// reentrantSurface calls back into the instance from Present, the way
// windowing toolkits deliver input during their event pump.
type reentrantSurface struct {
	*soft.Surface
	bg *Background
}

func (r *reentrantSurface) Present() error {
	if err := r.Surface.Present(); err != nil {
		return err
	}
	if r.bg != nil {
		r.bg.RequestTheme(theme.Dark, 0)
		r.bg.Resize(4, 2)
		r.bg.Submit(func(cfg *render.Config, _ *theme.Controller) { cfg.AnimationSpeed = 2 })
	}
	return nil
}

func TestPresentMayReenter(t *testing.T) {
	s := &reentrantSurface{Surface: &soft.Surface{W: 8, H: 8}}
	b := New("bg", s, Options{Settle: -1})
	require.NoError(t, b.Err())
	s.bg = b

	done := make(chan error, 1)
	go func() { done <- b.Tick(frame) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Tick blocked while Present called back into the instance")
	}
	assert.Equal(t, 2, b.Stats().Pending)

	s.bg = nil
	require.NoError(t, b.Tick(frame))
	st := b.Stats()
	assert.Equal(t, "dark", st.Theme)
	assert.Equal(t, 2.0, st.Speed)
	assert.Equal(t, 4, st.W)
	assert.Equal(t, 2, st.H)
}

func TestResizeAfterTeardownIsIgnored(t *testing.T) {
	b, _ := newBG(t, Options{})
	b.Teardown()
	b.Resize(3, 3)
	assert.False(t, b.Submit(func(*render.Config, *theme.Controller) {}))
	assert.NoError(t, b.Tick(frame))
}
