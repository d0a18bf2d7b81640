package pipeline

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/render"
)

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1700000000, 0)} }

func (c *fakeClock) now() time.Time       { return c.t }
func (c *fakeClock) step(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) opts() Options        { return Options{Now: c.now} }

func siteConfig() render.Config {
	pr, _ := render.BuiltinPresets().Get(render.DefaultPreset)
	return pr.Config()
}

func newSurface(w, h int) *soft.Surface { return &soft.Surface{W: w, H: h} }

func snapshot(s *soft.Surface) []byte {
	return append([]byte(nil), s.Device().Frame().Pix...)
}

// linkFails wraps a soft device and refuses to link.
type linkFails struct{ *soft.Device }

func (d linkFails) LinkProgram(vs, fs gpu.Handle) (gpu.Handle, error) {
	return 0, &gpu.LogError{Log: "ERROR: 0:1: varying mismatch"}
}

type devSurface struct {
	dev gpu.Device
	err error
}

func (s *devSurface) Context() (gpu.Device, error) { return s.dev, s.err }
func (s *devSurface) Size() (int, int)             { return 4, 4 }
func (s *devSurface) PixelRatio() float64          { return 1 }
func (s *devSurface) Present() error               { return nil }

func TestNewWithoutSurface(t *testing.T) {
	p, err := New(nil, Options{})
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrMissingContainer)
}

func TestNewContextUnavailable(t *testing.T) {
	cause := errors.New("webgl disabled")
	_, err := New(&devSurface{err: cause}, Options{})
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, cause)
}

func TestCompileFailureReleasesEverything(t *testing.T) {
	dev := soft.New(soft.Options{})
	_, err := New(&devSurface{dev: dev}, Options{Fragment: "precision mediump float;"})
	var ce *ShaderCompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, gpu.Fragment, ce.Stage)
	assert.Contains(t, ce.Error(), "fragment")
	assert.Equal(t, 0, dev.Live())
}

func TestLinkFailureReleasesEverything(t *testing.T) {
	dev := soft.New(soft.Options{})
	_, err := New(&devSurface{dev: linkFails{dev}}, Options{})
	var le *ShaderLinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Log, "varying mismatch")
	assert.Equal(t, 0, dev.Live())
}

func TestResizeUsesPixelRatio(t *testing.T) {
	s := &soft.Surface{W: 10, H: 5, Ratio: 2}
	p, err := New(s, Options{})
	require.NoError(t, err)
	w, h := p.BackingSize()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)

	s.Ratio = 1.5
	p.Resize(3, 3)
	w, h = p.BackingSize()
	assert.Equal(t, 5, w)
	assert.Equal(t, 5, h)
	assert.Equal(t, 5, s.Device().Frame().Bounds().Dx())

	var nilp *Pipeline
	assert.NotPanics(t, func() { nilp.Resize(10, 10) })
}

func TestFrozenAtSpeedZero(t *testing.T) {
	clk := newFakeClock()
	s := newSurface(16, 16)
	p, err := New(s, clk.opts())
	require.NoError(t, err)

	cfg := siteConfig()
	cfg.AnimationSpeed = 0
	require.NoError(t, p.RenderFrame(&cfg))
	a := snapshot(s)

	clk.step(5 * time.Second)
	require.NoError(t, p.RenderFrame(&cfg))
	b := snapshot(s)

	assert.True(t, bytes.Equal(a, b), "pattern moved at speed 0")
	assert.InDelta(t, 5.0, p.Clock().Elapsed, 1e-9)
	assert.Equal(t, 0.0, p.Clock().Phase)
}

func TestAnimatesAtSpeed(t *testing.T) {
	clk := newFakeClock()
	s := newSurface(16, 16)
	p, err := New(s, clk.opts())
	require.NoError(t, err)

	cfg := siteConfig()
	cfg.AnimationSpeed = 10
	require.NoError(t, p.RenderFrame(&cfg))
	a := snapshot(s)
	clk.step(5 * time.Second)
	require.NoError(t, p.RenderFrame(&cfg))
	assert.False(t, bytes.Equal(a, snapshot(s)))
	assert.EqualValues(t, 2, p.Frames)
}

func TestTeardownThenTickIsNoop(t *testing.T) {
	s := newSurface(4, 4)
	p, err := New(s, Options{})
	require.NoError(t, err)
	cfg := siteConfig()
	require.NoError(t, p.RenderFrame(&cfg))
	draws := s.Device().Draws

	p.Teardown()
	p.Teardown()
	assert.True(t, p.TornDown())
	assert.Equal(t, 0, s.Device().Live())

	assert.NoError(t, p.RenderFrame(&cfg))
	assert.Equal(t, draws, s.Device().Draws)
	assert.NotPanics(t, func() { p.Resize(8, 8) })
}

func TestClockPhaseIsContinuousAcrossSpeedChange(t *testing.T) {
	clk := newFakeClock()
	c := NewClock(clk.now)
	clk.step(time.Second)
	_, ph := c.Advance(1)
	assert.InDelta(t, 1.0, ph, 1e-9)

	clk.step(time.Second)
	_, ph = c.Advance(0.5)
	assert.InDelta(t, 1.5, ph, 1e-9)

	clk.step(-time.Second)
	el, ph := c.Advance(1)
	assert.InDelta(t, 1.5, ph, 1e-9, "clock going backwards must not rewind phase")
	assert.InDelta(t, 1.0, el, 1e-9)
}
