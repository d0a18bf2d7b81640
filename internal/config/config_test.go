package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

const sampleYAML = `
surface: led
fps: 30
preset: legacy
palette:
  dark1: "#000000"
animation_speed: 0
fade_in_ms: 1500
theme:
  mode: discrete
  initial: dark
  ease: power2.inOut
  request_ms: 800
  dark:
    brightness: 0.1
led:
  matrix:
    w: 16
    h: 8
    panels: 2
    order:
      x_flip_every_row: true
  limit:
    white_cap: 1.5
noise:
  field: opensimplex
  seed: 7
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadYAML(t *testing.T) {
	c, err := Load(writeFile(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "led", c.Surface)
	assert.Equal(t, 30, c.FPS)
	require.NotNil(t, c.AnimationSpeed)
	assert.Equal(t, 0.0, *c.AnimationSpeed)
	assert.Nil(t, c.Brightness)
	assert.Equal(t, 1500*time.Millisecond, c.FadeIn())
	assert.Equal(t, 800*time.Millisecond, c.RequestDuration())
	assert.Equal(t, 16, c.LED.Matrix.W)
	assert.Equal(t, 2, c.LED.Matrix.Panels)
	assert.True(t, c.LED.Matrix.Order.XFlipEveryRow)
	assert.Equal(t, 1.5, c.LED.Limit.WhiteCap)
}

func TestRenderConfigOverlaysPreset(t *testing.T) {
	c, err := Load(writeFile(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	rc, err := c.RenderConfig(nil)
	require.NoError(t, err)
	legacy, _ := render.BuiltinPresets().Get("legacy")

	assert.Equal(t, render.Color{}, rc.Palette.Dark1)
	assert.Equal(t, legacy.Palette.Dark2, rc.Palette.Dark2)
	assert.Equal(t, 0.0, rc.AnimationSpeed)
	assert.Equal(t, legacy.Brightness, rc.Brightness)
}

func TestRenderConfigUnknownPreset(t *testing.T) {
	c := &Config{Preset: "nope"}
	_, err := c.RenderConfig(nil)
	assert.Error(t, err)
}

func TestThemeOptions(t *testing.T) {
	c, err := Load(writeFile(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	o, err := c.ThemeOptions()
	require.NoError(t, err)
	assert.Equal(t, theme.Discrete, o.Mode)
	assert.Equal(t, theme.Dark, o.Initial)
	assert.Equal(t, 0.1, o.Dark.Brightness)
	assert.Equal(t, theme.LightBrightness, o.Light.Brightness)
	assert.InDelta(t, 0.5, o.Ease(0.5), 1e-9)

	_, err = (&Config{Theme: Theme{Ease: "bounce"}}).ThemeOptions()
	assert.Error(t, err)
}

func TestNoiseField(t *testing.T) {
	c, err := Load(writeFile(t, "config.yaml", sampleYAML))
	require.NoError(t, err)
	f, err := c.NoiseField()
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestValidateCollectsErrors(t *testing.T) {
	bad := `
surface: hologram
brightness: 3
dark_mix: -1
palette:
  light1: "nothex"
theme:
  mode: sideways
`
	_, err := Decode([]byte(bad), false)
	require.Error(t, err)
	for _, want := range []string{"hologram", "brightness", "dark_mix", "nothex", "sideways"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	speed := 3.0
	in := &Config{Surface: "preview", FPS: 24, AnimationSpeed: &speed, Preview: Preview{Addr: ":9090", W: 64, H: 36}}
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Save(p, in))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "surface = ")

	out, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "preview", out.Surface)
	assert.Equal(t, ":9090", out.Preview.Addr)
	require.NotNil(t, out.AnimationSpeed)
	assert.Equal(t, 3.0, *out.AnimationSpeed)
}

func TestSaveYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(p, &Config{Preset: "site"}))
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "site", c.Preset)
}

func TestWatchReloads(t *testing.T) {
	p := writeFile(t, "config.yaml", "fps: 10\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config, err error) {
			if err != nil {
				return
			}
			select {
			case got <- c.FPS:
			default:
			}
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(p, []byte("fps: 42\n"), 0644)
		select {
		case fps := <-got:
			return fps == 42
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
