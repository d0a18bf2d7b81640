package config

import (
	"time"

	"github.com/coreman2200/funtimes-gradient/internal/noise"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

// RenderConfig resolves the preset and overlays the explicit fields.
func (c *Config) RenderConfig(presets *render.Presets) (render.Config, error) {
	if presets == nil {
		presets = render.BuiltinPresets()
	}
	name := c.Preset
	if name == "" {
		name = render.DefaultPreset
	}
	pr, err := presets.Lookup(name)
	if err != nil {
		return render.Config{}, err
	}
	out := pr.Config()
	if out.Palette, err = c.Palette.Apply(out.Palette); err != nil {
		return render.Config{}, err
	}
	if c.Brightness != nil {
		out.Brightness = *c.Brightness
	}
	if c.AnimationSpeed != nil {
		out.AnimationSpeed = *c.AnimationSpeed
	}
	if c.DarkMix != nil {
		out.DarkMix = *c.DarkMix
	}
	if len(c.SpeedCurve) > 0 {
		out.Curve = render.SpeedCurve{Bands: c.SpeedCurve}
	}
	out.Clamp()
	return out, nil
}

func (c *Config) ThemeOptions() (theme.Options, error) {
	o := theme.DefaultOptions()
	if c.Theme.Mode != "" {
		o.Mode = theme.Mode(c.Theme.Mode)
	}
	if c.Theme.Initial != "" {
		t, err := theme.ParseTheme(c.Theme.Initial)
		if err != nil {
			return o, err
		}
		o.Initial = t
	}
	if e := c.Theme.Dark; e != nil {
		o.Dark = theme.Endpoint{Brightness: e.Brightness, DarkMix: e.DarkMix}
	}
	if e := c.Theme.Light; e != nil {
		o.Light = theme.Endpoint{Brightness: e.Brightness, DarkMix: e.DarkMix}
	}
	ease, err := theme.EaseByName(c.Theme.Ease)
	if err != nil {
		return o, err
	}
	o.Ease = ease
	o.DriveDarkMix = c.Theme.DriveDarkMix
	return o, nil
}

// Settle is the start-up transition length; negative skips it and zero
// leaves the default.
func (c *Config) Settle() time.Duration {
	return time.Duration(c.Theme.SettleMS) * time.Millisecond
}

// RequestDuration is the fade used for interactive theme requests.
func (c *Config) RequestDuration() time.Duration {
	if c.Theme.RequestMS <= 0 {
		return theme.RequestDuration
	}
	return time.Duration(c.Theme.RequestMS) * time.Millisecond
}

func (c *Config) NoiseField() (noise.Field, error) {
	return noise.ByName(c.Noise.Field, c.Noise.Seed)
}
