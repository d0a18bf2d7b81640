// Package config holds the runner's file configuration. YAML is the primary
// format; files ending in .toml are read and written with go-toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-gradient/internal/layout"
	"github.com/coreman2200/funtimes-gradient/internal/render"
)

type Endpoint struct {
	Brightness float64 `yaml:"brightness" toml:"brightness"`
	DarkMix    float64 `yaml:"dark_mix" toml:"dark_mix"`
}

type Theme struct {
	Mode         string    `yaml:"mode,omitempty" toml:"mode,omitempty"`       // discrete | scroll
	Initial      string    `yaml:"initial,omitempty" toml:"initial,omitempty"` // light | dark
	Dark         *Endpoint `yaml:"dark,omitempty" toml:"dark,omitempty"`
	Light        *Endpoint `yaml:"light,omitempty" toml:"light,omitempty"`
	Ease         string    `yaml:"ease,omitempty" toml:"ease,omitempty"`
	SettleMS     int       `yaml:"settle_ms,omitempty" toml:"settle_ms,omitempty"` // -1 skips the start-up settle
	RequestMS    int       `yaml:"request_ms,omitempty" toml:"request_ms,omitempty"`
	DriveDarkMix bool      `yaml:"drive_dark_mix,omitempty" toml:"drive_dark_mix,omitempty"`
}

type Noise struct {
	Field   string `yaml:"field,omitempty" toml:"field,omitempty"` // simplex | opensimplex
	Seed    int64  `yaml:"seed,omitempty" toml:"seed,omitempty"`
	Workers int    `yaml:"workers,omitempty" toml:"workers,omitempty"`
}

type Preview struct {
	Addr       string  `yaml:"addr,omitempty" toml:"addr,omitempty"`
	W          int     `yaml:"w,omitempty" toml:"w,omitempty"`
	H          int     `yaml:"h,omitempty" toml:"h,omitempty"`
	Ratio      float64 `yaml:"ratio,omitempty" toml:"ratio,omitempty"`
	ThrottleMS int     `yaml:"throttle_ms,omitempty" toml:"throttle_ms,omitempty"`
}

type LED struct {
	Port        string        `yaml:"port,omitempty" toml:"port,omitempty"`
	FreqKHz     int           `yaml:"freq_khz,omitempty" toml:"freq_khz,omitempty"`
	Matrix      layout.Matrix `yaml:"matrix" toml:"matrix"`
	Supersample int           `yaml:"supersample,omitempty" toml:"supersample,omitempty"`
	Gamma       float64       `yaml:"gamma,omitempty" toml:"gamma,omitempty"`
	Smoothing   float64       `yaml:"smoothing,omitempty" toml:"smoothing,omitempty"`
	Limit       render.Limit  `yaml:"limit" toml:"limit"`
}

type Snapshot struct {
	Dir    string `yaml:"dir,omitempty" toml:"dir,omitempty"`
	W      int    `yaml:"w,omitempty" toml:"w,omitempty"`
	H      int    `yaml:"h,omitempty" toml:"h,omitempty"`
	Frames int    `yaml:"frames,omitempty" toml:"frames,omitempty"` // frames to render
	Every  int    `yaml:"every,omitempty" toml:"every,omitempty"`
	Limit  int    `yaml:"limit,omitempty" toml:"limit,omitempty"` // files to keep, 0 for no cap
}

type Window struct {
	W     int    `yaml:"w,omitempty" toml:"w,omitempty"`
	H     int    `yaml:"h,omitempty" toml:"h,omitempty"`
	Title string `yaml:"title,omitempty" toml:"title,omitempty"`
	VSync bool   `yaml:"vsync,omitempty" toml:"vsync,omitempty"`
}

// Config is the file form. Pointer fields distinguish "unset" from zero,
// since a zero speed or dark mix is meaningful.
type Config struct {
	Surface        string             `yaml:"surface,omitempty" toml:"surface,omitempty"` // term | preview | led | snapshot | window
	FPS            int                `yaml:"fps,omitempty" toml:"fps,omitempty"`
	Preset         string             `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Palette        render.HexPalette  `yaml:"palette,omitempty" toml:"palette,omitempty"`
	Brightness     *float64           `yaml:"brightness,omitempty" toml:"brightness,omitempty"`
	AnimationSpeed *float64           `yaml:"animation_speed,omitempty" toml:"animation_speed,omitempty"`
	DarkMix        *float64           `yaml:"dark_mix,omitempty" toml:"dark_mix,omitempty"`
	SpeedCurve     []render.SpeedBand `yaml:"speed_curve,omitempty" toml:"speed_curve,omitempty"`
	FadeInMS       int                `yaml:"fade_in_ms,omitempty" toml:"fade_in_ms,omitempty"`
	Program        string             `yaml:"program,omitempty" toml:"program,omitempty"`

	Theme    Theme    `yaml:"theme" toml:"theme"`
	Noise    Noise    `yaml:"noise" toml:"noise"`
	Preview  Preview  `yaml:"preview" toml:"preview"`
	LED      LED      `yaml:"led" toml:"led"`
	Snapshot Snapshot `yaml:"snapshot" toml:"snapshot"`
	Window   Window   `yaml:"window" toml:"window"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Expand resolves a leading ~ in path.
func Expand(path string) (string, error) {
	return homedir.Expand(path)
}

func Load(path string) (*Config, error) {
	path, err := Expand(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b, isTOML(path))
}

// Decode parses b as TOML when asTOML is set, YAML otherwise, and
// validates the result.
func Decode(b []byte, asTOML bool) (*Config, error) {
	var c Config
	if asTOML {
		if err := toml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	path, err := Expand(path)
	if err != nil {
		return err
	}
	var b []byte
	if isTOML(path) {
		b, err = toml.Marshal(c)
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks ranges that would otherwise be clamped silently.
func (c *Config) Validate() error {
	var errs []error
	switch c.Surface {
	case "", "term", "preview", "led", "snapshot", "window":
	default:
		errs = append(errs, fmt.Errorf("unknown surface %q", c.Surface))
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps %d is negative", c.FPS))
	}
	if c.Snapshot.Frames < 0 || c.Snapshot.Limit < 0 {
		errs = append(errs, fmt.Errorf("snapshot frames %d / limit %d is negative", c.Snapshot.Frames, c.Snapshot.Limit))
	}
	if v := c.Brightness; v != nil && (*v < 0 || *v > render.MaxBrightness) {
		errs = append(errs, fmt.Errorf("brightness %v outside [0,%v]", *v, render.MaxBrightness))
	}
	if v := c.AnimationSpeed; v != nil && (*v < 0 || *v > render.MaxAnimationSpeed) {
		errs = append(errs, fmt.Errorf("animation_speed %v outside [0,%v]", *v, render.MaxAnimationSpeed))
	}
	if v := c.DarkMix; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, fmt.Errorf("dark_mix %v outside [0,1]", *v))
	}
	if len(c.SpeedCurve) > 0 {
		if err := (render.SpeedCurve{Bands: c.SpeedCurve}).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.Palette.Apply(render.Palette{}); err != nil {
		errs = append(errs, err)
	}
	switch c.Theme.Mode {
	case "", "discrete", "scroll":
	default:
		errs = append(errs, fmt.Errorf("unknown theme mode %q", c.Theme.Mode))
	}
	switch c.Theme.Initial {
	case "", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("unknown initial theme %q", c.Theme.Initial))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// FadeIn is FadeInMS as a duration.
func (c *Config) FadeIn() time.Duration { return time.Duration(c.FadeInMS) * time.Millisecond }
