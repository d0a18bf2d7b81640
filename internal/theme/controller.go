// Package theme drives the light/dark balance of a render.Config, either by
// eased transitions between two endpoints or directly from scroll progress.
package theme

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/render"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Mode is fixed for the lifetime of a Controller.
type Mode string

const (
	Discrete Mode = "discrete"
	Scroll   Mode = "scroll"
)

var ErrModeMismatch = errors.New("theme: operation not valid in this mode")

// Endpoint is the config state a theme settles on.
type Endpoint struct {
	Brightness float64 `yaml:"brightness" json:"brightness"`
	DarkMix    float64 `yaml:"dark_mix" json:"darkMix"`
}

const (
	DarkBrightness  = 0.2
	LightBrightness = 0.8

	// RequestDuration is used by RequestTheme callers that have no opinion.
	RequestDuration = 1500 * time.Millisecond
	// InitialDuration is the first theme settle after start-up.
	InitialDuration = 2 * time.Second
)

type Options struct {
	Mode    Mode
	Initial Theme
	Dark    Endpoint
	Light   Endpoint
	Ease    Ease
	// DriveDarkMix lets transitions and scroll write Config.DarkMix too.
	DriveDarkMix bool
	Logger       *zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Mode:    Discrete,
		Initial: Light,
		Dark:    Endpoint{Brightness: DarkBrightness},
		Light:   Endpoint{Brightness: LightBrightness},
		Ease:    QuadInOut,
	}
}

// Transition is one in-flight interpolation. Identity matters: a new request
// replaces the pointer returned by Active.
type Transition struct {
	Target     Theme
	brightness *Tween
	darkMix    *Tween
}

func (t *Transition) Progress() float64 { return t.brightness.Progress() }

// Controller is not safe for concurrent use; it runs on the frame tick.
type Controller struct {
	cfg  *render.Config
	opts Options
	log  zerolog.Logger

	current Theme
	active  *Transition
	scroll  float64
}

func NewController(cfg *render.Config, opts Options) *Controller {
	def := DefaultOptions()
	if opts.Mode == "" {
		opts.Mode = def.Mode
	}
	if opts.Initial == "" {
		opts.Initial = def.Initial
	}
	if opts.Dark == (Endpoint{}) {
		opts.Dark = def.Dark
	}
	if opts.Light == (Endpoint{}) {
		opts.Light = def.Light
	}
	if opts.Ease == nil {
		opts.Ease = def.Ease
	}
	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}
	return &Controller{
		cfg:     cfg,
		opts:    opts,
		log:     lg.With().Str("component", "theme").Logger(),
		current: opts.Initial,
	}
}

func (c *Controller) Mode() Mode       { return c.opts.Mode }
func (c *Controller) Current() Theme   { return c.current }
func (c *Controller) Options() Options { return c.opts }

// Active returns the in-flight transition or nil.
func (c *Controller) Active() *Transition { return c.active }

func (c *Controller) endpoint(t Theme) Endpoint {
	if t == Dark {
		return c.opts.Dark
	}
	return c.opts.Light
}

// RequestTheme starts an eased transition to target from the current config
// values. A request for the current theme does nothing. A new request
// replaces any in-flight transition.
func (c *Controller) RequestTheme(target Theme, d time.Duration) error {
	if c.opts.Mode != Discrete {
		return ErrModeMismatch
	}
	if _, err := ParseTheme(string(target)); err != nil {
		return err
	}
	if target == c.current {
		return nil
	}
	c.start(target, d)
	return nil
}

// Settle transitions to target even when it is already current. It is used
// once at start-up so the config reaches the endpoint of the initial theme.
func (c *Controller) Settle(target Theme, d time.Duration) error {
	if c.opts.Mode != Discrete {
		return ErrModeMismatch
	}
	if _, err := ParseTheme(string(target)); err != nil {
		return err
	}
	c.start(target, d)
	return nil
}

func (c *Controller) start(target Theme, d time.Duration) {
	end := c.endpoint(target)
	tr := &Transition{
		Target:     target,
		brightness: NewTween(c.cfg.Brightness, end.Brightness, d, c.opts.Ease),
	}
	if c.opts.DriveDarkMix {
		tr.darkMix = NewTween(c.cfg.DarkMix, end.DarkMix, d, c.opts.Ease)
	}
	if c.active != nil {
		c.log.Debug().Str("from", string(c.active.Target)).Str("to", string(target)).Msg("transition pre-empted")
	}
	c.log.Debug().Str("from", string(c.current)).Str("to", string(target)).Dur("duration", d).Msg("theme change")
	c.current = target
	c.active = tr
	if d <= 0 {
		c.Advance(0)
	}
}

// OnScrollProgress maps p ∈ [0,1] (clamped) onto the dark→light range.
func (c *Controller) OnScrollProgress(p float64) error {
	if c.opts.Mode != Scroll {
		return ErrModeMismatch
	}
	p = clamp01(p)
	c.scroll = p
	u := c.opts.Ease(p)
	d, l := c.opts.Dark, c.opts.Light
	c.cfg.Brightness = d.Brightness + (l.Brightness-d.Brightness)*u
	if c.opts.DriveDarkMix {
		c.cfg.DarkMix = d.DarkMix + (l.DarkMix-d.DarkMix)*u
	}
	if p >= 0.5 {
		c.current = Light
	} else {
		c.current = Dark
	}
	return nil
}

// ScrollProgress is the last progress value applied.
func (c *Controller) ScrollProgress() float64 { return c.scroll }

// Advance steps the in-flight transition by dt. On completion the endpoint is
// written exactly and the transition cleared.
func (c *Controller) Advance(dt time.Duration) {
	tr := c.active
	if tr == nil {
		return
	}
	v, done := tr.brightness.Step(dt)
	c.cfg.Brightness = v
	if tr.darkMix != nil {
		c.cfg.DarkMix, _ = tr.darkMix.Step(dt)
	}
	if done {
		c.active = nil
	}
}

// Cancel drops the in-flight transition, leaving the config where it is.
func (c *Controller) Cancel() { c.active = nil }
