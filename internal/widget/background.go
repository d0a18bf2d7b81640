// Package widget hosts a gradient background instance: config, theme
// controller, optional theme program and render pipeline, driven by one
// tick goroutine.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/pipeline"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/sequence"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

// Edit mutates instance state. Edits run on the tick goroutine, before the
// theme advances, in submission order.
type Edit func(cfg *render.Config, th *theme.Controller)

type Options struct {
	FPS      int
	Preset   string         // default render.DefaultPreset
	Config   *render.Config // overrides Preset when set
	Presets  *render.Presets
	Theme    theme.Options
	Pipeline pipeline.Options
	// Settle is the duration of the start-up transition onto the initial
	// theme. Zero means theme.InitialDuration, negative skips it.
	Settle time.Duration
	// FadeIn lifts a veil over the gradient after start. Zero disables it.
	FadeIn time.Duration
	Logger *zerolog.Logger
}

type Stats struct {
	Frames     uint64  `json:"frames"`
	RenderMS   float64 `json:"renderMs"`
	Theme      string  `json:"theme"`
	Brightness float64 `json:"brightness"`
	Speed      float64 `json:"speed"`
	Phase      float64 `json:"phase"`
	Pending    int     `json:"pending"`
	W          int     `json:"w"`
	H          int     `json:"h"`
}

type Background struct {
	name    string
	fps     int
	presets *render.Presets
	log     zerolog.Logger

	// mu serializes the tick against resize, program loads and teardown.
	mu     sync.Mutex
	cfg    render.Config
	theme  *theme.Controller
	player *sequence.Player
	pipe   *pipeline.Pipeline
	veil   *theme.Tween
	xfade  *crossfade
	err    error
	torn   atomic.Bool

	// qmu guards the queue and a pending resize. Surfaces may call back into
	// the instance from Present, which runs with mu held.
	qmu    sync.Mutex
	queue  []Edit
	resize *[2]int

	panel  bool
	cancel context.CancelFunc
	once   sync.Once
}

// New builds an instance on surf. It never fails: without a surface or with
// a pipeline error the instance is inert and Err reports why.
func New(name string, surf pipeline.Surface, opts Options) *Background {
	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}
	lg = lg.With().Str("widget", name).Logger()
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Presets == nil {
		opts.Presets = render.BuiltinPresets()
	}
	b := &Background{
		name:    name,
		fps:     opts.FPS,
		presets: opts.Presets,
		log:     lg,
	}
	b.cfg = b.initialConfig(opts)

	if opts.Theme.Logger == nil {
		opts.Theme.Logger = &b.log
	}
	b.theme = theme.NewController(&b.cfg, opts.Theme)

	if surf == nil {
		b.err = pipeline.ErrMissingContainer
		b.log.Warn().Err(b.err).Msg("background inert")
		return b
	}
	if opts.Pipeline.Logger == nil {
		opts.Pipeline.Logger = &b.log
	}
	pipe, err := pipeline.New(surf, opts.Pipeline)
	if err != nil {
		b.err = err
		b.log.Error().Err(err).Msg("background inert")
		return b
	}
	b.pipe = pipe

	if b.theme.Mode() == theme.Discrete && opts.Settle >= 0 {
		d := opts.Settle
		if d == 0 {
			d = theme.InitialDuration
		}
		_ = b.theme.Settle(b.theme.Current(), d)
	}
	if opts.FadeIn > 0 {
		b.cfg.Veil = 1
		b.veil = theme.NewTween(1, 0, opts.FadeIn, theme.QuadInOut)
	}
	return b
}

func (b *Background) initialConfig(opts Options) render.Config {
	if opts.Config != nil {
		c := *opts.Config
		if len(c.Curve.Bands) == 0 {
			c.Curve = render.DefaultSpeedCurve()
		}
		c.Clamp()
		return c
	}
	name := opts.Preset
	if name == "" {
		name = render.DefaultPreset
	}
	pr, err := b.presets.Lookup(name)
	if err != nil {
		b.log.Warn().Err(err).Str("fallback", render.DefaultPreset).Msg("preset")
		pr, _ = render.BuiltinPresets().Get(render.DefaultPreset)
	}
	return pr.Config()
}

func (b *Background) Name() string { return b.name }

// Err is non-nil for an inert instance.
func (b *Background) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Config returns a copy of the current config.
func (b *Background) Config() render.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

func (b *Background) Stats() Stats {
	b.qmu.Lock()
	pending := len(b.queue)
	b.qmu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Stats{
		Theme:      string(b.theme.Current()),
		Brightness: b.cfg.Brightness,
		Speed:      b.cfg.AnimationSpeed,
		Pending:    pending,
	}
	if b.pipe != nil {
		s.Frames = b.pipe.Frames
		s.RenderMS = b.pipe.Last.RenderMS
		s.Phase = b.pipe.Clock().Phase
		s.W, s.H = b.pipe.BackingSize()
	}
	return s
}

// Submit queues an edit for the next tick. It reports false once torn down.
func (b *Background) Submit(e Edit) bool {
	if e == nil {
		return false
	}
	if b.torn.Load() {
		return false
	}
	b.qmu.Lock()
	b.queue = append(b.queue, e)
	b.qmu.Unlock()
	return true
}

func (b *Background) drain() ([]Edit, *[2]int) {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	q, r := b.queue, b.resize
	b.queue, b.resize = nil, nil
	return q, r
}

// RequestTheme queues a discrete theme change.
func (b *Background) RequestTheme(t theme.Theme, d time.Duration) bool {
	return b.Submit(func(_ *render.Config, th *theme.Controller) {
		if err := th.RequestTheme(t, d); err != nil {
			b.log.Warn().Err(err).Str("theme", string(t)).Msg("request theme")
		}
	})
}

// ScrollProgress queues a scroll position update.
func (b *Background) ScrollProgress(p float64) bool {
	return b.Submit(func(_ *render.Config, th *theme.Controller) {
		if err := th.OnScrollProgress(p); err != nil {
			b.log.Warn().Err(err).Float64("progress", p).Msg("scroll progress")
		}
	})
}

// SetParam queues a numeric config change by name.
func (b *Background) SetParam(name string, v float64) error {
	if _, ok := params[name]; !ok {
		return fmt.Errorf("unknown param %q", name)
	}
	b.Submit(func(cfg *render.Config, _ *theme.Controller) { setParam(cfg, name, v) })
	return nil
}

var params = map[string]func(*render.Config, float64){
	"brightness": func(c *render.Config, v float64) { c.Brightness = v },
	"speed":      func(c *render.Config, v float64) { c.AnimationSpeed = v },
	"darkMix":    func(c *render.Config, v float64) { c.DarkMix = v },
	"veil":       func(c *render.Config, v float64) { c.Veil = v },
}

func setParam(cfg *render.Config, name string, v float64) {
	if f, ok := params[name]; ok {
		f(cfg, v)
		cfg.Clamp()
	}
}

// crossfade blends the palette toward a preset's palette.
type crossfade struct {
	from, to render.Palette
	tw       *theme.Tween
}

// ApplyPreset queues a preset swap. Brightness is kept so an in-flight or
// settled theme is not disturbed. With fade > 0 the palette crossfades.
func (b *Background) ApplyPreset(name string, fade time.Duration) error {
	pr, err := b.presets.Lookup(name)
	if err != nil {
		return err
	}
	b.Submit(func(cfg *render.Config, _ *theme.Controller) { b.applyPreset(cfg, pr, fade) })
	return nil
}

// applyPreset runs on the tick goroutine.
func (b *Background) applyPreset(cfg *render.Config, pr render.Preset, fade time.Duration) {
	keep := cfg.Brightness
	veil := cfg.Veil
	from := cfg.Palette
	pr.Apply(cfg)
	cfg.Brightness = keep
	cfg.Veil = veil
	b.xfade = nil
	if fade > 0 {
		b.xfade = &crossfade{from: from, to: cfg.Palette, tw: theme.NewTween(0, 1, fade, theme.Smooth)}
		cfg.Palette = from
	}
}

// SetPalette queues a palette change. It cancels a running crossfade.
func (b *Background) SetPalette(p render.Palette) bool {
	return b.Submit(func(cfg *render.Config, _ *theme.Controller) {
		b.xfade = nil
		cfg.Palette = p.Clamp()
	})
}

// LoadProgram attaches a theme program and starts it.
func (b *Background) LoadProgram(prog sequence.Program) error {
	pl := sequence.NewPlayer(b.programHooks())
	if err := pl.Load(prog); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.torn.Load() {
		return pipeline.ErrTornDown
	}
	b.player = pl
	pl.Start()
	return nil
}

// programHooks act directly on state: the player only runs inside Tick.
func (b *Background) programHooks() sequence.Hooks {
	return sequence.Hooks{
		ApplyPreset: func(name string) {
			pr, err := b.presets.Lookup(name)
			if err != nil {
				b.log.Warn().Err(err).Msg("program preset")
				return
			}
			b.applyPreset(&b.cfg, pr, 0)
		},
		RequestTheme: func(name string, fadeS float64) {
			t, err := theme.ParseTheme(name)
			if err == nil {
				err = b.theme.RequestTheme(t, time.Duration(fadeS*float64(time.Second)))
			}
			if err != nil {
				b.log.Warn().Err(err).Str("theme", name).Msg("program theme")
			}
		},
		ScrollProgress: func(p float64) {
			if err := b.theme.OnScrollProgress(p); err != nil && !errors.Is(err, theme.ErrModeMismatch) {
				b.log.Warn().Err(err).Msg("program scroll")
			}
		},
		SetParam: func(name string, v float64) { setParam(&b.cfg, name, v) },
	}
}

// Tick applies queued edits, advances the program, theme and fade, then
// renders one frame. It is a no-op on inert or torn-down instances.
func (b *Background) Tick(dt time.Duration) error {
	edits, size := b.drain()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.torn.Load() || b.err != nil {
		return nil
	}
	if size != nil {
		b.pipe.Resize(size[0], size[1])
	}
	for _, e := range edits {
		e(&b.cfg, b.theme)
	}
	if b.player != nil {
		b.player.Tick(dt.Seconds())
	}
	b.theme.Advance(dt)
	if x := b.xfade; x != nil {
		t, done := x.tw.Step(dt)
		b.cfg.Palette = render.BlendPalette(x.from, x.to, t)
		if done {
			b.cfg.Palette = x.to
			b.xfade = nil
		}
	}
	if b.veil != nil {
		v, done := b.veil.Step(dt)
		b.cfg.Veil = v
		if done {
			b.veil = nil
		}
	}
	b.cfg.Clamp()

	if err := b.pipe.RenderFrame(&b.cfg); err != nil {
		b.err = fmt.Errorf("render %s: %w", b.name, err)
		b.log.Error().Err(err).Msg("render failed, background now inert")
		b.pipe.Teardown()
		return b.err
	}
	return nil
}

// Run ticks at the configured FPS until ctx is cancelled or Teardown is
// called. Inert instances return their error immediately.
func (b *Background) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.mu.Lock()
	if b.err != nil {
		b.mu.Unlock()
		return b.err
	}
	if b.torn.Load() {
		b.mu.Unlock()
		return pipeline.ErrTornDown
	}
	b.cancel = cancel
	b.mu.Unlock()

	dt := time.Second / time.Duration(b.fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	last := time.Now()
	b.log.Debug().Int("fps", b.fps).Msg("loop start")
	for {
		select {
		case <-ctx.Done():
			b.log.Debug().Msg("loop stop")
			return nil
		case now := <-ticker.C:
			step := now.Sub(last)
			last = now
			if err := b.Tick(step); err != nil {
				return err
			}
		}
	}
}

// Resize records the on-screen size. The pipeline picks it up on the next
// tick; only the latest size is kept.
func (b *Background) Resize(w, h int) {
	if b.torn.Load() {
		return
	}
	b.qmu.Lock()
	b.resize = &[2]int{w, h}
	b.qmu.Unlock()
}

func (b *Background) SetPanelVisible(v bool) {
	b.mu.Lock()
	b.panel = v
	b.mu.Unlock()
}

func (b *Background) PanelVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panel
}

// Teardown stops the loop, drops any transition and releases the pipeline.
// Safe to call more than once and from any goroutine.
func (b *Background) Teardown() {
	b.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.torn.Store(true)
		if b.cancel != nil {
			b.cancel()
		}
		b.theme.Cancel()
		b.player = nil
		b.veil = nil
		b.xfade = nil
		b.pipe.Teardown()
		b.drain()
		b.log.Debug().Msg("torn down")
	})
}
