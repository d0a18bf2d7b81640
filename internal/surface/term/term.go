// Package term renders the gradient into a terminal with half-block cells:
// every cell carries two vertical pixels, top as foreground and bottom as
// background colour.
package term

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

const upperHalf = '▀'

type Surface struct {
	screen tcell.Screen
	soft   *soft.Surface
	log    zerolog.Logger

	mu      sync.Mutex
	scroll  float64
	presets []string
	preset  int
}

// Open creates and initializes the real terminal screen.
func Open(opts soft.Options, lg *zerolog.Logger) (*Surface, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return New(s, opts, lg), nil
}

// New wraps an initialized screen.
func New(screen tcell.Screen, opts soft.Options, lg *zerolog.Logger) *Surface {
	l := log.Logger
	if lg != nil {
		l = *lg
	}
	t := &Surface{screen: screen, log: l.With().Str("surface", "term").Logger()}
	cols, rows := screen.Size()
	t.soft = &soft.Surface{W: cols, H: rows * 2, Opts: opts, Sink: t.blit}
	return t
}

func (t *Surface) Context() (gpu.Device, error) { return t.soft.Context() }

// Size is in pixels: one column wide, half a row tall.
func (t *Surface) Size() (int, int) {
	cols, rows := t.screen.Size()
	return cols, rows * 2
}

func (t *Surface) PixelRatio() float64 { return 1 }
func (t *Surface) Present() error      { return t.soft.Present() }

func (t *Surface) blit(img *image.RGBA) error {
	b := img.Bounds()
	cols, rows := t.screen.Size()
	for y := 0; y < rows && 2*y < b.Dy(); y++ {
		for x := 0; x < cols && x < b.Dx(); x++ {
			top := img.RGBAAt(x, 2*y)
			st := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B)))
			if 2*y+1 < b.Dy() {
				bot := img.RGBAAt(x, 2*y+1)
				st = st.Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			}
			t.screen.SetContent(x, y, upperHalf, nil, st)
		}
	}
	t.screen.Show()
	return nil
}

// Close restores the terminal.
func (t *Surface) Close() { t.screen.Fini() }

// SetPresets sets the cycle order for the preset key.
func (t *Surface) SetPresets(names []string) {
	t.mu.Lock()
	t.presets = names
	t.mu.Unlock()
}

// HandleEvent maps one terminal event onto bg. It reports whether the user
// asked to quit.
//
//	d / l      dark / light theme
//	up / down  scroll progress ±0.1
//	+ / -      animation speed ±1
//	p          next preset
//	q, Esc     quit
func (t *Surface) HandleEvent(ev tcell.Event, bg *widget.Background) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		bg.Resize(t.Size())
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			bg.ScrollProgress(t.nudge(0.1))
		case tcell.KeyDown:
			bg.ScrollProgress(t.nudge(-0.1))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'd':
				bg.RequestTheme(theme.Dark, theme.RequestDuration)
			case 'l':
				bg.RequestTheme(theme.Light, theme.RequestDuration)
			case '+', '=':
				bg.Submit(nudgeSpeed(1))
			case '-':
				bg.Submit(nudgeSpeed(-1))
			case 'p':
				if name := t.nextPreset(); name != "" {
					if err := bg.ApplyPreset(name, time.Second); err != nil {
						t.log.Warn().Err(err).Msg("preset")
					}
				}
			}
		}
	}
	return false
}

func (t *Surface) nudge(d float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scroll += d
	if t.scroll < 0 {
		t.scroll = 0
	}
	if t.scroll > 1 {
		t.scroll = 1
	}
	return t.scroll
}

// nudgeSpeed steps the speed relative to its value at apply time, so
// presses queued within one frame all count.
func nudgeSpeed(d float64) widget.Edit {
	return func(cfg *render.Config, _ *theme.Controller) {
		cfg.AnimationSpeed += d
		cfg.Clamp()
	}
}

func (t *Surface) nextPreset() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.presets) == 0 {
		return ""
	}
	t.preset = (t.preset + 1) % len(t.presets)
	return t.presets[t.preset]
}

// Events pumps terminal events into bg until ctx ends or the user quits;
// then it calls quit.
func (t *Surface) Events(ctx context.Context, bg *widget.Background, quit func()) {
	evs := make(chan tcell.Event)
	stop := make(chan struct{})
	go t.screen.ChannelEvents(evs, stop)
	defer close(stop)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			if t.HandleEvent(ev, bg) {
				quit()
				return
			}
		}
	}
}
