//go:build gl

package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/glcore"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

type Window struct {
	win *glfw.Window
	dev *glcore.Device
	log zerolog.Logger

	mu     sync.Mutex
	bg     *widget.Background
	scroll float64
}

// Open creates the window and makes its context current on the calling
// thread. All later calls must come from that thread.
func Open(opts Options, lg *zerolog.Logger) (*Window, error) {
	opts = opts.withDefaults()
	l := log.Logger
	if lg != nil {
		l = *lg
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	win, err := glfw.CreateWindow(opts.W, opts.H, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	w := &Window{win: win, log: l.With().Str("surface", "window").Logger()}
	win.SetFramebufferSizeCallback(w.onResize)
	win.SetKeyCallback(w.onKey)
	return w, nil
}

// Context lazily binds the glcore device to the current context.
func (w *Window) Context() (gpu.Device, error) {
	if w.dev == nil {
		dev, err := glcore.New()
		if err != nil {
			return nil, err
		}
		w.dev = dev
		w.log.Info().Str("gl", glcore.Version()).Msg("context ready")
	}
	return w.dev, nil
}

// Size is the window size in screen coordinates.
func (w *Window) Size() (int, int) { return w.win.GetSize() }

func (w *Window) PixelRatio() float64 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

func (w *Window) Present() error {
	w.win.SwapBuffers()
	return nil
}

// PollEvents runs the GLFW event pump. Key and resize callbacks fire from
// here, so it must be called outside Background.Tick.
func (w *Window) PollEvents() { glfw.PollEvents() }

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// Bind routes resize and key events to bg.
func (w *Window) Bind(bg *widget.Background) {
	w.mu.Lock()
	w.bg = bg
	w.mu.Unlock()
}

func (w *Window) target() *widget.Background {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bg
}

func (w *Window) onResize(_ *glfw.Window, _, _ int) {
	if bg := w.target(); bg != nil {
		bg.Resize(w.Size())
	}
}

func (w *Window) onKey(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	bg := w.target()
	if key == glfw.KeyEscape || key == glfw.KeyQ {
		win.SetShouldClose(true)
		return
	}
	if bg == nil {
		return
	}
	switch key {
	case glfw.KeyD:
		bg.RequestTheme(theme.Dark, theme.RequestDuration)
	case glfw.KeyL:
		bg.RequestTheme(theme.Light, theme.RequestDuration)
	case glfw.KeyUp, glfw.KeyDown:
		w.mu.Lock()
		if key == glfw.KeyUp {
			w.scroll = min(1, w.scroll+0.1)
		} else {
			w.scroll = max(0, w.scroll-0.1)
		}
		p := w.scroll
		w.mu.Unlock()
		bg.ScrollProgress(p)
	}
}

// Close releases the device, destroys the window and terminates GLFW.
func (w *Window) Close() {
	if w.dev != nil {
		w.dev.Release()
	}
	w.win.Destroy()
	glfw.Terminate()
}
