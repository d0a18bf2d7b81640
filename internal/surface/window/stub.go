//go:build !gl

package window

import (
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/glcore"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

type Window struct{}

func Open(opts Options, lg *zerolog.Logger) (*Window, error) {
	return nil, glcore.ErrUnsupported
}

func (w *Window) Context() (gpu.Device, error) { return nil, glcore.ErrUnsupported }
func (w *Window) Size() (int, int)             { return 0, 0 }
func (w *Window) PixelRatio() float64          { return 1 }
func (w *Window) Present() error               { return glcore.ErrUnsupported }
func (w *Window) ShouldClose() bool            { return true }
func (w *Window) PollEvents()                  {}
func (w *Window) Bind(bg *widget.Background)   {}
func (w *Window) Close()                       {}
