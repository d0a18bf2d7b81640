package soft

import (
	"image"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
)

// Surface is an offscreen drawing surface backed by a soft Device. Sink, if
// set, receives the framebuffer on every Present; it must not retain it.
type Surface struct {
	W, H  int
	Ratio float64
	Opts  Options
	Sink  func(*image.RGBA) error

	dev *Device
}

func (s *Surface) Context() (gpu.Device, error) {
	if s.dev == nil {
		s.dev = New(s.Opts)
	}
	return s.dev, nil
}

func (s *Surface) Size() (int, int) { return s.W, s.H }

func (s *Surface) PixelRatio() float64 {
	if s.Ratio <= 0 {
		return 1
	}
	return s.Ratio
}

func (s *Surface) Present() error {
	if s.Sink == nil || s.dev == nil {
		return nil
	}
	return s.Sink(s.dev.Frame())
}

// Device returns the backing device, nil before the first Context call.
func (s *Surface) Device() *Device { return s.dev }
