// Package led drives a WS2812-style matrix over SPI. Frames are rendered by
// the soft device, optionally supersampled, then mapped through the matrix
// wiring order and current limiter before they reach the strip.
package led

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/screen1d"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/layout"
	"github.com/coreman2200/funtimes-gradient/internal/render"
)

// DefaultFreq is the NRZ bit clock used with 3-channel strips.
const DefaultFreq = 2500 * physic.KiloHertz

type Options struct {
	Matrix      layout.Matrix
	Limit       render.Limit
	Gamma       float64
	Supersample int     // render at N× the matrix size then downscale
	Smoothing   float64 // 0..1 share of the previous frame kept, 0 disables
	Port        string  // spireg name, "" picks the first port
	Freq        physic.Frequency
	Soft        soft.Options
}

type Surface struct {
	opts   Options
	drawer display.Drawer
	closer io.Closer
	soft   *soft.Surface
	log    zerolog.Logger

	table  []int
	small  *image.RGBA
	buf    []render.Color
	prev   []render.Color
	strip  *image.NRGBA
	Frames int
}

// Open initializes the host drivers and binds an nrzled strip on the SPI
// port. When no port is available the frames are printed to the console
// instead and Hardware reports false.
func Open(opts Options, lg *zerolog.Logger) (*Surface, error) {
	if err := opts.Matrix.Validate(); err != nil {
		return nil, err
	}
	l := log.Logger
	if lg != nil {
		l = *lg
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: host init: %w", err)
	}
	n := opts.Matrix.Count()
	port, err := spireg.Open(opts.Port)
	if err != nil {
		l.Warn().Err(err).Msg("no SPI port, printing at the console")
		return New(screen1d.New(&screen1d.Opts{X: n}), nil, opts, lg)
	}
	freq := opts.Freq
	if freq == 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: n, Channels: 3, Freq: freq})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("led: %w", err)
	}
	if err := d.Halt(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("led: halt: %w", err)
	}
	return New(d, port, opts, lg)
}

// New wraps an existing drawer. closer, if set, is closed with the surface.
func New(d display.Drawer, closer io.Closer, opts Options, lg *zerolog.Logger) (*Surface, error) {
	if err := opts.Matrix.Validate(); err != nil {
		return nil, err
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	l := log.Logger
	if lg != nil {
		l = *lg
	}
	w, h := opts.Matrix.Bounds()
	n := opts.Matrix.Count()
	s := &Surface{
		opts:   opts,
		drawer: d,
		closer: closer,
		log:    l.With().Str("surface", "led").Str("drawer", d.String()).Logger(),
		table:  opts.Matrix.Table(),
		small:  image.NewRGBA(image.Rect(0, 0, w, h)),
		buf:    make([]render.Color, n),
		strip:  image.NewNRGBA(image.Rect(0, 0, n, 1)),
	}
	s.soft = &soft.Surface{
		W:    w * opts.Supersample,
		H:    h * opts.Supersample,
		Opts: opts.Soft,
		Sink: s.push,
	}
	return s, nil
}

func (s *Surface) Context() (gpu.Device, error) { return s.soft.Context() }
func (s *Surface) Size() (int, int)             { return s.soft.Size() }
func (s *Surface) PixelRatio() float64          { return 1 }
func (s *Surface) Present() error               { return s.soft.Present() }

// Hardware reports whether frames go to a real strip.
func (s *Surface) Hardware() bool {
	_, ok := s.drawer.(*nrzled.Dev)
	return ok
}

// Strip returns the last frame in wiring order.
func (s *Surface) Strip() *image.NRGBA { return s.strip }

func (s *Surface) push(img *image.RGBA) error {
	src := img
	if !img.Bounds().Eq(s.small.Bounds()) {
		draw.BiLinear.Scale(s.small, s.small.Bounds(), img, img.Bounds(), draw.Src, nil)
		src = s.small
	}
	w, _ := s.opts.Matrix.Bounds()
	for i, led := range s.table {
		p := src.RGBAAt(i%w, i/w)
		s.buf[led] = render.Color{R: float32(p.R) / 255, G: float32(p.G) / 255, B: float32(p.B) / 255}
	}
	if a := s.opts.Smoothing; a > 0 {
		if s.prev == nil {
			s.prev = make([]render.Color, len(s.buf))
			copy(s.prev, s.buf)
		}
		render.MixFrames(s.buf, s.buf, s.prev, a)
		copy(s.prev, s.buf)
	}
	s.opts.Limit.Apply(s.buf)
	render.Gamma(s.buf, s.opts.Gamma)
	for i, c := range s.buf {
		r, g, b := c.RGB8()
		s.strip.SetNRGBA(i, 0, color.NRGBA{R: r, G: g, B: b, A: 0xff})
	}
	if err := s.drawer.Draw(s.drawer.Bounds(), s.strip, image.Point{}); err != nil {
		return fmt.Errorf("led: draw: %w", err)
	}
	s.Frames++
	return nil
}

// Close blanks the strip and releases the port.
func (s *Surface) Close() error {
	err := s.drawer.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
