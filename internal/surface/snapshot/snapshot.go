// Package snapshot writes rendered frames to PNG files.
package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
)

type Options struct {
	W, H    int
	Ratio   float64
	Dir     string
	Pattern string // fmt pattern taking the frame number, default "frame-%05d.png"
	Every   int    // keep one frame in Every, default 1
	Limit   int    // stop writing after Limit files, 0 = unbounded
	Soft    soft.Options
}

type Surface struct {
	opts    Options
	soft    *soft.Surface
	log     zerolog.Logger
	n       int
	Written []string
}

func New(opts Options, lg *zerolog.Logger) (*Surface, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("snapshot: size %dx%d", opts.W, opts.H)
	}
	if opts.Pattern == "" {
		opts.Pattern = "frame-%05d.png"
	}
	if opts.Every < 1 {
		opts.Every = 1
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
	}
	l := log.Logger
	if lg != nil {
		l = *lg
	}
	s := &Surface{opts: opts, log: l.With().Str("surface", "snapshot").Logger()}
	s.soft = &soft.Surface{W: opts.W, H: opts.H, Ratio: opts.Ratio, Opts: opts.Soft, Sink: s.write}
	return s, nil
}

func (s *Surface) Context() (gpu.Device, error) { return s.soft.Context() }
func (s *Surface) Size() (int, int)             { return s.soft.Size() }
func (s *Surface) PixelRatio() float64          { return s.soft.PixelRatio() }
func (s *Surface) Present() error               { return s.soft.Present() }

// Done reports whether Limit files have been written.
func (s *Surface) Done() bool {
	return s.opts.Limit > 0 && len(s.Written) >= s.opts.Limit
}

func (s *Surface) write(img *image.RGBA) error {
	n := s.n
	s.n++
	if n%s.opts.Every != 0 || s.Done() {
		return nil
	}
	path := filepath.Join(s.opts.Dir, fmt.Sprintf(s.opts.Pattern, n))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.Written = append(s.Written, path)
	s.log.Debug().Str("path", path).Int("frame", n).Msg("wrote frame")
	return nil
}
