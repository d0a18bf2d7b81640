package led

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/coreman2200/funtimes-gradient/internal/layout"
)

// Pattern is a wiring check that drives the strip directly, bypassing the
// renderer and the layout table.
type Pattern string

const (
	IndexSweep  Pattern = "index_sweep"  // one white LED walks the strip
	RGBChannels Pattern = "rgb_channels" // whole strip red, green, blue
	PanelSweep  Pattern = "panel_sweep"  // one panel at a time in cyan
)

func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case IndexSweep, RGBChannels, PanelSweep:
		return p, nil
	}
	return "", fmt.Errorf("unknown test pattern %q", s)
}

type patternRunner struct {
	kind Pattern
	step int
}

// next fills strip with the current step; it returns false when done.
func (r *patternRunner) next(m layout.Matrix, strip *image.NRGBA) bool {
	n := m.Count()
	off := color.NRGBA{A: 0xff}
	for i := 0; i < n; i++ {
		strip.SetNRGBA(i, 0, off)
	}
	switch r.kind {
	case IndexSweep:
		if r.step >= n {
			return false
		}
		strip.SetNRGBA(r.step, 0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	case RGBChannels:
		if r.step >= 3 {
			return false
		}
		c := off
		switch r.step {
		case 0:
			c.R = 0xff
		case 1:
			c.G = 0xff
		case 2:
			c.B = 0xff
		}
		for i := 0; i < n; i++ {
			strip.SetNRGBA(i, 0, c)
		}
	case PanelSweep:
		per := m.W * m.H
		if r.step*per >= n {
			return false
		}
		for i := r.step * per; i < (r.step+1)*per; i++ {
			strip.SetNRGBA(i, 0, color.NRGBA{G: 0xff, B: 0xff, A: 0xff})
		}
	default:
		return false
	}
	r.step++
	return true
}

// RunPattern shows every step of p for interval each, then blanks the strip.
func (s *Surface) RunPattern(ctx context.Context, p Pattern, interval time.Duration) error {
	r := &patternRunner{kind: p}
	t := time.NewTicker(interval)
	defer t.Stop()
	for r.next(s.opts.Matrix, s.strip) {
		if err := s.drawer.Draw(s.drawer.Bounds(), s.strip, image.Point{}); err != nil {
			return err
		}
		s.log.Debug().Str("pattern", string(p)).Int("step", r.step).Msg("test pattern")
		select {
		case <-ctx.Done():
			return s.drawer.Halt()
		case <-t.C:
		}
	}
	return s.drawer.Halt()
}
