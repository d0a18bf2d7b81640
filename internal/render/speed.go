package render

import (
	"errors"
	"fmt"
)

// SpeedBand is one linear segment of a SpeedCurve. It covers the UI range
// from the previous band's UpTo to its own UpTo.
type SpeedBand struct {
	UpTo  float64 `yaml:"upto" toml:"upto" json:"upto"`
	Coeff float64 `yaml:"coeff" toml:"coeff" json:"coeff"`
}

// SpeedCurve maps the 0..10 animation speed control onto a phase multiplier
// (noise units per second). Each band adds Coeff per UI unit, so the map is
// continuous and piecewise-linear.
type SpeedCurve struct {
	Bands []SpeedBand `yaml:"bands" json:"bands"`
}

// DefaultSpeedCurve has slow, normal and fast bands over [0,3], [3,7], [7,10].
// The default UI value 5 maps to 0.08, close to the 0.1/s drift of the
// production page.
func DefaultSpeedCurve() SpeedCurve {
	return SpeedCurve{Bands: []SpeedBand{
		{UpTo: 3, Coeff: 0.01},
		{UpTo: 7, Coeff: 0.025},
		{UpTo: 10, Coeff: 0.06},
	}}
}

// Validate rejects curves that would not be monotonic.
func (c SpeedCurve) Validate() error {
	if len(c.Bands) == 0 {
		return errors.New("speed curve has no bands")
	}
	prev := 0.0
	for i, b := range c.Bands {
		if b.UpTo <= prev {
			return fmt.Errorf("speed band %d: upto %v not above %v", i, b.UpTo, prev)
		}
		if b.Coeff < 0 {
			return fmt.Errorf("speed band %d: negative coefficient %v", i, b.Coeff)
		}
		prev = b.UpTo
	}
	return nil
}

// Map returns the multiplier for a UI value. Values are clamped to
// [0, MaxAnimationSpeed]; past the last band the last coefficient continues.
func (c SpeedCurve) Map(ui float64) float64 {
	ui = clamp(ui, 0, MaxAnimationSpeed)
	var out, lo float64
	for i, b := range c.Bands {
		hi := b.UpTo
		if i == len(c.Bands)-1 && hi < MaxAnimationSpeed {
			hi = MaxAnimationSpeed
		}
		if ui <= lo {
			break
		}
		span := hi - lo
		if ui < hi {
			span = ui - lo
		}
		if span > 0 && b.Coeff > 0 {
			out += span * b.Coeff
		}
		lo = hi
	}
	return out
}
