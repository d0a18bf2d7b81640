package render

import (
	"math"

	"github.com/chewxy/math32"
)

// Limit bounds the drive of a physical LED frame. It is applied after
// shading, only by outputs that light real LEDs.
//
//   - WhiteCap: per-pixel cap on R+G+B in linear space (3 = no cap)
//   - ChanMA:   current per colour channel at full scale (WS2812 ≈ 20 mA)
//   - BudgetMA: global current budget; 0 disables the budget stage
//   - Knee:     fraction of the budget where soft limiting begins
type Limit struct {
	WhiteCap float64 `yaml:"white_cap" toml:"white_cap"`
	ChanMA   float64 `yaml:"chan_ma" toml:"chan_ma"`
	BudgetMA float64 `yaml:"budget_ma" toml:"budget_ma"`
	Knee     float64 `yaml:"knee" toml:"knee"`
}

func DefaultLimit() Limit {
	return Limit{WhiteCap: 3.0, ChanMA: 20, BudgetMA: 0, Knee: 0.9}
}

// Apply runs the per-pixel white cap then the global budget.
func (l Limit) Apply(buf []Color) {
	d := DefaultLimit()
	if l.WhiteCap > 0 {
		d.WhiteCap = l.WhiteCap
	}
	if l.ChanMA > 0 {
		d.ChanMA = l.ChanMA
	}
	if l.BudgetMA > 0 {
		d.BudgetMA = l.BudgetMA
	}
	if l.Knee > 0 && l.Knee < 1 {
		d.Knee = l.Knee
	}

	wc := float32(d.WhiteCap)
	for i := range buf {
		s := buf[i].R + buf[i].G + buf[i].B
		if s > wc && s > 0 {
			scale := wc / s
			buf[i].R *= scale
			buf[i].G *= scale
			buf[i].B *= scale
		}
	}

	if d.BudgetMA <= 0 {
		return
	}
	total := EstimateMA(buf, d.ChanMA)
	if total <= 0 {
		return
	}
	ratio := total / d.BudgetMA
	if ratio <= d.Knee {
		return
	}
	// compress everything above the knee so the result never exceeds the budget
	span := 1.0 - d.Knee
	out := d.Knee + span*math.Tanh((ratio-d.Knee)/span)
	scaleAll(buf, float32(out/ratio))
}

// EstimateMA is the current model used by the budget stage.
func EstimateMA(buf []Color, chanMA float64) float64 {
	var total float64
	for i := range buf {
		total += float64(buf[i].R + buf[i].G + buf[i].B)
	}
	return total * chanMA
}

// Gamma applies an output transfer curve; g <= 0 or 1 is a no-op.
func Gamma(buf []Color, g float64) {
	if g <= 0 || g == 1 {
		return
	}
	for i := range buf {
		buf[i].R = powf(buf[i].R, g)
		buf[i].G = powf(buf[i].G, g)
		buf[i].B = powf(buf[i].B, g)
	}
}

func scaleAll(buf []Color, s float32) {
	if s >= 1.0 {
		return
	}
	for i := range buf {
		buf[i].R *= s
		buf[i].G *= s
		buf[i].B *= s
	}
}

func powf(x float32, p float64) float32 {
	return math32.Pow(clamp01f(x), float32(p))
}
