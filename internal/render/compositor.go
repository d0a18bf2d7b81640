package render

import (
	"math"

	"github.com/coreman2200/funtimes-gradient/internal/noise"
)

// Params is everything one pixel evaluation needs besides uv and phase.
type Params struct {
	Palette    Palette
	Brightness float64
	DarkMix    float64
	Veil       float64
	Shape      Shape
	Field      noise.Field // nil means noise.Simplex
}

// ParamsOf snapshots the per-pixel inputs from a Config.
func ParamsOf(c *Config) Params {
	return Params{
		Palette:    c.Palette,
		Brightness: c.Brightness,
		DarkMix:    c.DarkMix,
		Veil:       c.Veil,
		Shape:      c.Shape,
	}
}

// Smoothstep is the GLSL smoothstep: 0 below e0, 1 above e1, cubic between.
func Smoothstep(e0, e1, x float64) float64 {
	if e0 == e1 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// MixColor linearly interpolates a→b by t.
func MixColor(a, b Color, t float64) Color {
	tf := float32(t)
	return Color{
		R: a.R + (b.R-a.R)*tf,
		G: a.G + (b.G-a.G)*tf,
		B: a.B + (b.B-a.B)*tf,
	}
}

// Shade evaluates the gradient at uv ∈ [0,1]² for the given animation phase.
func Shade(uv Vec2, phase float64, p Params) Color {
	s := p.Shape
	field := p.Field
	if field == nil {
		field = noise.Simplex{}
	}

	n := field.Eval3(
		uv.X*s.NoiseScale+phase*s.Drift.X,
		uv.Y*s.NoiseScale+phase*s.Drift.Y,
		phase*s.TimeScale,
	)
	ns := Smoothstep(s.NoiseEdges.X, s.NoiseEdges.Y, n)

	dist := math.Hypot(uv.X-s.Anchor.X, uv.Y-s.Anchor.Y)
	dist = Smoothstep(s.DistEdges.X, s.DistEdges.Y, dist)

	grad := ns * dist

	pal := p.Palette
	dark := MixColor(pal.Dark1, pal.Dark2, grad)
	light := MixColor(pal.Light1, pal.Light2, grad)

	blend := Smoothstep(s.BlendEdges.X, s.BlendEdges.Y, p.Brightness)
	blend *= 1 - clamp(p.DarkMix, 0, 1)

	c := MixColor(dark, light, blend)
	if p.Veil > 0 {
		c = MixColor(c, Color{}, clamp(p.Veil, 0, 1))
	}
	return c.Clamp()
}
