package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/noise"
)

func randColor(r *rand.Rand) Color {
	return Color{R: r.Float32(), G: r.Float32(), B: r.Float32()}
}

func inRange(c Color) bool {
	return c.R >= 0 && c.R <= 1 && c.G >= 0 && c.G <= 1 && c.B >= 0 && c.B <= 1
}

func TestShadeStaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		p := Params{
			Palette:    Palette{randColor(r), randColor(r), randColor(r), randColor(r)},
			Brightness: r.Float64() * MaxBrightness,
			DarkMix:    r.Float64(),
			Shape:      DefaultShape(),
		}
		uv := Vec2{r.Float64(), r.Float64()}
		c := Shade(uv, r.Float64()*100, p)
		require.True(t, inRange(c), "out of range %+v for %+v", c, p)
	}
}

func TestShadeOpenSimplexInRange(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	p := BuiltinPresets()
	pr, err := p.Lookup("contrast")
	require.NoError(t, err)
	params := ParamsOf(&Config{Palette: pr.Palette, Brightness: 1, Shape: pr.Shape})
	params.Field = noise.NewOpenSimplex(9)
	for i := 0; i < 2000; i++ {
		c := Shade(Vec2{r.Float64(), r.Float64()}, r.Float64()*10, params)
		require.True(t, inRange(c))
	}
}

func TestShadeBrightnessSelectsSide(t *testing.T) {
	pal := Palette{
		Dark1: Color{0, 0, 0}, Dark2: Color{0, 0, 0},
		Light1: Color{1, 1, 1}, Light2: Color{1, 1, 1},
	}
	uv := Vec2{0.5, 0.5}
	dark := Shade(uv, 3, Params{Palette: pal, Brightness: 0.2, Shape: DefaultShape()})
	light := Shade(uv, 3, Params{Palette: pal, Brightness: 0.8, Shape: DefaultShape()})
	assert.Equal(t, Color{0, 0, 0}, dark)
	assert.Equal(t, Color{1, 1, 1}, light)

	// a full dark mix overrides brightness
	mixed := Shade(uv, 3, Params{Palette: pal, Brightness: 0.8, DarkMix: 1, Shape: DefaultShape()})
	assert.Equal(t, Color{0, 0, 0}, mixed)
}

func TestShadeAnchorSuppressesGradient(t *testing.T) {
	pal := Palette{
		Dark1: Color{0.1, 0.2, 0.3}, Dark2: Color{0.9, 0.9, 0.9},
		Light1: Color{0.1, 0.2, 0.3}, Light2: Color{0.9, 0.9, 0.9},
	}
	s := DefaultShape()
	// at the anchor the distance term is zero, so only the first stop shows
	c := Shade(s.Anchor, 1.7, Params{Palette: pal, Brightness: 1, Shape: s})
	assert.InDelta(t, 0.1, c.R, 1e-6)
	assert.InDelta(t, 0.2, c.G, 1e-6)
	assert.InDelta(t, 0.3, c.B, 1e-6)
}

func TestShadeVeil(t *testing.T) {
	pal := Palette{
		Dark1: Color{1, 1, 1}, Dark2: Color{1, 1, 1},
		Light1: Color{1, 1, 1}, Light2: Color{1, 1, 1},
	}
	uv := Vec2{0.3, 0.3}
	assert.Equal(t, Color{0, 0, 0}, Shade(uv, 0, Params{Palette: pal, Veil: 1, Shape: DefaultShape()}))
	half := Shade(uv, 0, Params{Palette: pal, Veil: 0.5, Shape: DefaultShape()})
	assert.InDelta(t, 0.5, half.R, 1e-6)
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(0.4, 0.6, 0.1))
	assert.Equal(t, 1.0, Smoothstep(0.4, 0.6, 1.8))
	assert.InDelta(t, 0.5, Smoothstep(0.4, 0.6, 0.5), 1e-12)
	assert.Equal(t, 1.0, Smoothstep(0.5, 0.5, 0.5))
	assert.Equal(t, 0.0, Smoothstep(0.5, 0.5, 0.49))
}
