package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex reads "#rrggbb" (or "#rgb") into a Color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}.Clamp(), nil
}

// Hex renders c as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

// RGB8 returns c quantized to bytes.
func (c Color) RGB8() (uint8, uint8, uint8) {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().RGB255()
}

// HexPalette is the text form used by config files and the control socket.
// Empty fields keep the base palette's stop.
type HexPalette struct {
	Dark1  string `yaml:"dark1,omitempty" toml:"dark1,omitempty" json:"dark1,omitempty"`
	Dark2  string `yaml:"dark2,omitempty" toml:"dark2,omitempty" json:"dark2,omitempty"`
	Light1 string `yaml:"light1,omitempty" toml:"light1,omitempty" json:"light1,omitempty"`
	Light2 string `yaml:"light2,omitempty" toml:"light2,omitempty" json:"light2,omitempty"`
}

// Apply overlays the non-empty stops of h onto base.
func (h HexPalette) Apply(base Palette) (Palette, error) {
	out := base
	for _, f := range []struct {
		s   string
		dst *Color
	}{
		{h.Dark1, &out.Dark1},
		{h.Dark2, &out.Dark2},
		{h.Light1, &out.Light1},
		{h.Light2, &out.Light2},
	} {
		if f.s == "" {
			continue
		}
		c, err := ParseHex(f.s)
		if err != nil {
			return base, err
		}
		*f.dst = c
	}
	return out, nil
}

// HexOf renders a palette to its text form.
func HexOf(p Palette) HexPalette {
	return HexPalette{Dark1: p.Dark1.Hex(), Dark2: p.Dark2.Hex(), Light1: p.Light1.Hex(), Light2: p.Light2.Hex()}
}

// BlendPalette interpolates every stop from a to b in CIE L*a*b*.
func BlendPalette(a, b Palette, t float64) Palette {
	t = clamp(t, 0, 1)
	blend := func(x, y Color) Color {
		cx := colorful.Color{R: float64(x.R), G: float64(x.G), B: float64(x.B)}
		cy := colorful.Color{R: float64(y.R), G: float64(y.G), B: float64(y.B)}
		m := cx.BlendLab(cy, t).Clamped()
		return Color{R: float32(m.R), G: float32(m.G), B: float32(m.B)}
	}
	return Palette{
		Dark1:  blend(a.Dark1, b.Dark1),
		Dark2:  blend(a.Dark2, b.Dark2),
		Light1: blend(a.Light1, b.Light1),
		Light2: blend(a.Light2, b.Light2),
	}
}

// hex24 converts 0xRRGGBB literals as used in preset tables.
func hex24(v uint32) Color {
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}
