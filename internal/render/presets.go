package render

import (
	"fmt"
	"sort"
	"sync"
)

// Preset is a named, data-only starting point for a Config.
type Preset struct {
	Name           string
	Palette        Palette
	Brightness     float64
	AnimationSpeed float64
	DarkMix        float64
	Shape          Shape
	Curve          SpeedCurve
}

// Config returns a fresh, clamped Config seeded from the preset.
func (p Preset) Config() Config {
	c := Config{
		Palette:        p.Palette,
		Brightness:     p.Brightness,
		AnimationSpeed: p.AnimationSpeed,
		DarkMix:        p.DarkMix,
		Shape:          p.Shape,
		Curve:          p.Curve,
	}
	if len(c.Curve.Bands) == 0 {
		c.Curve = DefaultSpeedCurve()
	}
	c.Clamp()
	return c
}

// Apply writes the preset into an existing Config, keeping nothing.
func (p Preset) Apply(c *Config) { *c = p.Config() }

// Built-in presets. The production page and the older site disagree on speed
// and brightness; both are kept as data.
var builtin = []Preset{
	{
		Name: "site",
		Palette: Palette{
			Dark1:  hex24(0x101921),
			Dark2:  hex24(0x71a3b0),
			Light1: hex24(0xf7fafc),
			Light2: hex24(0xc4dce5),
		},
		Brightness:     0.2,
		AnimationSpeed: 5,
		Shape:          DefaultShape(),
	},
	{
		Name: "legacy",
		Palette: Palette{
			Dark1:  hex24(0x0d151b),
			Dark2:  hex24(0x71a3b0),
			Light1: hex24(0xf7fafc),
			Light2: hex24(0xc4dce5),
		},
		Brightness:     1.8,
		AnimationSpeed: 9,
		Shape:          DefaultShape(),
		Curve: SpeedCurve{Bands: []SpeedBand{
			{UpTo: 3, Coeff: 0.03},
			{UpTo: 7, Coeff: 0.09},
			{UpTo: 10, Coeff: 0.3},
		}},
	},
	{
		Name: "indigo",
		Palette: Palette{
			Dark1:  Color{0.1, 0.1, 0.2},
			Dark2:  Color{0.15, 0.15, 0.25},
			Light1: Color{0.4, 0.4, 0.8},
			Light2: Color{0.5, 0.5, 0.9},
		},
		Brightness:     1.2,
		AnimationSpeed: 4,
		Shape:          DefaultShape(),
	},
	{
		Name: "contrast",
		Palette: Palette{
			Dark1:  hex24(0x101921),
			Dark2:  hex24(0x71a3b0),
			Light1: hex24(0xf7fafc),
			Light2: hex24(0xc4dce5),
		},
		Brightness:     0.2,
		AnimationSpeed: 5,
		DarkMix:        0.15,
		Shape: func() Shape {
			s := DefaultShape()
			s.NoiseEdges = Vec2{0.2, 0.8}
			return s
		}(),
	},
}

// DefaultPreset names the preset used when none is configured.
const DefaultPreset = "site"

// Presets is a name → Preset table safe for concurrent use.
type Presets struct {
	mu sync.RWMutex
	m  map[string]Preset
}

func NewPresets() *Presets { return &Presets{m: map[string]Preset{}} }

// BuiltinPresets returns a table holding the shipped presets.
func BuiltinPresets() *Presets {
	p := NewPresets()
	for _, b := range builtin {
		p.Register(b)
	}
	return p
}

func (p *Presets) Register(pr Preset) {
	if pr.Name == "" {
		return
	}
	p.mu.Lock()
	p.m[pr.Name] = pr
	p.mu.Unlock()
}

func (p *Presets) Get(name string) (Preset, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pr, ok := p.m[name]
	return pr, ok
}

// Lookup is Get with an error for unknown names.
func (p *Presets) Lookup(name string) (Preset, error) {
	pr, ok := p.Get(name)
	if !ok {
		return Preset{}, fmt.Errorf("preset not found: %s", name)
	}
	return pr, nil
}

// List returns the preset names in sorted order.
func (p *Presets) List() []string {
	p.mu.RLock()
	out := make([]string, 0, len(p.m))
	for k := range p.m {
		out = append(out, k)
	}
	p.mu.RUnlock()
	sort.Strings(out)
	return out
}
