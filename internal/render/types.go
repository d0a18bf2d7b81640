package render

type Vec2 struct{ X, Y float64 }
type Vec3 struct{ X, Y, Z float64 }

// Color is normalized linear RGB.
type Color struct{ R, G, B float32 }

func (c Color) Clamp() Color {
	return Color{R: clamp01f(c.R), G: clamp01f(c.G), B: clamp01f(c.B)}
}

// Palette holds the four gradient stops. dark1→dark2 and light1→light2 are
// blended by the noise gradient, then dark/light by brightness.
type Palette struct {
	Dark1  Color
	Dark2  Color
	Light1 Color
	Light2 Color
}

func (p Palette) Clamp() Palette {
	return Palette{
		Dark1:  p.Dark1.Clamp(),
		Dark2:  p.Dark2.Clamp(),
		Light1: p.Light1.Clamp(),
		Light2: p.Light2.Clamp(),
	}
}

// Shape carries the tunable compositor constants.
type Shape struct {
	NoiseScale float64 // uv multiplier before sampling
	Drift      Vec2    // xy offset per unit of phase
	TimeScale  float64 // z coordinate per unit of phase
	NoiseEdges Vec2    // smoothstep edges applied to the raw noise
	Anchor     Vec2    // centre of the radial distance field
	DistEdges  Vec2    // smoothstep edges applied to the distance
	BlendEdges Vec2    // smoothstep edges mapping brightness to the dark/light blend
}

// DefaultShape reproduces the production fragment shader.
func DefaultShape() Shape {
	return Shape{
		NoiseScale: 0.5,
		Drift:      Vec2{1, 1},
		TimeScale:  1.2,
		NoiseEdges: Vec2{0, 1},
		Anchor:     Vec2{0, 0.7},
		DistEdges:  Vec2{0.01, 0.9},
		BlendEdges: Vec2{0.4, 0.6},
	}
}

const (
	MaxBrightness     = 2.0
	MaxAnimationSpeed = 10.0
)

// Config is the mutable per-instance render state. It is written by the
// theme controller and configuration input and read once per frame.
type Config struct {
	Palette        Palette
	Brightness     float64 // 0..2
	AnimationSpeed float64 // UI scale 0..10, see SpeedCurve
	DarkMix        float64 // 0..1, 0 leaves the brightness blend untouched
	Veil           float64 // 0..1 fade toward black, 1 hides the gradient
	Shape          Shape
	Curve          SpeedCurve
}

// Clamp forces every field into its documented range.
func (c *Config) Clamp() {
	c.Palette = c.Palette.Clamp()
	c.Brightness = clamp(c.Brightness, 0, MaxBrightness)
	c.AnimationSpeed = clamp(c.AnimationSpeed, 0, MaxAnimationSpeed)
	c.DarkMix = clamp(c.DarkMix, 0, 1)
	c.Veil = clamp(c.Veil, 0, 1)
}

// SpeedMultiplier maps AnimationSpeed through the configured curve.
func (c *Config) SpeedMultiplier() float64 {
	curve := c.Curve
	if len(curve.Bands) == 0 {
		curve = DefaultSpeedCurve()
	}
	return curve.Map(c.AnimationSpeed)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp01f(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
