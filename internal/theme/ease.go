package theme

import (
	"fmt"
	"math"
	"sort"
)

// Ease maps linear progress t ∈ [0,1] to eased progress. Implementations
// must return 0 at 0 and 1 at 1.
type Ease func(t float64) float64

func Linear(t float64) float64 { return clamp01(t) }

// Smooth is the classic smoothstep 3t² - 2t³.
func Smooth(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}

// Smoother is 6t⁵ - 15t⁴ + 10t³.
func Smoother(t float64) float64 {
	t = clamp01(t)
	return t * t * t * (t*(t*6-15) + 10)
}

// QuadInOut accelerates through the first half and decelerates through the
// second. This is the default theme ease.
func QuadInOut(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func CubicInOut(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

var eases = map[string]Ease{
	"linear":       Linear,
	"smooth":       Smooth,
	"smoother":     Smoother,
	"quintic":      Smoother,
	"cubic":        CubicInOut,
	"quad":         QuadInOut,
	"power2.inOut": QuadInOut,
	"cubicInOut":   CubicInOut,
	"power3.inOut": CubicInOut,
}

// EaseByName resolves an ease. The empty name is QuadInOut.
func EaseByName(name string) (Ease, error) {
	if name == "" {
		return QuadInOut, nil
	}
	if e, ok := eases[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown ease %q", name)
}

// EaseNames lists the accepted ease names.
func EaseNames() []string {
	out := make([]string, 0, len(eases))
	for k := range eases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
