package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplex3Deterministic(t *testing.T) {
	pts := [][3]float64{{0, 0, 0}, {0.25, 0.7, 1.2}, {-3.5, 12.25, 0.001}, {100.5, -40.1, 7}}
	for _, p := range pts {
		a := Simplex3(p[0], p[1], p[2])
		for i := 0; i < 5; i++ {
			assert.Equal(t, a, Simplex3(p[0], p[1], p[2]))
		}
	}
}

func TestSimplex3Range(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var lo, hi float64
	for i := 0; i < 100000; i++ {
		x := (r.Float64() - 0.5) * 200
		y := (r.Float64() - 0.5) * 200
		z := (r.Float64() - 0.5) * 200
		v := Simplex3(x, y, z)
		require.False(t, math.IsNaN(v), "NaN at (%v,%v,%v)", x, y, z)
		require.LessOrEqual(t, v, 1.05, "overshoot at (%v,%v,%v)", x, y, z)
		require.GreaterOrEqual(t, v, -1.05, "undershoot at (%v,%v,%v)", x, y, z)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	// the field should actually use its range, not hover around zero
	assert.Less(t, lo, -0.5)
	assert.Greater(t, hi, 0.5)
}

func TestSimplex3Continuous(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const eps = 1e-5
	for i := 0; i < 2000; i++ {
		x, y, z := r.Float64()*20, r.Float64()*20, r.Float64()*20
		a := Simplex3(x, y, z)
		b := Simplex3(x+eps, y+eps, z+eps)
		assert.InDelta(t, a, b, 1e-2, "jump near (%v,%v,%v)", x, y, z)
	}
}

func TestByName(t *testing.T) {
	f, err := ByName("", 0)
	require.NoError(t, err)
	assert.IsType(t, Simplex{}, f)

	f, err = ByName("opensimplex", 3)
	require.NoError(t, err)
	v := f.Eval3(0.3, 0.4, 0.5)
	assert.Equal(t, v, f.Eval3(0.3, 0.4, 0.5))
	assert.LessOrEqual(t, math.Abs(v), 1.0)

	_, err = ByName("perlin", 0)
	assert.Error(t, err)
}
