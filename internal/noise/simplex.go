// Package noise provides the deterministic 3D scalar fields that drive the
// gradient pattern.
package noise

import "math"

const (
	skewF   = 1.0 / 3.0
	unskewG = 1.0 / 6.0
)

// mod289 matches GLSL mod(x, 289.0): the result is always in [0,289).
func mod289(x float64) float64 {
	return x - math.Floor(x*(1.0/289.0))*289.0
}

// permute is the permutation polynomial (34x²+x) mod 289.
func permute(x float64) float64 {
	return mod289((x*34.0 + 1.0) * x)
}

func taylorInvSqrt(r float64) float64 {
	return 1.79284291400159 - 0.85373472095314*r
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Simplex3 evaluates 3D simplex noise at (x, y, z). The result lies in
// roughly [-1, 1] and is identical, up to float precision, to the GLSL
// simplex3d used by the fragment shader.
func Simplex3(x, y, z float64) float64 {
	// skew into the simplex lattice
	s := (x + y + z) * skewF
	ix := math.Floor(x + s)
	iy := math.Floor(y + s)
	iz := math.Floor(z + s)
	t := (ix + iy + iz) * unskewG
	x0 := [3]float64{x - ix + t, y - iy + t, z - iz + t}

	// which simplex of the cube are we in
	gx := step(x0[1], x0[0])
	gy := step(x0[2], x0[1])
	gz := step(x0[0], x0[2])
	lx, ly, lz := 1-gx, 1-gy, 1-gz
	i1 := [3]float64{math.Min(gx, lz), math.Min(gy, lx), math.Min(gz, ly)}
	i2 := [3]float64{math.Max(gx, lz), math.Max(gy, lx), math.Max(gz, ly)}

	offsets := [4][3]float64{{0, 0, 0}, i1, i2, {1, 1, 1}}
	corners := [4][3]float64{
		x0,
		{x0[0] - i1[0] + unskewG, x0[1] - i1[1] + unskewG, x0[2] - i1[2] + unskewG},
		{x0[0] - i2[0] + 2*unskewG, x0[1] - i2[1] + 2*unskewG, x0[2] - i2[2] + 2*unskewG},
		{x0[0] - 0.5, x0[1] - 0.5, x0[2] - 0.5},
	}

	ix, iy, iz = mod289(ix), mod289(iy), mod289(iz)

	var sum float64
	for k := 0; k < 4; k++ {
		c := corners[k]
		m := 0.6 - (c[0]*c[0] + c[1]*c[1] + c[2]*c[2])
		if m <= 0 {
			continue
		}
		o := offsets[k]
		p := permute(permute(permute(iz+o[2])+iy+o[1]) + ix + o[0])
		gx, gy, gz := gradient(p)
		m *= m
		sum += m * m * (gx*c[0] + gy*c[1] + gz*c[2])
	}
	return 42.0 * sum
}

// gradient maps a permutation value onto a normalized direction on the
// octahedron, 7x7 points per face.
func gradient(p float64) (float64, float64, float64) {
	const (
		n  = 1.0 / 7.0
		nx = 2.0 * n
		ny = 0.5*n - 1.0
	)
	j := p - 49.0*math.Floor(p*n*n)
	xf := math.Floor(j * n)
	yf := math.Floor(j - 7.0*xf)
	x := xf*nx + ny
	y := yf*nx + ny
	h := 1.0 - math.Abs(x) - math.Abs(y)

	sh := -step(h, 0)
	gx := x + (math.Floor(x)*2.0+1.0)*sh
	gy := y + (math.Floor(y)*2.0+1.0)*sh

	norm := taylorInvSqrt(gx*gx + gy*gy + h*h)
	return gx * norm, gy * norm, h * norm
}
