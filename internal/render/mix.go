package render

// MixFrames blends frames a and b into dst by alpha (0 keeps a, 1 keeps b).
// dst may alias either input.
func MixFrames(dst, a, b []Color, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af, bf := float32(1-alpha), float32(alpha)
	for i := range dst {
		dst[i] = Color{
			R: a[i].R*af + b[i].R*bf,
			G: a[i].G*af + b[i].G*bf,
			B: a[i].B*af + b[i].B*bf,
		}
	}
}
