// Package layout maps image pixels onto the wiring order of an LED matrix.
package layout

import "fmt"

// Serpentine describes how a strip snakes across the matrix.
type Serpentine struct {
	XFlipEveryRow   bool `yaml:"x_flip_every_row" toml:"x_flip_every_row"`
	YFlipEveryPanel bool `yaml:"y_flip_every_panel" toml:"y_flip_every_panel"`
}

// Matrix is Panels tiles of W×H pixels stacked vertically, wired in order.
type Matrix struct {
	W      int        `yaml:"w" toml:"w"`
	H      int        `yaml:"h" toml:"h"`
	Panels int        `yaml:"panels" toml:"panels"`
	Order  Serpentine `yaml:"order" toml:"order"`
}

func (m Matrix) panels() int {
	if m.Panels < 1 {
		return 1
	}
	return m.Panels
}

// Bounds is the image size covering every panel.
func (m Matrix) Bounds() (int, int) { return m.W, m.H * m.panels() }

func (m Matrix) Count() int { return m.W * m.H * m.panels() }

func (m Matrix) Validate() error {
	if m.W <= 0 || m.H <= 0 {
		return fmt.Errorf("layout: matrix %dx%d is empty", m.W, m.H)
	}
	return nil
}

// Index maps image x,y (y counts across panels) to the linear LED index.
func (m Matrix) Index(x, y int) int {
	z := y / m.H
	yy := y % m.H
	if m.Order.YFlipEveryPanel && z%2 == 1 {
		yy = m.H - 1 - yy
	}
	xx := x
	if m.Order.XFlipEveryRow && yy%2 == 1 {
		xx = m.W - 1 - x
	}
	return z*m.W*m.H + yy*m.W + xx
}

// Table precomputes Index for every pixel in row-major image order.
func (m Matrix) Table() []int {
	w, h := m.Bounds()
	out := make([]int, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, m.Index(x, y))
		}
	}
	return out
}
