package noise

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Field is a continuous scalar field over 3D space with values in about [-1,1].
type Field interface {
	Eval3(x, y, z float64) float64
}

// Simplex is the default Field; it has no state.
type Simplex struct{}

func (Simplex) Eval3(x, y, z float64) float64 { return Simplex3(x, y, z) }

// OpenSimplex adapts a seeded OpenSimplex generator. It is only used by the
// software device; the GPU program always evaluates Simplex3.
type OpenSimplex struct {
	n opensimplex.Noise
}

func NewOpenSimplex(seed int64) *OpenSimplex {
	return &OpenSimplex{n: opensimplex.New(seed)}
}

func (o *OpenSimplex) Eval3(x, y, z float64) float64 { return o.n.Eval3(x, y, z) }

// ByName resolves "simplex" (or "") and "opensimplex".
func ByName(name string, seed int64) (Field, error) {
	switch name {
	case "", "simplex":
		return Simplex{}, nil
	case "opensimplex":
		return NewOpenSimplex(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise field: %s", name)
	}
}
