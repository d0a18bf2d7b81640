// Package shader holds the GLSL program for the gradient and the names of
// its inputs. Every device backend binds against these names.
package shader

import _ "embed"

//go:embed gradient.vert
var Vertex string

//go:embed gradient.frag
var Fragment string

// Vertex attributes.
const (
	AttrPosition = "position"
	AttrUV       = "uv"
)

// Uniforms.
const (
	Time       = "u_time"
	Phase      = "u_phase"
	Speed      = "u_speed"
	Dark1      = "u_color_dark1"
	Dark2      = "u_color_dark2"
	Light1     = "u_color_light1"
	Light2     = "u_color_light2"
	Brightness = "u_brightness"
	DarkMix    = "u_dark_mix"
	Veil       = "u_veil"
	NoiseScale = "u_noise_scale"
	Drift      = "u_drift"
	TimeScale  = "u_time_scale"
	NoiseEdges = "u_noise_edges"
	Anchor     = "u_anchor"
	DistEdges  = "u_dist_edges"
	BlendEdges = "u_blend_edges"
)

// Uniforms lists every uniform the fragment stage declares.
var Uniforms = []string{
	Time, Phase, Speed,
	Dark1, Dark2, Light1, Light2,
	Brightness, DarkMix, Veil,
	NoiseScale, Drift, TimeScale, NoiseEdges, Anchor, DistEdges, BlendEdges,
}

// Quad is a full-surface quad as two triangles: x, y position in clip space.
var Quad = []float32{
	-1, -1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, 1,
}

// QuadUV carries the matching texture coordinates, origin bottom-left.
var QuadUV = []float32{
	0, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 1,
}

// QuadVertices is the vertex count of Quad.
const QuadVertices = 6
