// Package window opens a desktop window with an OpenGL 4.1 core context and
// presents the gradient through glcore. It needs the gl build tag; without
// it Open returns glcore.ErrUnsupported.
package window

type Options struct {
	W, H  int
	Title string
	VSync bool
}

func (o Options) withDefaults() Options {
	if o.W <= 0 {
		o.W = 960
	}
	if o.H <= 0 {
		o.H = 540
	}
	if o.Title == "" {
		o.Title = "gradient"
	}
	return o
}
