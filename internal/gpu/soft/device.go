// Package soft is a CPU implementation of gpu.Device. It understands exactly
// one program shape: the gradient shader, whose fragment stage it evaluates
// with render.Shade. Output lands in an RGBA framebuffer sized by Viewport.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/noise"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/shader"
)

var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)

type Options struct {
	Field   noise.Field // nil: simplex
	Workers int         // row bands per frame; 0: GOMAXPROCS
}

type shaderObj struct {
	stage gpu.Stage
	src   string
}

type program struct {
	uniforms map[string]gpu.Location
	attrs    map[string]attrib
}

type attrib struct {
	buf  gpu.Handle
	size int
}

// Device is not safe for concurrent use; DrawArrays fans out internally.
type Device struct {
	opts Options

	next     gpu.Handle
	shaders  map[gpu.Handle]shaderObj
	programs map[gpu.Handle]*program
	buffers  map[gpu.Handle][]float32
	values   map[gpu.Location][3]float32
	nextLoc  gpu.Location
	current  gpu.Handle

	vx, vy, vw, vh int
	fb             *image.RGBA

	Draws int
}

func New(opts Options) *Device {
	if opts.Field == nil {
		opts.Field = noise.Simplex{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Device{
		opts:     opts,
		shaders:  map[gpu.Handle]shaderObj{},
		programs: map[gpu.Handle]*program{},
		buffers:  map[gpu.Handle][]float32{},
		values:   map[gpu.Location][3]float32{},
		fb:       image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}
}

func (d *Device) handle() gpu.Handle {
	d.next++
	return d.next
}

// Live reports how many shaders, programs and buffers are still allocated.
func (d *Device) Live() int { return len(d.shaders) + len(d.programs) + len(d.buffers) }

func (d *Device) CompileShader(stage gpu.Stage, src string) (gpu.Handle, error) {
	if !strings.Contains(src, "void main") {
		return 0, &gpu.LogError{Log: fmt.Sprintf("%s: no entry point 'void main'", stage)}
	}
	if strings.Count(src, "{") != strings.Count(src, "}") {
		return 0, &gpu.LogError{Log: fmt.Sprintf("%s: unbalanced braces", stage)}
	}
	h := d.handle()
	d.shaders[h] = shaderObj{stage: stage, src: src}
	return h, nil
}

func (d *Device) DeleteShader(h gpu.Handle) { delete(d.shaders, h) }

func (d *Device) LinkProgram(vs, fs gpu.Handle) (gpu.Handle, error) {
	v, ok := d.shaders[vs]
	if !ok || v.stage != gpu.Vertex {
		return 0, &gpu.LogError{Log: "link: missing vertex stage"}
	}
	f, ok := d.shaders[fs]
	if !ok || f.stage != gpu.Fragment {
		return 0, &gpu.LogError{Log: "link: missing fragment stage"}
	}
	p := &program{uniforms: map[string]gpu.Location{}, attrs: map[string]attrib{}}
	for _, m := range uniformDecl.FindAllStringSubmatch(v.src+"\n"+f.src, -1) {
		if _, dup := p.uniforms[m[1]]; dup {
			continue
		}
		p.uniforms[m[1]] = d.nextLoc
		d.nextLoc++
	}
	h := d.handle()
	d.programs[h] = p
	return h, nil
}

func (d *Device) UseProgram(p gpu.Handle) { d.current = p }

func (d *Device) DeleteProgram(p gpu.Handle) {
	if prog, ok := d.programs[p]; ok {
		for _, l := range prog.uniforms {
			delete(d.values, l)
		}
	}
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) CreateBuffer(data []float32) (gpu.Handle, error) {
	if len(data) == 0 {
		return 0, errors.New("soft: empty buffer")
	}
	h := d.handle()
	d.buffers[h] = append([]float32(nil), data...)
	return h, nil
}

func (d *Device) DeleteBuffer(b gpu.Handle) { delete(d.buffers, b) }

func (d *Device) BindAttribute(p gpu.Handle, name string, b gpu.Handle, size int) error {
	prog, ok := d.programs[p]
	if !ok {
		return fmt.Errorf("soft: bind %q: unknown program %d", name, p)
	}
	if _, ok := d.buffers[b]; !ok {
		return fmt.Errorf("soft: bind %q: unknown buffer %d", name, b)
	}
	if size != 2 {
		return fmt.Errorf("soft: bind %q: size %d unsupported", name, size)
	}
	prog.attrs[name] = attrib{buf: b, size: size}
	return nil
}

func (d *Device) UniformLocation(p gpu.Handle, name string) gpu.Location {
	prog, ok := d.programs[p]
	if !ok {
		return gpu.NoLocation
	}
	if l, ok := prog.uniforms[name]; ok {
		return l
	}
	return gpu.NoLocation
}

func (d *Device) set(l gpu.Location, v [3]float32) {
	if l == gpu.NoLocation {
		return
	}
	d.values[l] = v
}

func (d *Device) Uniform1f(l gpu.Location, x float32)       { d.set(l, [3]float32{x}) }
func (d *Device) Uniform2f(l gpu.Location, x, y float32)    { d.set(l, [3]float32{x, y}) }
func (d *Device) Uniform3f(l gpu.Location, x, y, z float32) { d.set(l, [3]float32{x, y, z}) }

// Viewport also sizes the framebuffer to cover the viewport.
func (d *Device) Viewport(x, y, w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	d.vx, d.vy, d.vw, d.vh = x, y, w, h
	b := d.fb.Bounds()
	if b.Dx() != x+w || b.Dy() != y+h {
		d.fb = image.NewRGBA(image.Rect(0, 0, x+w, y+h))
	}
}

func (d *Device) Clear(r, g, b, a float32) {
	c := color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)}
	pix := d.fb.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Frame returns the framebuffer. Row 0 is the top of the image.
func (d *Device) Frame() *image.RGBA { return d.fb }

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int) error {
	prog, ok := d.programs[d.current]
	if !ok {
		return errors.New("soft: draw without program")
	}
	pos, ok := prog.attrs[shader.AttrPosition]
	if !ok {
		return errors.New("soft: draw without position attribute")
	}
	tris, err := d.assemble(mode, first, count, prog, pos)
	if err != nil {
		return err
	}
	d.Draws++
	if d.vw == 0 || d.vh == 0 || len(tris) == 0 {
		return nil
	}

	params := d.params(prog)
	phase := float64(d.uniform(prog, shader.Phase)[0])

	bands := d.opts.Workers
	if bands > d.vh {
		bands = d.vh
	}
	var g errgroup.Group
	for i := 0; i < bands; i++ {
		y0 := d.vh * i / bands
		y1 := d.vh * (i + 1) / bands
		g.Go(func() error {
			d.rasterize(tris, y0, y1, phase, params)
			return nil
		})
	}
	return g.Wait()
}

// vertex is clip-space position plus interpolated uv.
type vertex struct{ x, y, u, v float64 }

type triangle [3]vertex

func (d *Device) assemble(mode gpu.Primitive, first, count int, prog *program, pos attrib) ([]triangle, error) {
	pdata := d.buffers[pos.buf]
	var uvdata []float32
	if a, ok := prog.attrs[shader.AttrUV]; ok {
		uvdata = d.buffers[a.buf]
	}
	if first < 0 || count < 0 || (first+count)*2 > len(pdata) {
		return nil, fmt.Errorf("soft: draw range [%d,%d) exceeds buffer", first, first+count)
	}
	at := func(i int) vertex {
		k := (first + i) * 2
		v := vertex{x: float64(pdata[k]), y: float64(pdata[k+1])}
		if k+1 < len(uvdata) {
			v.u, v.v = float64(uvdata[k]), float64(uvdata[k+1])
		} else {
			v.u, v.v = (v.x+1)/2, (v.y+1)/2
		}
		return v
	}
	var out []triangle
	switch mode {
	case gpu.Triangles:
		for i := 0; i+2 < count; i += 3 {
			out = append(out, triangle{at(i), at(i + 1), at(i + 2)})
		}
	case gpu.TriangleStrip:
		for i := 0; i+2 < count; i++ {
			out = append(out, triangle{at(i), at(i + 1), at(i + 2)})
		}
	default:
		return nil, fmt.Errorf("soft: primitive %d unsupported", mode)
	}
	return out, nil
}

func (d *Device) uniform(prog *program, name string) [3]float32 {
	l, ok := prog.uniforms[name]
	if !ok {
		return [3]float32{}
	}
	return d.values[l]
}

func (d *Device) params(prog *program) render.Params {
	col := func(name string) render.Color {
		v := d.uniform(prog, name)
		return render.Color{R: v[0], G: v[1], B: v[2]}
	}
	v2 := func(name string) render.Vec2 {
		v := d.uniform(prog, name)
		return render.Vec2{X: float64(v[0]), Y: float64(v[1])}
	}
	f := func(name string) float64 { return float64(d.uniform(prog, name)[0]) }
	return render.Params{
		Palette: render.Palette{
			Dark1:  col(shader.Dark1),
			Dark2:  col(shader.Dark2),
			Light1: col(shader.Light1),
			Light2: col(shader.Light2),
		},
		Brightness: f(shader.Brightness),
		DarkMix:    f(shader.DarkMix),
		Veil:       f(shader.Veil),
		Shape: render.Shape{
			NoiseScale: f(shader.NoiseScale),
			Drift:      v2(shader.Drift),
			TimeScale:  f(shader.TimeScale),
			NoiseEdges: v2(shader.NoiseEdges),
			Anchor:     v2(shader.Anchor),
			DistEdges:  v2(shader.DistEdges),
			BlendEdges: v2(shader.BlendEdges),
		},
		Field: d.opts.Field,
	}
}

// rasterize shades viewport rows [y0,y1), counted from the bottom.
func (d *Device) rasterize(tris []triangle, y0, y1 int, phase float64, p render.Params) {
	fbH := d.fb.Bounds().Dy()
	for py := y0; py < y1; py++ {
		cy := (float64(py)+0.5)/float64(d.vh)*2 - 1
		row := fbH - 1 - (d.vy + py)
		for px := 0; px < d.vw; px++ {
			cx := (float64(px)+0.5)/float64(d.vw)*2 - 1
			for _, t := range tris {
				u, v, ok := t.cover(cx, cy)
				if !ok {
					continue
				}
				c := render.Shade(render.Vec2{X: u, Y: v}, phase, p)
				off := d.fb.PixOffset(d.vx+px, row)
				d.fb.Pix[off] = to8(c.R)
				d.fb.Pix[off+1] = to8(c.G)
				d.fb.Pix[off+2] = to8(c.B)
				d.fb.Pix[off+3] = 0xff
				break
			}
		}
	}
}

// coverEps admits points on a shared edge whose weights round slightly
// below zero, so adjacent triangles leave no gap between them.
const coverEps = 1e-9

// cover reports whether (x,y) is inside t and returns the interpolated uv.
func (t triangle) cover(x, y float64) (u, v float64, ok bool) {
	a, b, c := t[0], t[1], t[2]
	area := (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
	if area == 0 {
		return 0, 0, false
	}
	w0 := ((b.x-x)*(c.y-y) - (c.x-x)*(b.y-y)) / area
	w1 := ((c.x-x)*(a.y-y) - (a.x-x)*(c.y-y)) / area
	w2 := 1 - w0 - w1
	if w0 < -coverEps || w1 < -coverEps || w2 < -coverEps {
		return 0, 0, false
	}
	return w0*a.u + w1*b.u + w2*c.u, w0*a.v + w1*b.v + w2*c.v, true
}

func to8(x float32) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 0xff
	}
	return uint8(x*255 + 0.5)
}
