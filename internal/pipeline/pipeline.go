// Package pipeline owns the gradient program on a device: compile, link,
// geometry, per-frame uniforms and the draw call.
package pipeline

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/shader"
)

// Surface provides the device and the on-screen geometry of a drawable.
type Surface interface {
	Context() (gpu.Device, error)
	Size() (w, h int)
	PixelRatio() float64
	Present() error
}

type Options struct {
	Now    func() time.Time // clock source; time.Now if nil
	Logger *zerolog.Logger
	// Vertex and Fragment override the embedded shader sources.
	Vertex, Fragment string
}

type Pipeline struct {
	surf Surface
	dev  gpu.Device
	log  zerolog.Logger

	prog    gpu.Handle
	pos, uv gpu.Handle
	loc     map[string]gpu.Location

	clock *Clock
	w, h  int // backing size
	torn  bool

	Frames uint64
	Last   struct {
		RenderMS float64
	}
}

// New initializes the pipeline on surf. On failure every device object
// created so far is released before returning.
func New(surf Surface, opts Options) (p *Pipeline, err error) {
	if surf == nil {
		return nil, ErrMissingContainer
	}
	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}
	dev, err := surf.Context()
	if err != nil {
		return nil, &InitError{Err: err}
	}
	if dev == nil {
		return nil, &InitError{Err: ErrMissingContainer}
	}
	vsrc, fsrc := opts.Vertex, opts.Fragment
	if vsrc == "" {
		vsrc = shader.Vertex
	}
	if fsrc == "" {
		fsrc = shader.Fragment
	}

	var undo []func()
	defer func() {
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
		}
	}()

	vs, err := dev.CompileShader(gpu.Vertex, vsrc)
	if err != nil {
		return nil, &ShaderCompileError{Stage: gpu.Vertex, Log: logOf(err)}
	}
	undo = append(undo, func() { dev.DeleteShader(vs) })

	fs, err := dev.CompileShader(gpu.Fragment, fsrc)
	if err != nil {
		return nil, &ShaderCompileError{Stage: gpu.Fragment, Log: logOf(err)}
	}
	undo = append(undo, func() { dev.DeleteShader(fs) })

	prog, err := dev.LinkProgram(vs, fs)
	if err != nil {
		return nil, &ShaderLinkError{Log: logOf(err)}
	}
	undo = append(undo, func() { dev.DeleteProgram(prog) })
	// Shaders are not needed once linked.
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)
	undo = undo[2:]

	pos, err := dev.CreateBuffer(shader.Quad)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	undo = append(undo, func() { dev.DeleteBuffer(pos) })

	uv, err := dev.CreateBuffer(shader.QuadUV)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	undo = append(undo, func() { dev.DeleteBuffer(uv) })

	if err = dev.BindAttribute(prog, shader.AttrPosition, pos, 2); err != nil {
		return nil, &InitError{Err: err}
	}
	if err = dev.BindAttribute(prog, shader.AttrUV, uv, 2); err != nil {
		return nil, &InitError{Err: err}
	}

	p = &Pipeline{
		surf:  surf,
		dev:   dev,
		log:   lg,
		prog:  prog,
		pos:   pos,
		uv:    uv,
		loc:   make(map[string]gpu.Location, len(shader.Uniforms)),
		clock: NewClock(opts.Now),
	}
	for _, name := range shader.Uniforms {
		l := dev.UniformLocation(prog, name)
		if l == gpu.NoLocation {
			// Compilers drop unused uniforms; uploads to them are skipped.
			lg.Debug().Str("uniform", name).Msg("uniform inactive")
		}
		p.loc[name] = l
	}
	w, h := surf.Size()
	p.Resize(w, h)
	lg.Debug().Int("w", p.w).Int("h", p.h).Msg("pipeline ready")
	return p, nil
}

// Resize sets the backing size to round(w*ratio) × round(h*ratio) and
// updates the viewport. Safe on a nil or torn-down pipeline.
func (p *Pipeline) Resize(w, h int) {
	if p == nil || p.torn {
		return
	}
	ratio := p.surf.PixelRatio()
	if ratio <= 0 {
		ratio = 1
	}
	bw := int(math.Round(float64(w) * ratio))
	bh := int(math.Round(float64(h) * ratio))
	if bw < 0 {
		bw = 0
	}
	if bh < 0 {
		bh = 0
	}
	if bw == p.w && bh == p.h && p.Frames > 0 {
		return
	}
	p.w, p.h = bw, bh
	p.dev.Viewport(0, 0, bw, bh)
}

// BackingSize is the framebuffer size after the pixel ratio.
func (p *Pipeline) BackingSize() (int, int) { return p.w, p.h }

func (p *Pipeline) Clock() *Clock { return p.clock }

// RenderFrame advances the clock, uploads cfg and draws one frame. After
// Teardown it does nothing.
func (p *Pipeline) RenderFrame(cfg *render.Config) error {
	if p == nil || p.torn {
		return nil
	}
	start := time.Now()
	elapsed, phase := p.clock.Advance(cfg.SpeedMultiplier())
	p.upload(cfg, elapsed, phase)

	p.dev.UseProgram(p.prog)
	p.dev.Clear(0, 0, 0, 1)
	if err := p.dev.DrawArrays(gpu.Triangles, 0, shader.QuadVertices); err != nil {
		return err
	}
	if err := p.surf.Present(); err != nil {
		return err
	}
	p.Frames++
	p.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

func (p *Pipeline) upload(cfg *render.Config, elapsed, phase float64) {
	d := p.dev
	d.UseProgram(p.prog)
	f1 := func(name string, x float64) { d.Uniform1f(p.loc[name], float32(x)) }
	v2 := func(name string, v render.Vec2) { d.Uniform2f(p.loc[name], float32(v.X), float32(v.Y)) }
	c3 := func(name string, c render.Color) { d.Uniform3f(p.loc[name], c.R, c.G, c.B) }

	f1(shader.Time, elapsed)
	f1(shader.Phase, phase)
	f1(shader.Speed, cfg.SpeedMultiplier())

	c3(shader.Dark1, cfg.Palette.Dark1)
	c3(shader.Dark2, cfg.Palette.Dark2)
	c3(shader.Light1, cfg.Palette.Light1)
	c3(shader.Light2, cfg.Palette.Light2)
	f1(shader.Brightness, cfg.Brightness)
	f1(shader.DarkMix, cfg.DarkMix)
	f1(shader.Veil, cfg.Veil)

	s := cfg.Shape
	f1(shader.NoiseScale, s.NoiseScale)
	v2(shader.Drift, s.Drift)
	f1(shader.TimeScale, s.TimeScale)
	v2(shader.NoiseEdges, s.NoiseEdges)
	v2(shader.Anchor, s.Anchor)
	v2(shader.DistEdges, s.DistEdges)
	v2(shader.BlendEdges, s.BlendEdges)
}

// Teardown releases the program and buffers. Idempotent.
func (p *Pipeline) Teardown() {
	if p == nil || p.torn {
		return
	}
	p.torn = true
	p.dev.DeleteBuffer(p.uv)
	p.dev.DeleteBuffer(p.pos)
	p.dev.DeleteProgram(p.prog)
	p.log.Debug().Uint64("frames", p.Frames).Msg("pipeline torn down")
}

func (p *Pipeline) TornDown() bool { return p == nil || p.torn }
