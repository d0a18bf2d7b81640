//go:build gl

package glcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
)

var _ gpu.Device = (*Device)(nil)

type Device struct {
	vao     uint32
	buffers map[gpu.Handle]struct{}
}

// New loads GL function pointers for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	d := &Device{buffers: map[gpu.Handle]struct{}{}}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Disable(gl.DEPTH_TEST)
	return d, nil
}

// Release deletes the vertex array. Programs and buffers are released by
// their owners.
func (d *Device) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func Version() string { return gl.GoStr(gl.GetString(gl.VERSION)) }

func (d *Device) CompileShader(stage gpu.Stage, src string) (gpu.Handle, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.Fragment {
		kind = gl.FRAGMENT_SHADER
	}
	sh := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(sh, n, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, &gpu.LogError{Log: strings.TrimRight(log, "\x00")}
	}
	return gpu.Handle(sh), nil
}

func (d *Device) DeleteShader(h gpu.Handle) { gl.DeleteShader(uint32(h)) }

func (d *Device) LinkProgram(vs, fs gpu.Handle) (gpu.Handle, error) {
	p := gl.CreateProgram()
	gl.AttachShader(p, uint32(vs))
	gl.AttachShader(p, uint32(fs))
	gl.LinkProgram(p)

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(p, n, nil, gl.Str(log))
		gl.DeleteProgram(p)
		return 0, &gpu.LogError{Log: strings.TrimRight(log, "\x00")}
	}
	gl.DetachShader(p, uint32(vs))
	gl.DetachShader(p, uint32(fs))
	return gpu.Handle(p), nil
}

func (d *Device) UseProgram(p gpu.Handle)    { gl.UseProgram(uint32(p)) }
func (d *Device) DeleteProgram(p gpu.Handle) { gl.DeleteProgram(uint32(p)) }

func (d *Device) CreateBuffer(data []float32) (gpu.Handle, error) {
	if len(data) == 0 {
		return 0, errors.New("glcore: empty buffer")
	}
	var b uint32
	gl.GenBuffers(1, &b)
	gl.BindBuffer(gl.ARRAY_BUFFER, b)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	d.buffers[gpu.Handle(b)] = struct{}{}
	return gpu.Handle(b), nil
}

func (d *Device) DeleteBuffer(b gpu.Handle) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
	delete(d.buffers, b)
}

func (d *Device) BindAttribute(p gpu.Handle, name string, b gpu.Handle, size int) error {
	loc := gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
	if loc < 0 {
		return fmt.Errorf("glcore: attribute %q not active", name)
	}
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.VertexAttribPointer(uint32(loc), int32(size), gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(loc))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (d *Device) UniformLocation(p gpu.Handle, name string) gpu.Location {
	return gpu.Location(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (d *Device) Uniform1f(l gpu.Location, x float32)       { gl.Uniform1f(int32(l), x) }
func (d *Device) Uniform2f(l gpu.Location, x, y float32)    { gl.Uniform2f(int32(l), x, y) }
func (d *Device) Uniform3f(l gpu.Location, x, y, z float32) { gl.Uniform3f(int32(l), x, y, z) }

func (d *Device) Viewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int) error {
	m := uint32(gl.TRIANGLES)
	if mode == gpu.TriangleStrip {
		m = gl.TRIANGLE_STRIP
	}
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(m, int32(first), int32(count))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("glcore: draw: error 0x%x", e)
	}
	return nil
}
