// Package gpu is the narrow slice of a GL-style API the render pipeline
// needs. Backends: soft (CPU reference) and glcore (OpenGL 4.1).
package gpu

import "fmt"

// Handle names a device object (shader, program, buffer). Zero is never valid.
type Handle uint32

// Location names a uniform or attribute slot. -1 means not found.
type Location int32

const NoLocation Location = -1

type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
)

// Device is the contract every backend implements. Calls are made from a
// single goroutine; backends that need a bound context rely on that.
type Device interface {
	// CompileShader returns the compiler log as the error text on failure.
	CompileShader(stage Stage, src string) (Handle, error)
	DeleteShader(h Handle)
	// LinkProgram returns the linker log as the error text on failure.
	LinkProgram(vs, fs Handle) (Handle, error)
	UseProgram(p Handle)
	DeleteProgram(p Handle)

	// CreateBuffer uploads static vertex data.
	CreateBuffer(data []float32) (Handle, error)
	DeleteBuffer(b Handle)
	// BindAttribute points the named attribute of p at b, size floats per vertex.
	BindAttribute(p Handle, name string, b Handle, size int) error

	UniformLocation(p Handle, name string) Location
	Uniform1f(l Location, x float32)
	Uniform2f(l Location, x, y float32)
	Uniform3f(l Location, x, y, z float32)

	Viewport(x, y, w, h int)
	Clear(r, g, b, a float32)
	DrawArrays(mode Primitive, first, count int) error
}

// LogError carries a compiler or linker log from a backend.
type LogError struct {
	Log string
}

func (e *LogError) Error() string { return e.Log }
