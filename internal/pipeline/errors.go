package pipeline

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-gradient/internal/gpu"
)

var (
	// ErrMissingContainer means there is no surface to render into.
	ErrMissingContainer = errors.New("pipeline: no rendering surface")
	ErrTornDown         = errors.New("pipeline: torn down")
)

// InitError means the surface could not provide a device.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "pipeline: no graphics context: " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }

type ShaderCompileError struct {
	Stage gpu.Stage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("pipeline: compile %s shader: %s", e.Stage, e.Log)
}

type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string { return "pipeline: link program: " + e.Log }

// logOf pulls the compiler/linker text out of a backend error.
func logOf(err error) string {
	var le *gpu.LogError
	if errors.As(err, &le) {
		return le.Log
	}
	return err.Error()
}
