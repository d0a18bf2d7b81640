// Package glcore implements gpu.Device on an OpenGL 4.1 core context. The
// caller owns the context and must keep it current on the calling thread.
package glcore

import "errors"

// ErrUnsupported is returned when the binary was built without the gl tag.
var ErrUnsupported = errors.New("glcore: built without OpenGL support (use -tags gl)")
