//go:build !gl

package glcore

import "github.com/coreman2200/funtimes-gradient/internal/gpu"

type Device struct{ gpu.Device }

func New() (*Device, error) { return nil, ErrUnsupported }

func (d *Device) Release() {}

func Version() string { return "" }
