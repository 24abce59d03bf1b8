// Package cpu implements a pure-Go CPU backend for tensor operations.
//
// Kernels are written as straightforward loops over typed slices and use
// the parallel package to split large element ranges across goroutines.
package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// CPUBackend is a pure-Go implementation of tensor.Backend.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return &CPUBackend{parallel: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with a custom parallel configuration.
// Useful for forcing serial execution in tests or capping worker count.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend identifier.
func (c *CPUBackend) Name() string {
	return "cpu"
}

// Device returns the device this backend computes on.
func (c *CPUBackend) Device() tensor.Device {
	return tensor.CPU
}

// Add performs element-wise addition with broadcasting.
func (c *CPUBackend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out, err := c.binary("add", x, y)
	if err != nil {
		panic(fmt.Sprintf("add: %v", err))
	}
	return out
}

// Sub performs element-wise subtraction with broadcasting.
func (c *CPUBackend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out, err := c.binary("sub", x, y)
	if err != nil {
		panic(fmt.Sprintf("sub: %v", err))
	}
	return out
}

// Mul performs element-wise multiplication with broadcasting.
func (c *CPUBackend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out, err := c.binary("mul", x, y)
	if err != nil {
		panic(fmt.Sprintf("mul: %v", err))
	}
	return out
}

// Div performs element-wise division with broadcasting.
func (c *CPUBackend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out, err := c.binary("div", x, y)
	if err != nil {
		panic(fmt.Sprintf("div: %v", err))
	}
	return out
}

// binary validates operands, resolves the broadcast shape, and dispatches
// to the typed kernel for the fast (same-shape) or broadcast path.
func (c *CPUBackend) binary(op string, x, y *tensor.RawTensor) (*tensor.RawTensor, error) {
	if x.DType() != y.DType() {
		return nil, fmt.Errorf("dtype mismatch: %s vs %s", x.DType(), y.DType())
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, err
	}

	out, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		return nil, err
	}

	switch x.DType() {
	case tensor.Float32:
		if needsBroadcast {
			binaryBroadcastFloat32(c.parallel, op, x, y, out)
		} else {
			binaryFloat32(c.parallel, op, x.AsFloat32(), y.AsFloat32(), out.AsFloat32())
		}
	case tensor.Float64:
		if needsBroadcast {
			binaryBroadcastFloat64(c.parallel, op, x, y, out)
		} else {
			binaryFloat64(c.parallel, op, x.AsFloat64(), y.AsFloat64(), out.AsFloat64())
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %s", x.DType())
	}
	return out, nil
}

// Reshape returns a view of the tensor under a new shape.
// CPU tensors are always contiguous, so this never copies.
func (c *CPUBackend) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := t.WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}
