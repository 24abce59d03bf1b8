package nn

import (
	"fmt"
	"math/rand"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Capability interfaces for fused activation kernels. A backend that
// implements one of these gets its native kernel; missing capabilities
// panic at first use, since no composition of core ops reproduces them.

// GELUBackend is implemented by backends with a fused GELU kernel.
type GELUBackend interface {
	GELU(*tensor.RawTensor) *tensor.RawTensor
}

// SiLUBackend is implemented by backends with a fused SiLU kernel.
type SiLUBackend interface {
	SiLU(*tensor.RawTensor) *tensor.RawTensor
}

// LeakyReLUBackend is implemented by backends with a slope-parameterized
// leaky ReLU kernel.
type LeakyReLUBackend interface {
	LeakyReLU(t *tensor.RawTensor, slope float64) *tensor.RawTensor
}

// GELU applies the Gaussian Error Linear Unit.
func GELU[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	b, ok := any(x.Backend()).(GELUBackend)
	if !ok {
		panic(fmt.Sprintf("gelu: backend %s has no GELU kernel", x.Backend().Name()))
	}
	return tensor.FromRaw[float32](x.Backend(), b.GELU(x.Raw()))
}

// SiLU applies x * sigmoid(x).
func SiLU[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	b, ok := any(x.Backend()).(SiLUBackend)
	if !ok {
		panic(fmt.Sprintf("silu: backend %s has no SiLU kernel", x.Backend().Name()))
	}
	return tensor.FromRaw[float32](x.Backend(), b.SiLU(x.Raw()))
}

// LeakyReLU applies max(x, slope*x).
func LeakyReLU[B tensor.Backend](x *tensor.Tensor[float32, B], slope float64) *tensor.Tensor[float32, B] {
	b, ok := any(x.Backend()).(LeakyReLUBackend)
	if !ok {
		panic(fmt.Sprintf("leaky_relu: backend %s has no LeakyReLU kernel", x.Backend().Name()))
	}
	return tensor.FromRaw[float32](x.Backend(), b.LeakyReLU(x.Raw(), slope))
}

// Dropout zeroes elements with probability P during training and rescales
// the survivors by 1/(1-P). Outside training, or at P == 0, it is the
// identity. Layers are constructed in inference mode.
type Dropout[B tensor.Backend] struct {
	P        float32
	Training bool
}

// NewDropout creates an inference-mode dropout layer.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability %v outside [0, 1)", p))
	}
	return &Dropout[B]{P: p}
}

// Forward applies dropout.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.Training || d.P == 0 {
		return x
	}

	mask, err := tensor.New[float32](x.Backend(), x.Shape())
	if err != nil {
		panic(fmt.Sprintf("dropout: %v", err))
	}
	scale := 1 / (1 - d.P)
	data := mask.Data()
	for i := range data {
		//nolint:gosec // G404: dropout masks are not security sensitive.
		if rand.Float32() >= d.P {
			data[i] = scale
		}
	}
	return x.Mul(mask)
}
