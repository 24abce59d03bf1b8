package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

func testConvFlow(backend Backend) *ConvFlow[Backend] {
	return NewConvFlow(backend, ConvFlowConfig{
		InChannels:     4,
		FilterChannels: 8,
		KernelSize:     3,
		Layers:         2,
		NumBins:        4,
	})
}

// randomizeHead gives the zero-initialized projection nontrivial weights
// so tests exercise a non-identity spline.
func randomizeHead(f *ConvFlow[Backend]) {
	nn.Uniform(f.StateDict()["proj.weight"], -0.5, 0.5)
	nn.Uniform(f.StateDict()["proj.bias"], -0.2, 0.2)
}

// TestConvFlowPassthroughHalf tests that the first channel half is
// passed through bitwise unchanged under a full mask.
func TestConvFlowPassthroughHalf(t *testing.T) {
	backend := cpu.New()
	f := testConvFlow(backend)
	randomizeHead(f)

	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 6})
	mask := onesMask(backend, 2, 6)

	y, logdet := f.Forward(x, mask, nil)
	require.Equal(t, []int{2, 4, 6}, []int(y.Shape()))
	require.Equal(t, []int{2}, []int(logdet.Shape()))

	x0 := x.Chunk(2, 1)[0]
	y0 := y.Chunk(2, 1)[0]
	assert.Equal(t, x0.Data(), y0.Data())
}

// TestConvFlowFreshNearIdentity tests that the zero-initialized head
// keeps the transformed half close to the input and round-trips tightly.
// With zero spline parameters the bins are uniform, so the deviation from
// the identity shrinks with bin width; the default ten bins keep it small.
func TestConvFlowFreshNearIdentity(t *testing.T) {
	backend := cpu.New()
	f := NewConvFlow(backend, ConvFlowConfig{
		InChannels:     4,
		FilterChannels: 8,
		KernelSize:     3,
		Layers:         2,
	})

	x := tensor.Rand[float32](backend, tensor.Shape{1, 4, 8}).MulScalar(2).AddScalar(-1)
	mask := onesMask(backend, 1, 8)

	y, _ := f.Forward(x, mask, nil)
	assert.Less(t, maxAbsDiff(t, x.Data(), y.Data()), 0.05, "fresh flow strayed from the identity")

	back := f.Inverse(y, mask, nil)
	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)
}

// TestConvFlowRoundTrip tests inverse(forward(x)) with a randomized head
// under a partial mask.
func TestConvFlowRoundTrip(t *testing.T) {
	backend := cpu.New()
	f := testConvFlow(backend)
	randomizeHead(f)

	mask := mustTensor(t, backend, []float32{
		1, 1, 1, 1, 1, 1, 0, 0,
		1, 1, 1, 0, 0, 0, 0, 0,
	}, tensor.Shape{2, 1, 8})
	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 8}).Mul(mask)

	y, _ := f.Forward(x, mask, nil)
	back := f.Inverse(y, mask, nil)

	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)
}

// TestConvFlowConditioned tests round-tripping with a conditioning
// tensor feeding the parameter head.
func TestConvFlowConditioned(t *testing.T) {
	backend := cpu.New()
	f := testConvFlow(backend)
	randomizeHead(f)

	x := tensor.Randn[float32](backend, tensor.Shape{1, 4, 5})
	mask := onesMask(backend, 1, 5)
	cond := tensor.Randn[float32](backend, tensor.Shape{1, 8, 5})

	y, _ := f.Forward(x, mask, cond)
	back := f.Inverse(y, mask, cond)
	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)

	// A different conditioning tensor parameterizes a different spline.
	other := f.Inverse(y, mask, tensor.Zeros[float32](backend, tensor.Shape{1, 8, 5}))
	assert.Greater(t, maxAbsDiff(t, back.Data(), other.Data()), 0.0)
}

// TestConvFlowMaskZeroing tests that padded positions come out exactly
// zero.
func TestConvFlowMaskZeroing(t *testing.T) {
	backend := cpu.New()
	f := testConvFlow(backend)
	randomizeHead(f)

	mask := mustTensor(t, backend, []float32{1, 1, 0, 0}, tensor.Shape{1, 1, 4})
	x := tensor.Randn[float32](backend, tensor.Shape{1, 4, 4})

	y, _ := f.Forward(x, mask, nil)
	for c := 0; c < 4; c++ {
		for ti := 2; ti < 4; ti++ {
			assert.Zero(t, y.At(0, c, ti), "masked position (%d, %d) not zeroed", c, ti)
		}
	}
}

// TestConvFlowDefaults tests the NumBins and TailBound fallbacks.
func TestConvFlowDefaults(t *testing.T) {
	backend := cpu.New()
	f := NewConvFlow(backend, ConvFlowConfig{
		InChannels:     2,
		FilterChannels: 4,
		KernelSize:     3,
		Layers:         1,
	})

	x := tensor.Randn[float32](backend, tensor.Shape{1, 2, 6})
	mask := onesMask(backend, 1, 6)
	y, _ := f.Forward(x, mask, nil)
	back := f.Inverse(y, mask, nil)
	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)
}

// TestConvFlowStateDictRoundTrip tests loading a sibling transform.
func TestConvFlowStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := testConvFlow(backend)
	randomizeHead(src)
	dst := testConvFlow(backend)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Randn[float32](backend, tensor.Shape{1, 4, 6})
	mask := onesMask(backend, 1, 6)

	ya, _ := src.Forward(x, mask, nil)
	yb, _ := dst.Forward(x, mask, nil)
	for i, v := range ya.Data() {
		assert.InDelta(t, v, yb.Data()[i], 1e-6, "output mismatch at index %d", i)
	}
}

// TestConvFlowInvalidConfig tests construction and shape validation.
func TestConvFlowInvalidConfig(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() {
		NewConvFlow(backend, ConvFlowConfig{InChannels: 3, FilterChannels: 4, KernelSize: 3, Layers: 1})
	}, "odd channel count must panic")
	assert.Panics(t, func() {
		NewConvFlow(backend, ConvFlowConfig{InChannels: 4, FilterChannels: 0, KernelSize: 3, Layers: 1})
	})

	f := testConvFlow(backend)
	wrong := tensor.Randn[float32](backend, tensor.Shape{1, 6, 4})
	assert.Panics(t, func() { f.Forward(wrong, nil, nil) }, "channel mismatch must panic")
}
