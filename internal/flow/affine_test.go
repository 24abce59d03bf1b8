package flow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestElementwiseAffineFreshIsIdentity tests the zero-initialized
// transform on batch=2, channels=4, time=8 with a full mask: output
// equals input and the logdet vector is zero.
func TestElementwiseAffineFreshIsIdentity(t *testing.T) {
	backend := cpu.New()
	tr := NewElementwiseAffine(backend, 4)

	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 8})
	mask := onesMask(backend, 2, 8)

	y, logdet := tr.Forward(x, mask, nil)

	xd, yd := x.Data(), y.Data()
	for i := range xd {
		assert.InDelta(t, xd[i], yd[i], 0, "identity violated at index %d", i)
	}

	require.Equal(t, []int{2}, []int(logdet.Shape()))
	for _, v := range logdet.Data() {
		assert.Zero(t, v)
	}
}

// TestElementwiseAffineRoundTrip tests inversion with nonzero parameters
// under a partial mask.
func TestElementwiseAffineRoundTrip(t *testing.T) {
	backend := cpu.New()
	tr := NewElementwiseAffine(backend, 3)
	nn.Normal(tr.Parameters()[0].Tensor(), 0, 1)
	nn.Normal(tr.Parameters()[1].Tensor(), 0, 0.5)

	mask := mustTensor(t, backend, []float32{1, 1, 1, 1, 0, 0}, tensor.Shape{1, 1, 6})
	x := tensor.Randn[float32](backend, tensor.Shape{1, 3, 6}).Mul(mask)

	y, _ := tr.Forward(x, mask, nil)
	back := tr.Inverse(y, mask, nil)

	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)
}

// TestElementwiseAffineLogdetFormula tests that the logdet equals
// sum(logs * mask) and does not depend on the input.
func TestElementwiseAffineLogdetFormula(t *testing.T) {
	backend := cpu.New()
	tr := NewElementwiseAffine(backend, 2)

	logs := []float32{0.3, -0.7}
	copy(tr.StateDict()["logs"].Data(), logs)

	// Batch rows with different valid lengths.
	mask := mustTensor(t, backend, []float32{
		1, 1, 1, 0,
		1, 1, 0, 0,
	}, tensor.Shape{2, 1, 4})

	xa := tensor.Randn[float32](backend, tensor.Shape{2, 2, 4})
	xb := tensor.Randn[float32](backend, tensor.Shape{2, 2, 4})

	_, logdetA := tr.Forward(xa, mask, nil)
	_, logdetB := tr.Forward(xb, mask, nil)

	logsSum := float64(logs[0] + logs[1])
	assert.InDelta(t, 3*logsSum, logdetA.At(0), 1e-5)
	assert.InDelta(t, 2*logsSum, logdetA.At(1), 1e-5)
	for b := 0; b < 2; b++ {
		assert.InDelta(t, logdetA.At(b), logdetB.At(b), 1e-6, "logdet depends on input at example %d", b)
	}
}

// TestElementwiseAffineInversePaddedPositions tests the padded-position
// edge case: inversion must zero padded steps, not divide into NaN.
func TestElementwiseAffineInversePaddedPositions(t *testing.T) {
	backend := cpu.New()
	tr := NewElementwiseAffine(backend, 1)
	copy(tr.StateDict()["m"].Data(), []float32{0.9})
	copy(tr.StateDict()["logs"].Data(), []float32{-0.4})

	mask := mustTensor(t, backend, []float32{1, 0, 0}, tensor.Shape{1, 1, 3})
	// Garbage at padded positions must not leak through the inverse.
	y := mustTensor(t, backend, []float32{2, 7, -3}, tensor.Shape{1, 1, 3})

	back := tr.Inverse(y, mask, nil)
	assert.False(t, math.IsNaN(float64(back.At(0, 0, 1))))
	assert.Zero(t, back.At(0, 0, 1))
	assert.Zero(t, back.At(0, 0, 2))

	want := (2 - 0.9) * math.Exp(0.4)
	assert.InDelta(t, want, back.At(0, 0, 0), 1e-5)
}

// TestElementwiseAffineStateDictRoundTrip tests loading a sibling
// transform.
func TestElementwiseAffineStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := NewElementwiseAffine(backend, 3)
	nn.Normal(src.StateDict()["m"], 0, 1)
	nn.Normal(src.StateDict()["logs"], 0, 1)

	dst := NewElementwiseAffine(backend, 3)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Randn[float32](backend, tensor.Shape{1, 3, 4})
	ya, _ := src.Forward(x, nil, nil)
	yb, _ := dst.Forward(x, nil, nil)
	for i, v := range ya.Data() {
		assert.InDelta(t, v, yb.Data()[i], 1e-6, "output mismatch at index %d", i)
	}
}

// TestElementwiseAffineInvalidChannels tests construction validation.
func TestElementwiseAffineInvalidChannels(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() { NewElementwiseAffine(backend, 0) })
}
