package flow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestLogOnes tests that all-ones input maps to zeros with zero logdet.
func TestLogOnes(t *testing.T) {
	backend := cpu.New()
	tr := NewLog[Backend]()

	x := tensor.Ones[float32](backend, tensor.Shape{2, 3, 4})
	mask := onesMask(backend, 2, 4)

	y, logdet := tr.Forward(x, mask, nil)
	for _, v := range y.Data() {
		assert.Zero(t, v)
	}

	require.Equal(t, []int{2}, []int(logdet.Shape()))
	for _, v := range logdet.Data() {
		assert.Zero(t, v)
	}
}

// TestLogRoundTrip tests inverse(forward(x)) on positive inputs.
func TestLogRoundTrip(t *testing.T) {
	backend := cpu.New()
	tr := NewLog[Backend]()

	x := tensor.Rand[float32](backend, tensor.Shape{2, 3, 8}).AddScalar(0.5)
	mask := onesMask(backend, 2, 8)

	y, _ := tr.Forward(x, mask, nil)
	back := tr.Inverse(y, mask, nil)

	assert.Less(t, maxAbsDiff(t, x.Data(), back.Data()), 1e-4)
}

// TestLogLogdet tests logdet = -sum(y) per example.
func TestLogLogdet(t *testing.T) {
	backend := cpu.New()
	tr := NewLog[Backend]()

	x := tensor.Rand[float32](backend, tensor.Shape{2, 2, 5}).AddScalar(0.5)
	mask := onesMask(backend, 2, 5)

	y, logdet := tr.Forward(x, mask, nil)
	yd := y.Data()
	perExample := len(yd) / 2
	for b := 0; b < 2; b++ {
		var sum float64
		for _, v := range yd[b*perExample : (b+1)*perExample] {
			sum += float64(v)
		}
		assert.InDelta(t, -sum, logdet.At(b), 1e-4, "logdet mismatch for example %d", b)
	}
}

// TestLogClampsNonPositive tests that zero and negative inputs clamp to
// the floor instead of producing -inf.
func TestLogClampsNonPositive(t *testing.T) {
	backend := cpu.New()
	tr := NewLog[Backend]()

	x := mustTensor(t, backend, []float32{0, -2, 1}, tensor.Shape{1, 1, 3})
	y, _ := tr.Forward(x, nil, nil)

	floor := float32(math.Log(1e-5))
	assert.InDelta(t, floor, y.At(0, 0, 0), 1e-4)
	assert.InDelta(t, floor, y.At(0, 0, 1), 1e-4)
	assert.InDelta(t, 0, y.At(0, 0, 2), 1e-6)
	for _, v := range y.Data() {
		assert.False(t, math.IsInf(float64(v), 0), "log output not finite")
	}
}

// TestLogMaskZeroing tests that padded positions come out exactly zero in
// both directions.
func TestLogMaskZeroing(t *testing.T) {
	backend := cpu.New()
	tr := NewLog[Backend]()

	x := tensor.Rand[float32](backend, tensor.Shape{1, 2, 4}).AddScalar(0.5)
	mask := mustTensor(t, backend, []float32{1, 1, 0, 0}, tensor.Shape{1, 1, 4})

	y, _ := tr.Forward(x, mask, nil)
	back := tr.Inverse(y, mask, nil)
	for c := 0; c < 2; c++ {
		for ti := 2; ti < 4; ti++ {
			assert.Zero(t, y.At(0, c, ti))
			assert.Zero(t, back.At(0, c, ti))
		}
	}
}
