package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Conv1D convolves input [batch, inCh, time] with kernel
// [outCh, inCh/groups, kernelSize]. Zero padding is applied on both ends
// of the time axis; dilation spaces kernel taps; groups partitions the
// channels into independent convolutions (groups == inCh gives a
// depthwise convolution).
func (c *CPUBackend) Conv1D(input, kernel *tensor.RawTensor, stride, padding, dilation, groups int) *tensor.RawTensor {
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv1d: dtype mismatch: %s vs %s", input.DType(), kernel.DType()))
	}

	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 3 {
		panic(fmt.Sprintf("conv1d: input must be [batch, channels, time], got %v", is))
	}
	if len(ks) != 3 {
		panic(fmt.Sprintf("conv1d: kernel must be [outCh, inCh/groups, kernelSize], got %v", ks))
	}
	if stride < 1 || dilation < 1 || padding < 0 || groups < 1 {
		panic(fmt.Sprintf("conv1d: invalid hyperparameters stride=%d padding=%d dilation=%d groups=%d",
			stride, padding, dilation, groups))
	}

	batch, inCh, timeIn := is[0], is[1], is[2]
	outCh, kInCh, kSize := ks[0], ks[1], ks[2]

	if inCh%groups != 0 || outCh%groups != 0 {
		panic(fmt.Sprintf("conv1d: groups=%d must divide inCh=%d and outCh=%d", groups, inCh, outCh))
	}
	if kInCh != inCh/groups {
		panic(fmt.Sprintf("conv1d: kernel expects %d input channels per group, input has %d", kInCh, inCh/groups))
	}

	outT := (timeIn+2*padding-dilation*(kSize-1)-1)/stride + 1
	if outT < 1 {
		panic(fmt.Sprintf("conv1d: kernel span exceeds padded input: time=%d padding=%d kernel=%d dilation=%d",
			timeIn, padding, kSize, dilation))
	}

	out, err := tensor.NewRaw(tensor.Shape{batch, outCh, outT}, input.DType(), input.Device())
	if err != nil {
		panic(fmt.Sprintf("conv1d: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		conv1dKernel(c.parallel, input.AsFloat32(), kernel.AsFloat32(), out.AsFloat32(),
			batch, inCh, timeIn, outCh, kSize, outT, stride, padding, dilation, groups)
	case tensor.Float64:
		conv1dKernel(c.parallel, input.AsFloat64(), kernel.AsFloat64(), out.AsFloat64(),
			batch, inCh, timeIn, outCh, kSize, outT, stride, padding, dilation, groups)
	default:
		panic(fmt.Sprintf("conv1d: unsupported dtype %s", input.DType()))
	}
	return out
}

// conv1dKernel parallelizes over (batch, outputChannel) pairs; each unit
// slides the kernel across time for one output row.
func conv1dKernel[T floatType](cfg parallel.Config, in, kern, out []T,
	batch, inCh, timeIn, outCh, kSize, outT, stride, padding, dilation, groups int,
) {
	inPerGroup := inCh / groups
	outPerGroup := outCh / groups

	parallel.ForBatch(cfg, batch*outCh, func(idx int) {
		b := idx / outCh
		oc := idx % outCh
		g := oc / outPerGroup
		icStart := g * inPerGroup

		outBase := (b*outCh + oc) * outT
		kernBase := oc * inPerGroup * kSize

		for ot := 0; ot < outT; ot++ {
			var sum T
			for ic := 0; ic < inPerGroup; ic++ {
				inBase := (b*inCh + icStart + ic) * timeIn
				kBase := kernBase + ic*kSize
				for kx := 0; kx < kSize; kx++ {
					it := ot*stride - padding + kx*dilation
					if it < 0 || it >= timeIn {
						continue
					}
					sum += in[inBase+it] * kern[kBase+kx]
				}
			}
			out[outBase+ot] = sum
		}
	})
}
