package cpu

import "github.com/voxflow-ml/voxflow/internal/tensor"

// computeBroadcastStridesForShape returns strides for reading a tensor of
// the given shape as if it had outShape. Broadcast dimensions (size 1 or
// missing on the left) get stride 0, so every output coordinate along them
// reads the same input element.
func computeBroadcastStridesForShape(shape, outShape tensor.Shape) []int {
	strides := shape.ComputeStrides()
	result := make([]int, len(outShape))
	offset := len(outShape) - len(shape)
	for i := range outShape {
		si := i - offset
		if si < 0 || shape[si] == 1 {
			result[i] = 0
		} else {
			result[i] = strides[si]
		}
	}
	return result
}

// computeFlatIndex maps a flat output index to a flat input index by
// decomposing it into coordinates via outStrides and re-accumulating with
// the (possibly zeroed) input strides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	inIdx := 0
	remaining := outIdx
	for d := range outStrides {
		coord := remaining / outStrides[d]
		remaining %= outStrides[d]
		inIdx += coord * inStrides[d]
	}
	return inIdx
}
