package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Embedding gathers rows of weight [vocab, dim] by int32 indices
// [batch, time], producing [batch, time, dim]. Out-of-range indices panic;
// token ids must be validated at the tokenizer boundary.
func (c *CPUBackend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	ws, is := weight.Shape(), indices.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("embedding: weight must be [vocab, dim], got %v", ws))
	}
	if len(is) != 2 {
		panic(fmt.Sprintf("embedding: indices must be [batch, time], got %v", is))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	vocab, dim := ws[0], ws[1]
	batch, time := is[0], is[1]

	out, err := tensor.NewRaw(tensor.Shape{batch, time, dim}, weight.DType(), weight.Device())
	if err != nil {
		panic(fmt.Sprintf("embedding: %v", err))
	}

	// Range-check serially before the parallel gather; a panic inside a
	// worker goroutine would not reach the caller.
	idx := indices.AsInt32()
	for i, id := range idx {
		if id < 0 || int(id) >= vocab {
			panic(fmt.Sprintf("embedding: index %d at position %d out of range [0, %d)", id, i, vocab))
		}
	}

	switch weight.DType() {
	case tensor.Float32:
		embeddingKernel(c.parallel, weight.AsFloat32(), idx, out.AsFloat32(), dim)
	case tensor.Float64:
		embeddingKernel(c.parallel, weight.AsFloat64(), idx, out.AsFloat64(), dim)
	default:
		panic(fmt.Sprintf("embedding: unsupported weight dtype %s", weight.DType()))
	}
	return out
}

func embeddingKernel[T floatType](cfg parallel.Config, weight []T, idx []int32, out []T, dim int) {
	parallel.ForBatch(cfg, len(idx), func(i int) {
		id := int(idx[i])
		copy(out[i*dim:(i+1)*dim], weight[id*dim:(id+1)*dim])
	})
}
