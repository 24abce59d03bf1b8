package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// binaryFloat32 applies a binary op to same-shape operands. The op switch
// sits outside the loop so each case compiles to a tight vectorizable body.
func binaryFloat32(cfg parallel.Config, op string, x, y, out []float32) {
	switch op {
	case "add":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] + y[i]
			}
		})
	case "sub":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] - y[i]
			}
		})
	case "mul":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] * y[i]
			}
		})
	case "div":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] / y[i]
			}
		})
	default:
		panic(fmt.Sprintf("unknown binary op %q", op))
	}
}

// binaryBroadcastFloat32 applies a binary op where operand shapes differ.
// Each output index is decomposed into coordinates and mapped back through
// broadcast strides, so size-1 dimensions read a single input element.
func binaryBroadcastFloat32(cfg parallel.Config, op string, x, y, out *tensor.RawTensor) {
	outStrides := out.Shape().ComputeStrides()
	xStrides := computeBroadcastStridesForShape(x.Shape(), out.Shape())
	yStrides := computeBroadcastStridesForShape(y.Shape(), out.Shape())

	xd := x.AsFloat32()
	yd := y.AsFloat32()
	od := out.AsFloat32()

	var f func(a, b float32) float32
	switch op {
	case "add":
		f = func(a, b float32) float32 { return a + b }
	case "sub":
		f = func(a, b float32) float32 { return a - b }
	case "mul":
		f = func(a, b float32) float32 { return a * b }
	case "div":
		f = func(a, b float32) float32 { return a / b }
	default:
		panic(fmt.Sprintf("unknown binary op %q", op))
	}

	parallel.For(cfg, len(od), func(start, end int) {
		for i := start; i < end; i++ {
			xi := computeFlatIndex(i, outStrides, xStrides)
			yi := computeFlatIndex(i, outStrides, yStrides)
			od[i] = f(xd[xi], yd[yi])
		}
	})
}
