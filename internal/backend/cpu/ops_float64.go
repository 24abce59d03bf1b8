package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

func binaryFloat64(cfg parallel.Config, op string, x, y, out []float64) {
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

func binaryBroadcastFloat64(cfg parallel.Config, op string, x, y, out *tensor.RawTensor) {
	outStrides := out.Shape().ComputeStrides()
	xStrides := computeBroadcastStridesForShape(x.Shape(), out.Shape())
	yStrides := computeBroadcastStridesForShape(y.Shape(), out.Shape())

	xd := x.AsFloat64()
	yd := y.AsFloat64()
	od := out.AsFloat64()

	var f func(a, b float64) float64
	switch op {
	case "add":
		f = func(a, b float64) float64 { return a + b }
	case "sub":
		f = func(a, b float64) float64 { return a - b }
	case "mul":
		f = func(a, b float64) float64 { return a * b }
	case "div":
		f = func(a, b float64) float64 { return a / b }
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
