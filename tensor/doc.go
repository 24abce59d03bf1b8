// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the Voxflow
// flow-based speech components.
//
// # Overview
//
// Tensors are the data structure every layer and transform operates on.
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting on elementwise operations
//   - Device abstraction (CPU, WebGPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	    y := tensor.Ones[float32](backend, tensor.Shape{2, 3})
//
//	    z := x.Add(y)
//	    result := x.MatMul(y.T())
//	}
//
// # Supported Data Types
//
// The DType constraint admits float32, float64 and int32. Model
// parameters and activations are float32; token ids are int32.
//
// # Broadcasting
//
// Elementwise operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](backend, tensor.Shape{3, 1})    // (3, 1)
//	b := tensor.Ones[float32](backend, tensor.Shape{3, 4})     // (3, 4)
//	c := a.Add(b)                                              // (3, 4)
//
// A [batch, 1, time] mask therefore multiplies cleanly onto a
// [batch, channel, time] activation.
//
// # Memory Management
//
// Underlying buffers are reference-counted; Clone shares the buffer and
// copies lazily on write.
//
// # Available Operations
//
// Scalar operations:
//
//	y := x.MulScalar(2.0)    // Multiply by scalar
//	y := x.AddScalar(1.0)    // Add scalar
//
// Math operations:
//
//	y := x.Exp()             // Exponential
//	y := x.Log()             // Natural logarithm
//	y := x.ClampMin(1e-5)    // Lower bound, used before Log
//
// Structural operations:
//
//	halves := x.Chunk(2, 1)  // Split the channel axis
//	rev := x.Flip(1)         // Reverse the channel axis
//	y := x.Transpose(1, 2)   // Swap two axes
//
// See method documentation for the full list.
package tensor
