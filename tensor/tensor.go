// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in Voxflow.
//
// The package re-exports the core types for type-safe tensor work:
//   - Tensor[T, B]: high-level generic tensor
//   - RawTensor: low-level dtype-erased tensor
//   - Backend: interface for device-specific compute implementations
//   - Shape, DataType, Device: core type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	y := tensor.Ones[float32](backend, tensor.Shape{2, 3})
//	z := x.Add(y)
package tensor

import (
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// DType is the constraint for tensor element types.
// Supported types: float32, float64, int32.
type DType = tensor.DType

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3-D tensor with dimensions 2x3x4.
type Shape = tensor.Shape

// Tensor is a generic type-safe tensor.
//
// T is the element type (float32, float64, int32).
// B is the backend implementation (CPU, WebGPU).
//
// Operations dispatch through the backend, so the same model code runs
// on any device. Mixing tensors from different backends is a compile
// error.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Creation functions

// New creates a zero-filled tensor with the given shape.
func New[T DType, B Backend](backend B, shape Shape) (*Tensor[T, B], error) {
	return tensor.New[T](backend, shape)
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
func Zeros[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return tensor.Zeros[T](backend, shape)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return tensor.Ones[T](backend, shape)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	x := tensor.Full[float32](backend, tensor.Shape{2, 3}, 3.14)
func Full[T DType, B Backend](backend B, shape Shape, value T) *Tensor[T, B] {
	return tensor.Full(backend, shape, value)
}

// Randn creates a tensor with elements drawn from the standard normal
// distribution N(0, 1).
func Randn[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return tensor.Randn[T](backend, shape)
}

// Rand creates a tensor with elements drawn uniformly from [0, 1).
func Rand[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return tensor.Rand[T](backend, shape)
}

// Arange creates a 1-D tensor with values from start to end (exclusive)
// in increments of step.
//
// Example:
//
//	x := tensor.Arange[float32](backend, 0, 10, 1) // [0, 1, ..., 9]
func Arange[T DType, B Backend](backend B, start, end, step T) *Tensor[T, B] {
	return tensor.Arange(backend, start, end, step)
}

// FromSlice creates a tensor from a flat slice in row-major order.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(backend, data, tensor.Shape{2, 3})
func FromSlice[T DType, B Backend](backend B, data []T, shape Shape) (*Tensor[T, B], error) {
	return tensor.FromSlice(backend, data, shape)
}

// FromRaw wraps an existing RawTensor in a typed tensor. It panics if
// the raw dtype does not match T.
//
// This is a low-level function; most users should use the creation
// functions above.
func FromRaw[T DType, B Backend](backend B, raw *RawTensor) *Tensor[T, B] {
	return tensor.FromRaw[T](backend, raw)
}

// Manipulation functions

// Cat concatenates tensors along a dimension.
//
// Example:
//
//	a := tensor.Ones[float32](backend, tensor.Shape{2, 3})
//	b := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	c := tensor.Cat([]*tensor.Tensor[float32, B]{a, b}, 0) // Shape: [4, 3]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// Embedding gathers rows of weight [vocab, dim] by token id, mapping
// indices [batch, time] to vectors [batch, time, dim].
func Embedding[T DType, B Backend](weight *Tensor[T, B], indices *Tensor[int32, B]) *Tensor[T, B] {
	return tensor.Embedding(weight, indices)
}
