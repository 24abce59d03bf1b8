// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// DataType identifies the element type of a RawTensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
)

// Device identifies where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// RawTensor is the low-level dtype-erased tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Typed data access via AsFloat32(), AsFloat64(), AsInt32()
//   - Buffer sharing with reference counting via Clone() and Release()
//
// Most users should use the high-level Tensor[T, B] type instead; the
// raw form appears at serialization and backend boundaries.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32()
//	clone := raw.Clone() // shares the buffer
type RawTensor = tensor.RawTensor

// NewRaw creates a raw tensor with the given shape, dtype and device.
//
// This is a low-level function; most users should use the typed
// creation functions instead.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
