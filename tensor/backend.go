// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/voxflow-ml/voxflow/internal/tensor"

// Backend is the interface every compute backend implements. Backends
// carry out the actual computation behind Tensor operations: elementwise
// arithmetic with broadcasting, matrix multiplication, 1-D convolution,
// reductions and shape manipulation.
//
// Implementations:
//   - backend/cpu: pure Go, parallelized across batch rows
//   - backend/webgpu: zero-CGO GPU compute via WebGPU (Windows)
//
// Example:
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	y := tensor.Ones[float32](backend, tensor.Shape{2, 3})
//	z := x.Add(y) // dispatches to backend.Add
type Backend = tensor.Backend
