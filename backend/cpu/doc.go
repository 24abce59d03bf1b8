// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - A shared worker pool that parallelizes elementwise kernels,
//     convolutions and matrix products across rows
//
// # Basic Usage
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/nn"
//	    "github.com/voxflow-ml/voxflow/tensor"
//	)
//
//	func main() {
//	    // Create CPU backend
//	    backend := cpu.New()
//
//	    // Use with tensors
//	    x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	    y := tensor.Ones[float32](backend, tensor.Shape{2, 3})
//	    z := x.Add(y)
//
//	    // Use with network modules
//	    proj := nn.NewLinearNorm(backend, nn.LinearNormConfig{
//	        InFeatures:  192,
//	        OutFeatures: 80,
//	    })
//	    _, _ = z, proj
//	}
//
// # Performance
//
// Kernels split their outermost loop over a worker pool sized to
// GOMAXPROCS. Small tensors run on the calling goroutine to avoid
// scheduling overhead.
//
// For GPU acceleration on Windows, see the webgpu package.
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
