//go:build windows

// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides a GPU backend built on the WebGPU compute API.
//
// Arithmetic runs as WGSL compute shaders through an upload, dispatch,
// readback cycle. Only float32 tensors are computed on the GPU; layout
// operations such as Reshape and Transpose run on the host.
//
// Example:
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/backend/webgpu"
//	)
//
//	func main() {
//	    if !webgpu.IsAvailable() {
//	        backend := cpu.New()
//	        _ = backend
//	        return
//	    }
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//	}
package webgpu

import (
	internalwebgpu "github.com/voxflow-ml/voxflow/internal/backend/webgpu"
	"github.com/voxflow-ml/voxflow/tensor"
)

// Backend is the WebGPU compute backend.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New initializes a WebGPU device and returns a backend ready for
// tensor operations. Call Release when done to free GPU resources.
//
// Returns an error when no compatible adapter is present.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be initialized on
// this machine. Use it to fall back to the cpu backend gracefully.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
