//go:build windows

// Package webgpu implements a GPU backend on top of WebGPU compute
// shaders, using go-webgpu's zero-CGO bindings.
//
// Arithmetic runs through an upload-compute-readback cycle: operand
// bytes are staged into storage buffers, a cached pipeline executes one
// WGSL kernel, and the result is copied back through a staging buffer.
// Only float32 tensors are computed on the GPU. Layout operations
// (reshape, transpose, concatenation) are pure memory reorders and run
// on the host, where a round trip through GPU memory would cost two
// transfers for no arithmetic.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Backend implements tensor.Backend with WGSL compute kernels.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu        sync.RWMutex
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	adapterInfo wgpu.AdapterInfoGo
}

// New initializes WebGPU and binds the highest-performance adapter.
// Fails when the native wgpu library or a compatible GPU is missing;
// loading the library can panic, so that failure mode is converted to
// an error here.
func New() (backend *Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	b := &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}
	if info, infoErr := adapter.GetInfo(); infoErr == nil && info != nil {
		b.adapterInfo = *info
	}
	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return "webgpu"
}

// Device returns the device this backend computes on.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo reports the GPU adapter in use.
func (b *Backend) AdapterInfo() wgpu.AdapterInfoGo {
	return b.adapterInfo
}

// Release frees all GPU resources. The backend must not be used after.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// IsAvailable reports whether a WebGPU adapter can be acquired without
// initializing a full backend.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}
