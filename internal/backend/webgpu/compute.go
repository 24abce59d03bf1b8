//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// pipelineFor returns the cached compute pipeline for a kernel,
// compiling the WGSL source on first use. The double check under the
// write lock keeps concurrent first calls from compiling twice.
func (b *Backend) pipelineFor(name, source string) *wgpu.ComputePipeline {
	b.mu.RLock()
	p, ok := b.pipelines[name]
	b.mu.RUnlock()
	if ok {
		return p
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pipelines[name]; ok {
		return p
	}
	shader := b.device.CreateShaderModuleWGSL(source)
	b.shaders[name] = shader
	p = b.device.CreateComputePipelineSimple(nil, shader, "main")
	b.pipelines[name] = p
	return p
}

// uploadBuffer creates a storage buffer holding data, via the
// mapped-at-creation path so no separate queue write is needed.
func (b *Backend) uploadBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	//nolint:gosec // unsafe.Slice over the mapped range for a zero-copy upload.
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// uniformBuffer creates a uniform buffer holding data, padded to the
// 16-byte alignment uniform bindings require.
func (b *Backend) uniformBuffer(data []byte) *wgpu.Buffer {
	size := (uint64(len(data)) + 15) &^ 15
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	//nolint:gosec // unsafe.Slice over the mapped range for a zero-copy upload.
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a storage buffer back to host memory. Storage
// buffers cannot be mapped directly, so the copy goes through a staging
// buffer mapped for reading.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	//nolint:gosec // unsafe.Slice over the mapped range for a zero-copy read.
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size)
	result := make([]byte, size)
	copy(result, mapped)
	staging.Unmap()

	return result, nil
}

// dispatch executes one compute kernel and returns the result bytes.
// Inputs bind as read-only storage buffers at 0..len(inputs)-1, the
// result as a read_write storage buffer after them, and the uniform
// params buffer last. Every kernel in shaders.go follows this layout.
func (b *Backend) dispatch(name, source string, inputs [][]byte, resultSize int, params []byte, groupsX, groupsY, groupsZ uint32) ([]byte, error) {
	pipeline := b.pipelineFor(name, source)

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	buffers := make([]*wgpu.Buffer, 0, len(inputs))
	defer func() {
		for _, buf := range buffers {
			buf.Release()
		}
	}()
	for i, in := range inputs {
		buf := b.uploadBuffer(in)
		buffers = append(buffers, buf)
		//nolint:gosec // G115: binding indices and buffer sizes are small non-negatives.
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, uint64(len(in))))
	}

	//nolint:gosec // G115: resultSize is a non-negative byte count.
	size := uint64(resultSize)
	result := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer result.Release()
	//nolint:gosec // G115: binding index is a small non-negative.
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)), result, 0, size))

	paramsBuf := b.uniformBuffer(params)
	defer paramsBuf.Release()
	//nolint:gosec // G115: binding index is a small non-negative.
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)+1), paramsBuf, 0, (uint64(len(params))+15)&^15))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(groupsX, groupsY, groupsZ)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	return b.readBuffer(result, size)
}

// packUint32 serializes values little-endian for a uniform buffer.
// Float fields go through math.Float32bits before packing.
func packUint32(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// groups1D returns the workgroup count covering n elements.
func groups1D(n int) uint32 {
	//nolint:gosec // G115: element counts are non-negative.
	return uint32((n + workgroupSize - 1) / workgroupSize)
}
