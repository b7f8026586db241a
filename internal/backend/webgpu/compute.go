//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

const bytesPerElement = 4

type wgpuBuffer struct {
	buf   *wgpu.Buffer
	elems int
}

func (b *wgpuBuffer) Len() int { return b.elems }

func (b *wgpuBuffer) size() uint64 {
	//nolint:gosec // G115: element counts are validated positive
	return uint64(b.elems * bytesPerElement)
}

func (d *wgpuDevice) Alloc(elems int) (Buffer, error) {
	if elems <= 0 {
		return nil, fmt.Errorf("alloc: invalid element count %d", elems)
	}
	//nolint:gosec // G115: element counts are validated positive
	size := uint64(elems * bytesPerElement)
	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if buf == nil {
		return nil, fmt.Errorf("alloc %d bytes: %w", size, ErrNoDevice)
	}
	return &wgpuBuffer{buf: buf, elems: elems}, nil
}

func (d *wgpuDevice) Free(b Buffer) error {
	wb, ok := b.(*wgpuBuffer)
	if !ok || wb.buf == nil {
		return fmt.Errorf("free: foreign or released buffer")
	}
	wb.buf.Release()
	wb.buf = nil
	return nil
}

// Upload copies src through a mapped staging buffer into dst.
func (d *wgpuDevice) Upload(dst Buffer, src []float32) error {
	wb, ok := dst.(*wgpuBuffer)
	if !ok || wb.buf == nil {
		return fmt.Errorf("upload: foreign or released buffer")
	}
	if len(src) != wb.elems {
		return fmt.Errorf("upload: %d elements into buffer of %d", len(src), wb.elems)
	}
	size := wb.size()

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageMapWrite | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*float32)(mappedPtr), len(src))
	copy(mapped, src)
	staging.Unmap()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, wb.buf, 0, size)
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

func (d *wgpuDevice) Launch(a, b, c Buffer, m, n, k int, grid Grid) error {
	bufA, okA := a.(*wgpuBuffer)
	bufB, okB := b.(*wgpuBuffer)
	bufC, okC := c.(*wgpuBuffer)
	if !okA || !okB || !okC {
		return fmt.Errorf("launch: foreign buffer")
	}
	//nolint:gosec // G115: dimensions are validated positive
	if uint64(m) > math.MaxUint32 || uint64(n) > math.MaxUint32 || uint64(k) > math.MaxUint32 {
		return fmt.Errorf("launch: shape %dx%dx%d exceeds u32", m, n, k)
	}

	params := make([]byte, 16)
	//nolint:gosec // G115: range checked above
	binary.LittleEndian.PutUint32(params[0:4], uint32(m))
	//nolint:gosec // G115: range checked above
	binary.LittleEndian.PutUint32(params[4:8], uint32(n))
	//nolint:gosec // G115: range checked above
	binary.LittleEndian.PutUint32(params[8:12], uint32(k))
	uniform := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             16,
		MappedAtCreation: wgpu.True,
	})
	defer uniform.Release()
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(uniform.GetMappedRange(0, 16)), 16), params)
	uniform.Unmap()

	layout := d.pipeline.GetBindGroupLayout(0)
	bindGroup := d.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufA.buf, 0, bufA.size()),
		wgpu.BufferBindingEntry(1, bufB.buf, 0, bufB.size()),
		wgpu.BufferBindingEntry(2, bufC.buf, 0, bufC.size()),
		wgpu.BufferBindingEntry(3, uniform, 0, 16),
	})
	defer bindGroup.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	//nolint:gosec // G115: grid dimensions derive from u32-checked shape
	pass.DispatchWorkgroups(uint32(grid.X), uint32(grid.Y), 1)
	pass.End()
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// Download reads src back through a MAP_READ staging buffer.
func (d *wgpuDevice) Download(dst []float32, src Buffer) error {
	wb, ok := src.(*wgpuBuffer)
	if !ok || wb.buf == nil {
		return fmt.Errorf("download: foreign or released buffer")
	}
	if len(dst) != wb.elems {
		return fmt.Errorf("download: buffer of %d into %d elements", wb.elems, len(dst))
	}
	size := wb.size()

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(wb.buf, 0, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(dst, unsafe.Slice((*float32)(mappedPtr), len(dst)))
	staging.Unmap()
	return nil
}
