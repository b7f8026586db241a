//go:build windows

package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
)

// DefaultRuntime returns the WebGPU runtime backed by wgpu_native.
func DefaultRuntime() Runtime { return wgpuRuntime{} }

type wgpuRuntime struct{}

// Open acquires instance, adapter, device and queue, then compiles the
// matmul pipeline. Each stage releases the earlier ones on failure.
func (wgpuRuntime) Open() (dev Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("native library not available: %v: %w", r, ErrNoDevice)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("request adapter: %v: %w", adapterErr, ErrNoDevice)
	}
	info := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %v: %w", deviceErr, ErrNoDevice)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("get queue: %w", ErrNoDevice)
	}

	shader := device.CreateShaderModuleWGSL(tiledMatmulShader)
	pipeline := device.CreateComputePipelineSimple(nil, shader, "main")

	return &wgpuDevice{
		name:     fmt.Sprintf("WebGPU (%s %s)", info.Name, info.VendorName),
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		shader:   shader,
		pipeline: pipeline,
	}, nil
}

// wgpuDevice is one open device with the matmul pipeline compiled.
type wgpuDevice struct {
	name     string
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	shader   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline
}

func (d *wgpuDevice) Name() string { return d.name }

// Close releases the WebGPU objects in reverse acquisition order.
func (d *wgpuDevice) Close() error {
	if d.pipeline != nil {
		d.pipeline.Release()
		d.pipeline = nil
	}
	if d.shader != nil {
		d.shader.Release()
		d.shader = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	return nil
}
