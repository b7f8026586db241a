// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU-offloaded GEMM kernel.
//
// The kernel opens a device for every multiplication, uploads A and B,
// launches one workgroup per 32x32 output tile and reads C back. When no
// device can be acquired, or any step fails, it computes C with the naive
// CPU kernel instead. Device offload is implemented with WebGPU on windows;
// other platforms always take the CPU path unless a custom Runtime is given.
//
// Example:
//
//	k := webgpu.New(webgpu.DefaultRuntime(), nil)
//	k.MatMul(a, b, c, m, n, kd)
//	if k.FellBack() {
//	    log.Println("computed on the CPU")
//	}
package webgpu

import (
	"log/slog"

	internalcpu "github.com/born-ml/matbench/internal/backend/cpu"
	internalwebgpu "github.com/born-ml/matbench/internal/backend/webgpu"
)

// Kernel is the gpu GEMM variant.
type Kernel = internalwebgpu.Kernel

// Runtime opens GPU devices.
type Runtime = internalwebgpu.Runtime

// Device is an open GPU context.
type Device = internalwebgpu.Device

// Buffer is a device allocation.
type Buffer = internalwebgpu.Buffer

// Grid is the workgroup count of a launch.
type Grid = internalwebgpu.Grid

// Stats counts device opens, allocations, launches and fallbacks.
type Stats = internalwebgpu.Stats

// ErrNoDevice is returned when no device can be acquired.
var ErrNoDevice = internalwebgpu.ErrNoDevice

// DefaultRuntime returns the platform runtime.
func DefaultRuntime() Runtime { return internalwebgpu.DefaultRuntime() }

// New creates a gpu kernel that falls back to the naive CPU kernel.
// A nil logger uses slog.Default().
func New(rt Runtime, logger *slog.Logger) *Kernel {
	return internalwebgpu.NewKernel(rt, internalcpu.NewNaive(), logger)
}

// IsAvailable reports whether rt can open a device.
//
// Example:
//
//	if !webgpu.IsAvailable(webgpu.DefaultRuntime()) {
//	    log.Println("no GPU, the gpu variant will fall back")
//	}
func IsAvailable(rt Runtime) bool {
	_, err := internalwebgpu.Probe(rt)
	return err == nil
}
