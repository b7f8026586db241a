//go:build !windows

package webgpu

// DefaultRuntime returns the platform GPU runtime. WebGPU is only wired on
// windows; elsewhere every open reports ErrNoDevice.
func DefaultRuntime() Runtime { return unavailableRuntime{} }

type unavailableRuntime struct{}

func (unavailableRuntime) Open() (Device, error) { return nil, ErrNoDevice }
