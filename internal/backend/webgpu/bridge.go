// Package webgpu offloads GEMM to a GPU device.
//
// The gpu variant drives a Device through a fixed sequence: open, allocate
// A, B and C, upload A and B, launch one workgroup per 32x32 output tile,
// download C, free the allocations in reverse order and close the device.
// Every step releases what was acquired before it on failure, and any
// failure degrades the call to the scalar reference kernel.
package webgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
)

// TileSize is the edge of the output tile computed by one workgroup.
const TileSize = 32

// ErrNoDevice is returned when no GPU device can be acquired.
var ErrNoDevice = errors.New("webgpu: no device available")

// Buffer is a device allocation holding f32 elements.
type Buffer interface {
	Len() int
}

// Device is an open GPU context.
type Device interface {
	Name() string
	Alloc(elems int) (Buffer, error)
	Upload(dst Buffer, src []float32) error
	Launch(a, b, c Buffer, m, n, k int, grid Grid) error
	Download(dst []float32, src Buffer) error
	Free(buf Buffer) error
	Close() error
}

// Runtime opens devices.
type Runtime interface {
	Open() (Device, error)
}

// Grid is the workgroup count of one launch.
type Grid struct {
	X int // tiles along N
	Y int // tiles along M
}

// GridFor returns the launch grid covering an m x n output with 32x32 tiles.
func GridFor(m, n int) Grid {
	return Grid{
		X: (n + TileSize - 1) / TileSize,
		Y: (m + TileSize - 1) / TileSize,
	}
}

// Stats counts device resource traffic.
type Stats struct {
	Opens     int
	Closes    int
	Allocs    int
	Frees     int
	Launches  int
	Fallbacks int
}

// Balanced reports whether every acquired resource was released.
func (s Stats) Balanced() bool {
	return s.Opens == s.Closes && s.Allocs == s.Frees
}

// Kernel is the gpu variant.
type Kernel struct {
	runtime  Runtime
	fallback kernel.Kernel
	logger   *slog.Logger

	stats    Stats
	fellBack bool
	warned   bool
}

// NewKernel returns a gpu kernel that offloads through rt and falls back to
// fallback. A nil rt always falls back.
func NewKernel(rt Runtime, fallback kernel.Kernel, logger *slog.Logger) *Kernel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kernel{runtime: rt, fallback: fallback, logger: logger}
}

// Variant implements kernel.Kernel.
func (*Kernel) Variant() kernel.Variant { return kernel.GPU }

// FellBack implements kernel.Fallbacker.
func (k *Kernel) FellBack() bool { return k.fellBack }

// Stats returns the resource counters accumulated so far.
func (k *Kernel) Stats() Stats { return k.stats }

// MatMul implements kernel.Kernel.
func (k *Kernel) MatMul(a, b, c []float32, m, n, kd int) {
	s := matrix.Shape{M: m, N: n, K: kd}
	if err := s.CheckBuffers(a, b, c); err != nil {
		panic(fmt.Sprintf("webgpu: %v", err))
	}

	if err := k.offload(a, b, c, m, n, kd); err != nil {
		k.stats.Fallbacks++
		k.fellBack = true
		if !k.warned {
			k.logger.Warn("gpu offload failed, using fallback",
				"fallback", k.fallback.Variant(), "error", err)
			k.warned = true
		}
		k.fallback.MatMul(a, b, c, m, n, kd)
		return
	}
	k.fellBack = false
}

func (k *Kernel) offload(a, b, c []float32, m, n, kd int) (err error) {
	if k.runtime == nil {
		return ErrNoDevice
	}

	dev, err := k.runtime.Open()
	if err != nil {
		return fmt.Errorf("webgpu: open: %w", err)
	}
	if dev == nil {
		return fmt.Errorf("webgpu: open returned a nil device: %w", ErrNoDevice)
	}
	k.stats.Opens++
	defer func() {
		k.stats.Closes++
		if cerr := dev.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("webgpu: close: %w", cerr)
		}
	}()

	bufA, err := k.alloc(dev, len(a))
	if err != nil {
		return err
	}
	defer k.free(dev, bufA, &err)

	bufB, err := k.alloc(dev, len(b))
	if err != nil {
		return err
	}
	defer k.free(dev, bufB, &err)

	bufC, err := k.alloc(dev, len(c))
	if err != nil {
		return err
	}
	defer k.free(dev, bufC, &err)

	if err := dev.Upload(bufA, a); err != nil {
		return fmt.Errorf("webgpu: upload A: %w", err)
	}
	if err := dev.Upload(bufB, b); err != nil {
		return fmt.Errorf("webgpu: upload B: %w", err)
	}

	grid := GridFor(m, n)
	if err := dev.Launch(bufA, bufB, bufC, m, n, kd, grid); err != nil {
		return fmt.Errorf("webgpu: launch %dx%d: %w", grid.X, grid.Y, err)
	}
	k.stats.Launches++

	if err := dev.Download(c, bufC); err != nil {
		return fmt.Errorf("webgpu: download C: %w", err)
	}
	return nil
}

func (k *Kernel) alloc(dev Device, elems int) (Buffer, error) {
	buf, err := dev.Alloc(elems)
	if err != nil {
		return nil, fmt.Errorf("webgpu: alloc %d elements: %w", elems, err)
	}
	if buf == nil {
		return nil, fmt.Errorf("webgpu: alloc %d elements: nil handle: %w", elems, ErrNoDevice)
	}
	k.stats.Allocs++
	return buf, nil
}

func (k *Kernel) free(dev Device, buf Buffer, errp *error) {
	k.stats.Frees++
	if err := dev.Free(buf); err != nil && *errp == nil {
		*errp = fmt.Errorf("webgpu: free: %w", err)
	}
}

// Probe reports whether rt can open a device right now.
func Probe(rt Runtime) (string, error) {
	if rt == nil {
		return "", ErrNoDevice
	}
	dev, err := rt.Open()
	if err != nil {
		return "", err
	}
	if dev == nil {
		return "", ErrNoDevice
	}
	name := dev.Name()
	return name, dev.Close()
}
