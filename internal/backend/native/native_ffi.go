//go:build !cgo && (linux || darwin || freebsd || windows) && (amd64 || arm64)

package native

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// Without cgo there is no compiled-in kernel; the routine must come from a
// shared library loaded through goffi.
func openRoutine(cfg Config) (Routine, error) {
	if cfg.Library == "" {
		return nil, fmt.Errorf("no library configured and no builtin kernel without cgo: %w", ErrUnavailable)
	}

	handle, err := ffi.LoadLibrary(cfg.Library)
	if err != nil {
		return nil, fmt.Errorf("load library: %v: %w", err, ErrUnavailable)
	}

	fn, err := ffi.GetSymbol(handle, cfg.Symbol)
	if err != nil {
		_ = ffi.FreeLibrary(handle)
		return nil, fmt.Errorf("symbol %s: %v: %w", cfg.Symbol, err, ErrUnavailable)
	}

	r := &ffiRoutine{path: cfg.Library, symbol: cfg.Symbol, handle: handle, fn: fn}
	err = ffi.PrepareCallInterface(&r.cif, types.DefaultCall, types.VoidTypeDescriptor, []*types.TypeDescriptor{
		types.PointerTypeDescriptor, // a
		types.PointerTypeDescriptor, // b
		types.PointerTypeDescriptor, // c
		types.UInt64TypeDescriptor,  // m
		types.UInt64TypeDescriptor,  // n
		types.UInt64TypeDescriptor,  // k
	})
	if err != nil {
		_ = ffi.FreeLibrary(handle)
		return nil, fmt.Errorf("prepare call interface: %w", err)
	}
	return r, nil
}

// ffiRoutine is a symbol resolved from a shared library with goffi.
type ffiRoutine struct {
	path   string
	symbol string
	handle unsafe.Pointer
	fn     unsafe.Pointer
	cif    types.CallInterface
}

func (r *ffiRoutine) Name() string { return r.path + ":" + r.symbol }

func (r *ffiRoutine) Call(a, b, c []float32, m, n, k int) error {
	if r.fn == nil {
		return fmt.Errorf("%s: closed: %w", r.Name(), ErrUnavailable)
	}

	aPtr := unsafe.Pointer(&a[0])
	bPtr := unsafe.Pointer(&b[0])
	cPtr := unsafe.Pointer(&c[0])
	//nolint:gosec // G115: dimensions are validated positive
	mm, nn, kk := uint64(m), uint64(n), uint64(k)

	err := ffi.CallFunction(&r.cif, r.fn, nil, []unsafe.Pointer{
		unsafe.Pointer(&aPtr),
		unsafe.Pointer(&bPtr),
		unsafe.Pointer(&cPtr),
		unsafe.Pointer(&mm),
		unsafe.Pointer(&nn),
		unsafe.Pointer(&kk),
	})
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	runtime.KeepAlive(c)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Name(), err)
	}
	return nil
}

func (r *ffiRoutine) Close() error {
	if r.handle == nil {
		return nil
	}
	err := ffi.FreeLibrary(r.handle)
	r.handle, r.fn = nil, nil
	if err != nil {
		return fmt.Errorf("free %s: %w", r.path, err)
	}
	return nil
}
