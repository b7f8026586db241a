//go:build cgo && (linux || darwin || freebsd)

package native

/*
#cgo CFLAGS: -O3
#cgo riscv64 CFLAGS: -march=rv64gcv
#cgo linux LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>

#define MB_TILE_M 4
#define MB_TILE_N 64
#define MB_TILE_K 64

typedef void (*mb_gemm_fn)(const float *, const float *, float *, size_t, size_t, size_t);

// C must be zeroed by the caller. Returns -1 when the pack buffers cannot be allocated.
static int mb_builtin_sgemm(const float *a, const float *b, float *c, size_t m, size_t n, size_t k) {
	float *pa = malloc(MB_TILE_M * MB_TILE_K * sizeof(float));
	float *pb = malloc(MB_TILE_K * MB_TILE_N * sizeof(float));
	if (pa == NULL || pb == NULL) {
		free(pa);
		free(pb);
		return -1;
	}

	for (size_t kk = 0; kk < k; kk += MB_TILE_K) {
		size_t kb = k - kk < MB_TILE_K ? k - kk : MB_TILE_K;
		for (size_t jj = 0; jj < n; jj += MB_TILE_N) {
			size_t nb = n - jj < MB_TILE_N ? n - jj : MB_TILE_N;
			for (size_t l = 0; l < kb; l++) {
				memcpy(pb + l * nb, b + (kk + l) * n + jj, nb * sizeof(float));
			}
			for (size_t ii = 0; ii < m; ii += MB_TILE_M) {
				size_t mb = m - ii < MB_TILE_M ? m - ii : MB_TILE_M;
				for (size_t i = 0; i < mb; i++) {
					memcpy(pa + i * kb, a + (ii + i) * k + kk, kb * sizeof(float));
				}
				for (size_t i = 0; i < mb; i++) {
					float *crow = c + (ii + i) * n + jj;
					const float *arow = pa + i * kb;
					for (size_t l = 0; l < kb; l++) {
						const float av = arow[l];
						const float *brow = pb + l * nb;
						size_t j = 0;
						for (; j + 4 <= nb; j += 4) {
							crow[j] += av * brow[j];
							crow[j + 1] += av * brow[j + 1];
							crow[j + 2] += av * brow[j + 2];
							crow[j + 3] += av * brow[j + 3];
						}
						for (; j < nb; j++) {
							crow[j] += av * brow[j];
						}
					}
				}
			}
		}
	}

	free(pa);
	free(pb);
	return 0;
}

static void *mb_dlopen(const char *path) { return dlopen(path, RTLD_NOW | RTLD_LOCAL); }

static const char *mb_dlerror(void) {
	const char *e = dlerror();
	return e != NULL ? e : "unknown dynamic loader error";
}

static void mb_call(void *fn, const float *a, const float *b, float *c, size_t m, size_t n, size_t k) {
	((mb_gemm_fn)fn)(a, b, c, m, n, k);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

func openRoutine(cfg Config) (Routine, error) {
	if cfg.Library == "" {
		return builtinRoutine{}, nil
	}

	path := C.CString(cfg.Library)
	defer C.free(unsafe.Pointer(path))
	handle := C.mb_dlopen(path)
	if handle == nil {
		return nil, fmt.Errorf("dlopen: %s: %w", C.GoString(C.mb_dlerror()), ErrUnavailable)
	}

	sym := C.CString(cfg.Symbol)
	defer C.free(unsafe.Pointer(sym))
	fn := C.dlsym(handle, sym)
	if fn == nil {
		msg := C.GoString(C.mb_dlerror())
		C.dlclose(handle)
		return nil, fmt.Errorf("dlsym %s: %s: %w", cfg.Symbol, msg, ErrUnavailable)
	}

	return &sharedRoutine{path: cfg.Library, symbol: cfg.Symbol, handle: handle, fn: fn}, nil
}

// builtinRoutine is the packed C kernel compiled into the binary.
type builtinRoutine struct{}

func (builtinRoutine) Name() string { return "builtin" }

func (builtinRoutine) Call(a, b, c []float32, m, n, k int) error {
	status := C.mb_builtin_sgemm(
		(*C.float)(unsafe.Pointer(&a[0])),
		(*C.float)(unsafe.Pointer(&b[0])),
		(*C.float)(unsafe.Pointer(&c[0])),
		C.size_t(m), C.size_t(n), C.size_t(k),
	)
	if status != 0 {
		return errors.New("builtin kernel: pack buffer allocation failed")
	}
	return nil
}

func (builtinRoutine) Close() error { return nil }

// sharedRoutine is a symbol resolved from a shared library with dlopen.
type sharedRoutine struct {
	path   string
	symbol string
	handle unsafe.Pointer
	fn     unsafe.Pointer
}

func (r *sharedRoutine) Name() string { return r.path + ":" + r.symbol }

func (r *sharedRoutine) Call(a, b, c []float32, m, n, k int) error {
	if r.fn == nil {
		return fmt.Errorf("%s: closed: %w", r.Name(), ErrUnavailable)
	}
	C.mb_call(r.fn,
		(*C.float)(unsafe.Pointer(&a[0])),
		(*C.float)(unsafe.Pointer(&b[0])),
		(*C.float)(unsafe.Pointer(&c[0])),
		C.size_t(m), C.size_t(n), C.size_t(k),
	)
	return nil
}

func (r *sharedRoutine) Close() error {
	if r.handle == nil {
		return nil
	}
	rc := C.dlclose(r.handle)
	r.handle, r.fn = nil, nil
	if rc != 0 {
		return fmt.Errorf("dlclose %s: %s", r.path, C.GoString(C.mb_dlerror()))
	}
	return nil
}
