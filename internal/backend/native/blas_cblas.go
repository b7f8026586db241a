//go:build cgo && blis

package native

/*
#cgo LDFLAGS: -lblis
#include <blis/cblas.h>
*/
import "C"

import (
	"unsafe"

	"github.com/born-ml/matbench/internal/parallel"
)

const blasLibrary = "blis"

// sgemm computes C = 1.0*A*B + 0.0*C, row-major, no transposes.
// BLIS manages its own threads; the pool is unused.
func sgemm(_ *parallel.Pool, a, b, c []float32, m, n, k int) {
	C.cblas_sgemm(
		C.CblasRowMajor, C.CblasNoTrans, C.CblasNoTrans,
		C.int(m), C.int(n), C.int(k),
		C.float(1), (*C.float)(unsafe.Pointer(&a[0])), C.int(k),
		(*C.float)(unsafe.Pointer(&b[0])), C.int(n),
		C.float(0), (*C.float)(unsafe.Pointer(&c[0])), C.int(n),
	)
}
