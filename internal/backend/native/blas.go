package native

import (
	"fmt"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
	"github.com/born-ml/matbench/internal/parallel"
)

// BLAS is the blas variant: single-precision GEMM from an optimized library.
// Builds with cgo and the blis tag link cblas_sgemm from BLIS; every other
// build uses go-highway's SIMD-dispatched matmul on the shared worker pool.
type BLAS struct {
	pool *parallel.Pool
}

// NewBLAS returns the BLAS-like kernel. pool may be nil for single-threaded use.
func NewBLAS(pool *parallel.Pool) *BLAS {
	return &BLAS{pool: pool}
}

// Library names the implementation compiled into this build.
func (*BLAS) Library() string { return blasLibrary }

// Variant implements kernel.Kernel.
func (*BLAS) Variant() kernel.Variant { return kernel.BLAS }

// MatMul implements kernel.Kernel.
func (x *BLAS) MatMul(a, b, c []float32, m, n, k int) {
	s := matrix.Shape{M: m, N: n, K: k}
	if err := s.CheckBuffers(a, b, c); err != nil {
		panic(fmt.Sprintf("blas: %v", err))
	}
	clear(c)
	sgemm(x.pool, a, b, c, m, n, k)
}
