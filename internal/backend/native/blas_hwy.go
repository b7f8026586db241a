//go:build !(cgo && blis)

package native

import (
	"github.com/ajroetker/go-highway/hwy/contrib/matmul"

	"github.com/born-ml/matbench/internal/parallel"
)

const blasLibrary = "go-highway"

func sgemm(pool *parallel.Pool, a, b, c []float32, m, n, k int) {
	if pool == nil || pool.Workers() == nil {
		matmul.MatMulAutoFloat32(a, b, c, m, n, k)
		return
	}
	matmul.MatMulAutoWithPoolFloat32(pool.Workers(), a, b, c, m, n, k)
}
