package cpu

import (
	"fmt"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/parallel"
)

// Parallel partitions the rows of C into disjoint ranges and runs the
// cache-blocked kernel on each range concurrently. Every worker writes only
// its own rows, so no synchronization is needed beyond the final join.
type Parallel struct {
	block int
	pool  *parallel.Pool
}

// NewParallel returns a row-parallel kernel running on pool. The pool is
// owned by the caller; a nil pool computes the ranges sequentially.
func NewParallel(block int, pool *parallel.Pool) *Parallel {
	return &Parallel{
		block: ClampBlock(block),
		pool:  pool,
	}
}

// Pool returns the worker pool the kernel runs on.
func (p *Parallel) Pool() *parallel.Pool { return p.pool }

// Variant implements kernel.Kernel.
func (*Parallel) Variant() kernel.Variant { return kernel.Parallel }

// MatMul implements kernel.Kernel.
func (p *Parallel) MatMul(a, b, c []float32, m, n, k int) {
	checkOperands("parallel", a, b, c, m, n, k)

	cfg := parallel.Config{}
	if p.pool != nil {
		cfg = p.pool.Config()
	}
	ranges := parallel.Plan(m, cfg)
	if err := parallel.Verify(ranges, m); err != nil {
		panic(fmt.Sprintf("parallel: bad row partition: %v", err))
	}

	p.pool.Run(ranges, func(r parallel.Range) {
		rows := r.Len()
		matmulTiled(
			a[r.Start*k:r.End*k],
			b,
			c[r.Start*n:r.End*n],
			rows, n, k, p.block,
		)
	})
}
