// Package cpu implements the in-process GEMM kernels: the naive reference,
// cache-blocked, lane-vectorized and row-parallel variants.
package cpu

import (
	"fmt"

	"github.com/born-ml/matbench/internal/kernel"
)

// Naive is the reference kernel every other variant is graded against.
// It is deliberately unoptimized: i-j-l order, one scalar accumulator per
// output cell, no blocking.
type Naive struct{}

// NewNaive returns the reference kernel.
func NewNaive() *Naive { return &Naive{} }

// Variant implements kernel.Kernel.
func (*Naive) Variant() kernel.Variant { return kernel.Naive }

// MatMul performs naive matrix multiplication.
// C[i,j] = sum_l A[i,l] * B[l,j]
func (*Naive) MatMul(a, b, c []float32, m, n, k int) {
	checkOperands("naive", a, b, c, m, n, k)
	matmulNaive(a, b, c, m, n, k)
}

func matmulNaive(a, b, c []float32, m, n, k int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := float32(0)
			for l := 0; l < k; l++ {
				sum += a[i*k+l] * b[l*n+j]
			}
			c[i*n+j] = sum
		}
	}
}

// checkOperands panics when the buffers cannot hold an m x n x k product.
// Kernels are only reached after the harness validated the shape, so a
// mismatch here is a programming error.
func checkOperands(name string, a, b, c []float32, m, n, k int) {
	if m <= 0 || n <= 0 || k <= 0 {
		panic(fmt.Sprintf("%s: invalid shape M=%d N=%d K=%d", name, m, n, k))
	}
	if len(a) < m*k || len(b) < k*n || len(c) < m*n {
		panic(fmt.Sprintf("%s: buffer too small for [%d,%d] @ [%d,%d]: len(a)=%d len(b)=%d len(c)=%d",
			name, m, k, k, n, len(a), len(b), len(c)))
	}
}

// zero clears c.
func zero(c []float32) {
	for i := range c {
		c[i] = 0
	}
}
