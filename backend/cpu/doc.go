// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go f32 GEMM kernels.
//
// # Overview
//
// Four kernels compute C = A x B for row-major buffers:
//   - Naive: i-j-l loops with one accumulator per cell, the reference
//   - Tiled: cache blocking over cubes of a configurable edge
//   - Vectorized: tiled loops with a 4-lane accumulator over output columns
//   - Parallel: disjoint row ranges of C computed concurrently on a worker pool
//
// # Basic Usage
//
//	import "github.com/born-ml/matbench/backend/cpu"
//
//	func main() {
//	    a := []float32{1, 2, 3, 4} // 2x2
//	    b := []float32{5, 6, 7, 8} // 2x2
//	    c := make([]float32, 4)
//
//	    cpu.NewTiled(64).MatMul(a, b, c, 2, 2, 2)
//	}
//
// # Thread Safety
//
// Kernels hold no per-call state and may be shared. The Parallel kernel
// partitions its own work and must not be called concurrently with Close on
// its pool.
package cpu
