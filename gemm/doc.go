// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gemm benchmarks and validates single-precision GEMM kernels.
//
// # Overview
//
// Every kernel computes C = A x B for row-major float32 buffers, where A is
// M x K, B is K x N and C is M x N. Seven variants are available:
//   - naive: the scalar reference every other variant is graded against
//   - tiled, vectorized, parallel: pure Go cache-blocked kernels
//   - native: a compiled C routine, loaded from a shared library or built in
//   - blas: cblas_sgemm from BLIS, or the go-highway SIMD GEMM
//   - gpu: WebGPU compute offload with CPU fallback
//
// # Basic Usage
//
//	import "github.com/born-ml/matbench/gemm"
//
//	func main() {
//	    res, err := gemm.Benchmark(gemm.Shape{M: 256, N: 256, K: 256}, gemm.DefaultOptions())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    p := res.PrimaryResult()
//	    fmt.Printf("%s: %.2f GFLOP/s, passed=%v\n", p.Variant, p.GFLOPS, p.Check.Passed)
//	}
//
// Single multiplications go through Kernel values from a Suite:
//
//	suite := gemm.NewSuite(gemm.DefaultSuiteOptions())
//	defer suite.Close()
//	k, _ := suite.Kernel(gemm.Tiled)
//	k.MatMul(a, b, c, m, n, kd)
//
// # Correctness
//
// Outputs are compared element-wise with the naive output. A variant passes
// when its maximum absolute error is strictly below the tolerance (1e-3 by
// default). Fingerprint hashes an output buffer for cross-run comparison.
package gemm
