// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gemm

import (
	"errors"

	"github.com/born-ml/matbench/internal/bench"
	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
	"github.com/born-ml/matbench/internal/oracle"
)

// Shape is the M x N x K problem size.
type Shape = matrix.Shape

// Kernel computes C = A x B.
type Kernel = kernel.Kernel

// Variant names a multiplication strategy.
type Variant = kernel.Variant

// Variants in canonical order.
const (
	Naive      = kernel.Naive
	Tiled      = kernel.Tiled
	Vectorized = kernel.Vectorized
	Parallel   = kernel.Parallel
	Native     = kernel.Native
	BLAS       = kernel.BLAS
	GPU        = kernel.GPU
)

// DefaultTolerance is the maximum absolute error a variant may show.
const DefaultTolerance = oracle.DefaultTolerance

// ErrInvalidShape is returned for non-positive dimensions.
var ErrInvalidShape = matrix.ErrInvalidShape

type (
	// Config holds run counts, tolerance and the primary variant.
	Config = bench.Config
	// SuiteOptions selects and configures kernels.
	SuiteOptions = bench.SuiteOptions
	// Suite owns a set of kernels.
	Suite = bench.Suite
	// Result is the outcome of one benchmark.
	Result = bench.Result
	// VariantResult is the timing and grading of one variant.
	VariantResult = bench.VariantResult
	// Metrics are derived from the primary variant's latency.
	Metrics = bench.Metrics
	// Check is the oracle verdict for one output.
	Check = oracle.Result
)

// Options combines harness and suite settings for Benchmark.
type Options struct {
	Config Config
	Suite  SuiteOptions
}

// DefaultOptions benchmarks every variant with native as primary.
func DefaultOptions() Options {
	return Options{Config: bench.DefaultConfig(), Suite: bench.DefaultSuiteOptions()}
}

// DefaultConfig returns the default harness configuration.
func DefaultConfig() Config { return bench.DefaultConfig() }

// DefaultSuiteOptions builds every variant with default settings.
func DefaultSuiteOptions() SuiteOptions { return bench.DefaultSuiteOptions() }

// NewSuite builds the kernels named in opts. Call Close when done.
func NewSuite(opts SuiteOptions) *Suite { return bench.NewSuite(opts) }

// ParseVariant accepts a variant name, case-insensitively.
func ParseVariant(s string) (Variant, error) { return kernel.ParseVariant(s) }

// AllVariants returns every variant in canonical order.
func AllVariants() []Variant { return kernel.AllVariants() }

// Inputs returns the deterministic A and B buffers for s.
func Inputs(s Shape) (a, b []float32, err error) {
	da, db, err := matrix.Generate(s)
	if err != nil {
		return nil, nil, err
	}
	return da.Data(), db.Data(), nil
}

// Benchmark generates inputs for s, times every selected variant and grades
// each one against naive. The primary variant is always included.
func Benchmark(s Shape, opts Options) (res *Result, err error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	h, err := bench.NewHarness(opts.Config, opts.Suite.Logger)
	if err != nil {
		return nil, err
	}
	a, b, err := Inputs(s)
	if err != nil {
		return nil, err
	}

	so := opts.Suite
	so.Variants = append(append([]Variant(nil), so.Variants...), opts.Config.Primary)
	suite := bench.NewSuite(so)
	defer func() {
		err = errors.Join(err, suite.Close())
	}()
	return h.Run(suite.Kernels(), a, b, s)
}

// Verify compares candidate with reference under tol.
func Verify(candidate, reference []float32, tol float32) (Check, error) {
	return oracle.Check(candidate, reference, tol)
}

// Fingerprint returns the SHA-256 hex digest of buf.
func Fingerprint(buf []float32) string { return oracle.Fingerprint(buf) }
