// Package bench times GEMM kernels, grades their outputs against the naive
// reference and derives throughput, bandwidth and speedup figures.
package bench

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/oracle"
)

// Config controls how many times each variant runs and how results are graded.
type Config struct {
	WarmupRuns   int     // Discarded runs before timing.
	BenchRuns    int     // Timed runs per variant.
	BaselineRuns int     // Timed runs for reduced variants.
	Tolerance    float32 // Largest passing absolute error.
	PeakGFLOPS   float64 // Nominal peak used for compute efficiency.

	// Primary is the variant whose latency feeds the headline metrics.
	Primary kernel.Variant
	// Reduced variants skip warmup and run BaselineRuns times.
	Reduced []kernel.Variant
}

// DefaultConfig returns the standard benchmark settings.
func DefaultConfig() Config {
	return Config{
		WarmupRuns:   3,
		BenchRuns:    5,
		BaselineRuns: 1,
		Tolerance:    oracle.DefaultTolerance,
		PeakGFLOPS:   100,
		Primary:      kernel.Native,
		Reduced:      []kernel.Variant{kernel.Naive},
	}
}

// Validate rejects settings the harness cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.WarmupRuns < 0 {
		errs = append(errs, fmt.Errorf("warmup runs must be >= 0, got %d", c.WarmupRuns))
	}
	if c.BenchRuns < 1 {
		errs = append(errs, fmt.Errorf("bench runs must be >= 1, got %d", c.BenchRuns))
	}
	if c.BaselineRuns < 1 {
		errs = append(errs, fmt.Errorf("baseline runs must be >= 1, got %d", c.BaselineRuns))
	}
	if !(c.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("tolerance must be > 0, got %g", c.Tolerance))
	}
	if !(c.PeakGFLOPS > 0) {
		errs = append(errs, fmt.Errorf("peak GFLOP/s must be > 0, got %g", c.PeakGFLOPS))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("bench: invalid config: %w", err)
	}
	return nil
}

// IsReduced reports whether v runs with the reduced schedule.
func (c Config) IsReduced(v kernel.Variant) bool {
	return slices.Contains(c.Reduced, v)
}

// schedule returns the warmup and timed run counts for v.
func (c Config) schedule(v kernel.Variant) (warmup, runs int) {
	if c.IsReduced(v) {
		return 0, c.BaselineRuns
	}
	return c.WarmupRuns, c.BenchRuns
}
