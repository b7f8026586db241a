package bench

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/born-ml/matbench/internal/backend/cpu"
	"github.com/born-ml/matbench/internal/backend/native"
	"github.com/born-ml/matbench/internal/backend/webgpu"
	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/parallel"
)

// SuiteOptions selects and configures the kernels to benchmark.
type SuiteOptions struct {
	// Variants to build. Naive is always added as the reference.
	Variants []kernel.Variant
	// Block is the cube edge of the tiled, vectorized and parallel kernels.
	Block    int
	Parallel parallel.Config
	Native   native.Config
	// GPU enables device offload. When false the gpu variant always runs
	// its fallback.
	GPU bool
	// Runtime overrides webgpu.DefaultRuntime when GPU is set.
	Runtime webgpu.Runtime
	Logger  *slog.Logger
}

// DefaultSuiteOptions builds every variant with default settings.
func DefaultSuiteOptions() SuiteOptions {
	return SuiteOptions{
		Variants: kernel.AllVariants(),
		Block:    cpu.DefaultBlock,
		Parallel: parallel.DefaultConfig(),
		Native:   native.DefaultConfig(),
		GPU:      true,
	}
}

// Suite owns a set of kernels and the resources behind them.
type Suite struct {
	kernels []kernel.Kernel
	pool    *parallel.Pool
	closers []func() error
}

// NormalizeVariants de-duplicates vs, adds naive and sorts into canonical order.
func NormalizeVariants(vs []kernel.Variant) []kernel.Variant {
	out := lo.Uniq(append([]kernel.Variant{kernel.Naive}, vs...))
	slices.Sort(out)
	return out
}

// NewSuite builds the kernels named in opts.
func NewSuite(opts SuiteOptions) *Suite {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	variants := NormalizeVariants(opts.Variants)

	s := &Suite{}
	if lo.Contains(variants, kernel.Parallel) || lo.Contains(variants, kernel.BLAS) {
		s.pool = parallel.NewPool(opts.Parallel)
		s.closers = append(s.closers, func() error {
			s.pool.Close()
			return nil
		})
	}

	for _, v := range variants {
		switch v {
		case kernel.Naive:
			s.kernels = append(s.kernels, cpu.NewNaive())
		case kernel.Tiled:
			s.kernels = append(s.kernels, cpu.NewTiled(opts.Block))
		case kernel.Vectorized:
			s.kernels = append(s.kernels, cpu.NewVectorized(opts.Block))
		case kernel.Parallel:
			s.kernels = append(s.kernels, cpu.NewParallel(opts.Block, s.pool))
		case kernel.Native:
			nk := native.Load(opts.Native, cpu.NewTiled(opts.Block), logger)
			s.kernels = append(s.kernels, nk)
			s.closers = append(s.closers, nk.Close)
		case kernel.BLAS:
			s.kernels = append(s.kernels, native.NewBLAS(s.pool))
		case kernel.GPU:
			var rt webgpu.Runtime
			if opts.GPU {
				rt = opts.Runtime
				if rt == nil {
					rt = webgpu.DefaultRuntime()
				}
			}
			s.kernels = append(s.kernels, webgpu.NewKernel(rt, cpu.NewNaive(), logger))
		}
	}

	logger.Debug("suite assembled",
		"variants", lo.Map(s.kernels, func(k kernel.Kernel, _ int) string { return k.Variant().String() }),
		"block", cpu.ClampBlock(opts.Block),
		"workers", opts.Parallel.NumWorkers,
	)
	return s
}

// Kernels returns the kernels in canonical variant order.
func (s *Suite) Kernels() []kernel.Kernel { return s.kernels }

// Variants returns the variants of the kernels.
func (s *Suite) Variants() []kernel.Variant {
	return lo.Map(s.kernels, func(k kernel.Kernel, _ int) kernel.Variant { return k.Variant() })
}

// Kernel returns the kernel for v.
func (s *Suite) Kernel(v kernel.Variant) (kernel.Kernel, bool) {
	return lo.Find(s.kernels, func(k kernel.Kernel) bool { return k.Variant() == v })
}

// Close releases native libraries and stops the worker pool, in reverse
// order of acquisition.
func (s *Suite) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
