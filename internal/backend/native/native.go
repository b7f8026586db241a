// Package native provides the GEMM variants that run outside the Go kernels:
// a C routine reached through cgo or a pure Go FFI loader, and a BLAS-like
// library.
package native

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
)

// DefaultSymbol is the exported name of the foreign GEMM entry point.
const DefaultSymbol = "matmul_kernel_c"

// ErrUnavailable is returned when no foreign routine can be resolved in this build.
var ErrUnavailable = errors.New("native: routine unavailable")

// Config selects the foreign routine.
type Config struct {
	// Library is a shared library path. Empty selects the routine compiled
	// into the binary, when the build has one.
	Library string
	// Symbol is the entry point looked up in Library.
	Symbol string
}

// DefaultConfig returns a config that uses the built-in routine.
func DefaultConfig() Config {
	return Config{Symbol: DefaultSymbol}
}

// Routine is a foreign f32 GEMM with the C signature
//
//	void f(const float *a, const float *b, float *c, size_t m, size_t n, size_t k)
//
// Call expects exact buffer sizes and C cleared to zero.
type Routine interface {
	Name() string
	Call(a, b, c []float32, m, n, k int) error
	Close() error
}

// Open resolves the routine described by cfg.
func Open(cfg Config) (Routine, error) {
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	r, err := openRoutine(cfg)
	if err != nil {
		name := cfg.Library
		if name == "" {
			name = "builtin"
		}
		return nil, fmt.Errorf("native: open %s: %w", name, err)
	}
	return r, nil
}

// Kernel is the native variant. It dispatches to a foreign routine and
// degrades to an in-process kernel when the routine is missing or fails.
type Kernel struct {
	routine  Routine
	fallback kernel.Kernel
	logger   *slog.Logger

	fellBack bool
	warned   bool
}

// NewKernel wraps routine. A nil routine makes every call use fallback.
func NewKernel(routine Routine, fallback kernel.Kernel, logger *slog.Logger) *Kernel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kernel{routine: routine, fallback: fallback, logger: logger}
}

// Load opens the routine for cfg and wraps it. Open failures are logged and
// leave the kernel on its fallback path.
func Load(cfg Config, fallback kernel.Kernel, logger *slog.Logger) *Kernel {
	if logger == nil {
		logger = slog.Default()
	}
	r, err := Open(cfg)
	if err != nil {
		logger.Warn("native routine unavailable, using fallback",
			"fallback", fallback.Variant(), "error", err)
		return NewKernel(nil, fallback, logger)
	}
	logger.Info("native routine loaded", "routine", r.Name())
	return NewKernel(r, fallback, logger)
}

// Variant implements kernel.Kernel.
func (*Kernel) Variant() kernel.Variant { return kernel.Native }

// Routine returns the loaded routine, nil when running on the fallback.
func (k *Kernel) Routine() Routine { return k.routine }

// FellBack implements kernel.Fallbacker.
func (k *Kernel) FellBack() bool { return k.fellBack }

// MatMul implements kernel.Kernel.
func (k *Kernel) MatMul(a, b, c []float32, m, n, kd int) {
	s := matrix.Shape{M: m, N: n, K: kd}
	if err := s.CheckBuffers(a, b, c); err != nil {
		panic(fmt.Sprintf("native: %v", err))
	}

	if k.routine == nil {
		k.fellBack = true
		k.fallback.MatMul(a, b, c, m, n, kd)
		return
	}

	clear(c)
	if err := k.routine.Call(a, b, c, m, n, kd); err != nil {
		if !k.warned {
			k.logger.Warn("native routine failed, using fallback",
				"routine", k.routine.Name(), "fallback", k.fallback.Variant(), "error", err)
			k.warned = true
		}
		k.fellBack = true
		k.fallback.MatMul(a, b, c, m, n, kd)
		return
	}
	k.fellBack = false
}

// Close releases the routine.
func (k *Kernel) Close() error {
	if k.routine == nil {
		return nil
	}
	err := k.routine.Close()
	k.routine = nil
	return err
}
