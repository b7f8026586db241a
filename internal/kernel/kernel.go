// Package kernel defines the contract shared by every GEMM implementation.
package kernel

import (
	"fmt"
	"strings"
)

// Kernel computes C = A x B for row-major f32 buffers.
//
// A is [m, k], B is [k, n] and C is [m, n]. MatMul must write every element
// of c and must not read c before writing it, so callers may pass a buffer
// holding arbitrary values. Buffer sizes are validated by the caller.
type Kernel interface {
	Variant() Variant
	MatMul(a, b, c []float32, m, n, k int)
}

// Fallbacker is implemented by kernels that may degrade to an in-process
// algorithm (native routine missing, device unavailable).
type Fallbacker interface {
	// FellBack reports whether the most recent MatMul used the fallback path.
	FellBack() bool
}

// Variant names one multiplication strategy.
type Variant int

// Variants in canonical report order.
const (
	Naive Variant = iota
	Tiled
	Vectorized
	Parallel
	Native
	BLAS
	GPU
)

var variantNames = [...]string{
	Naive:      "naive",
	Tiled:      "tiled",
	Vectorized: "vectorized",
	Parallel:   "parallel",
	Native:     "native",
	BLAS:       "blas",
	GPU:        "gpu",
}

// String returns the lowercase variant name.
func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variantNames[v]
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(variantNames) {
		return nil, fmt.Errorf("kernel: unknown variant %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant accepts a variant name, case-insensitively.
// "optimized" is accepted as an alias of native and "blis" of blas.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "optimized", "native-optimized":
		return Native, nil
	case "blis", "blas-like":
		return BLAS, nil
	}
	for i, n := range variantNames {
		if n == name {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("kernel: unknown variant %q", s)
}

// AllVariants returns every variant in canonical order.
func AllVariants() []Variant {
	return []Variant{Naive, Tiled, Vectorized, Parallel, Native, BLAS, GPU}
}
