package matrix

import (
	"errors"
	"fmt"
)

// BytesPerElement is the storage size of one f32 element.
const BytesPerElement = 4

// ErrInvalidShape is returned for shapes with non-positive dimensions.
var ErrInvalidShape = errors.New("invalid shape")

// Shape is a GEMM workload: A is [M, K], B is [K, N], C is [M, N].
type Shape struct {
	M int
	N int
	K int
}

// DefaultShape is used when no workload is supplied.
func DefaultShape() Shape {
	return Shape{M: 1024, N: 1024, K: 1024}
}

// Validate checks that every dimension is > 0.
func (s Shape) Validate() error {
	if s.M <= 0 || s.N <= 0 || s.K <= 0 {
		return fmt.Errorf("%w: M=%d N=%d K=%d (all must be > 0)", ErrInvalidShape, s.M, s.N, s.K)
	}
	return nil
}

// SizeA returns the element count of A.
func (s Shape) SizeA() int { return s.M * s.K }

// SizeB returns the element count of B.
func (s Shape) SizeB() int { return s.K * s.N }

// SizeC returns the element count of C.
func (s Shape) SizeC() int { return s.M * s.N }

// FLOPs returns the operation count of one multiplication (one multiply and one add per term).
func (s Shape) FLOPs() uint64 {
	//nolint:gosec // G115: dimensions are validated positive
	return 2 * uint64(s.M) * uint64(s.N) * uint64(s.K)
}

// Bytes returns the combined storage of A, B and C.
func (s Shape) Bytes() uint64 {
	//nolint:gosec // G115: dimensions are validated positive
	return uint64(s.SizeA()+s.SizeB()+s.SizeC()) * BytesPerElement
}

// CheckBuffers verifies that a, b and c hold exactly M*K, K*N and M*N elements.
// Every kernel dispatch and every foreign call is preceded by this check.
func (s Shape) CheckBuffers(a, b, c []float32) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if len(a) != s.SizeA() {
		return fmt.Errorf("matrix: A has %d elements, want %d (%dx%d)", len(a), s.SizeA(), s.M, s.K)
	}
	if len(b) != s.SizeB() {
		return fmt.Errorf("matrix: B has %d elements, want %d (%dx%d)", len(b), s.SizeB(), s.K, s.N)
	}
	if len(c) != s.SizeC() {
		return fmt.Errorf("matrix: C has %d elements, want %d (%dx%d)", len(c), s.SizeC(), s.M, s.N)
	}
	return nil
}

// Operands wraps a and b as the [M x K] and [K x N] inputs of s.
func (s Shape) Operands(a, b []float32) (am, bm *Dense, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if am, err = FromSlice(a, s.M, s.K); err != nil {
		return nil, nil, fmt.Errorf("A: %w", err)
	}
	if bm, err = FromSlice(b, s.K, s.N); err != nil {
		return nil, nil, fmt.Errorf("B: %w", err)
	}
	return am, bm, nil
}

// String formats the shape as MxNxK.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.M, s.N, s.K)
}
