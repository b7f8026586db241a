// Package oracle grades kernel outputs against the naive reference.
package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// DefaultTolerance is the largest absolute element error that still passes.
const DefaultTolerance = 1e-3

// Result is the verdict for one output buffer.
type Result struct {
	MaxAbsError float32
	Hash        string
	Passed      bool
}

// MaxAbsError returns the largest |candidate[i] - reference[i]|.
// A NaN or infinite difference saturates to math.MaxFloat32.
func MaxAbsError(candidate, reference []float32) (float32, error) {
	if err := sameLength(candidate, reference); err != nil {
		return 0, err
	}
	var worst float32
	for i := range candidate {
		d := absDiff(candidate[i], reference[i])
		if d > worst {
			worst = d
		}
	}
	return worst, nil
}

// Fingerprint returns the lowercase hex SHA-256 of buf, hashed as the
// little-endian IEEE-754 bytes of each element in index order.
func Fingerprint(buf []float32) string {
	h := sha256.New()
	var chunk [4096]byte
	n := 0
	for _, v := range buf {
		binary.LittleEndian.PutUint32(chunk[n:], math.Float32bits(v))
		n += 4
		if n == len(chunk) {
			h.Write(chunk[:])
			n = 0
		}
	}
	h.Write(chunk[:n])
	return hex.EncodeToString(h.Sum(nil))
}

// Check grades candidate against reference. It passes iff the maximum
// absolute error is strictly below tol.
func Check(candidate, reference []float32, tol float32) (Result, error) {
	maxErr, err := MaxAbsError(candidate, reference)
	if err != nil {
		return Result{}, err
	}
	return Result{
		MaxAbsError: maxErr,
		Hash:        Fingerprint(candidate),
		Passed:      maxErr < tol,
	}, nil
}

// Comparison holds element-wise error statistics.
type Comparison struct {
	MaxAbsError float32
	MaxRelError float32
	MaxULP      int64
	WorstIndex  int // index of the largest absolute error, -1 when identical
	Mismatches  int // elements that are not bit-identical
}

// Compare computes absolute, relative and ULP error statistics.
// Relative error is measured only where the reference is non-zero.
func Compare(candidate, reference []float32) (Comparison, error) {
	if err := sameLength(candidate, reference); err != nil {
		return Comparison{}, err
	}
	c := Comparison{WorstIndex: -1}
	for i := range candidate {
		got, want := candidate[i], reference[i]
		if math.Float32bits(got) == math.Float32bits(want) {
			continue
		}
		c.Mismatches++

		d := absDiff(got, want)
		if d > c.MaxAbsError || c.WorstIndex < 0 {
			c.MaxAbsError = d
			c.WorstIndex = i
		}
		if want != 0 {
			rel := d / float32(math.Abs(float64(want)))
			if math.IsInf(float64(rel), 0) {
				rel = math.MaxFloat32
			}
			if rel > c.MaxRelError {
				c.MaxRelError = rel
			}
		}
		if u := ULPDistance(got, want); u > c.MaxULP {
			c.MaxULP = u
		}
	}
	return c, nil
}

// ULPDistance returns the number of representable float32 values between a
// and b. Values of opposite sign are measured through zero. NaN or a single
// infinity yields math.MaxInt32.
func ULPDistance(a, b float32) int64 {
	if a == b {
		return 0
	}
	fa, fb := float64(a), float64(b)
	if math.IsNaN(fa) || math.IsNaN(fb) || math.IsInf(fa, 0) || math.IsInf(fb, 0) {
		return math.MaxInt32
	}
	return abs64(ordered(a) - ordered(b))
}

// ordered maps float32 bits onto a line where adjacent floats differ by one.
func ordered(f float32) int64 {
	bits := math.Float32bits(f)
	if bits&0x80000000 != 0 {
		return -int64(bits & 0x7fffffff)
	}
	return int64(bits)
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func absDiff(a, b float32) float32 {
	d := math.Abs(float64(a) - float64(b))
	if math.IsNaN(d) || d > math.MaxFloat32 {
		return math.MaxFloat32
	}
	return float32(d)
}

func sameLength(candidate, reference []float32) error {
	if len(candidate) != len(reference) {
		return fmt.Errorf("oracle: length mismatch: candidate has %d elements, reference %d",
			len(candidate), len(reference))
	}
	return nil
}
