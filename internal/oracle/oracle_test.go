package oracle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxAbsError(t *testing.T) {
	got, err := MaxAbsError([]float32{1, 2, 3.5}, []float32{1, 2.25, 3})
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), got)

	got, err = MaxAbsError([]float32{1, 2}, []float32{1, 2})
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = MaxAbsError([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}

func TestMaxAbsError_NaNSaturates(t *testing.T) {
	got, err := MaxAbsError([]float32{float32(math.NaN()), 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(math.MaxFloat32), got)
}

func TestFingerprint_KnownValue(t *testing.T) {
	// sha256 of the empty input.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(nil))

	// 1.0f is 0x3f800000, little-endian 00 00 80 3f.
	assert.Equal(t, Fingerprint([]float32{1}), Fingerprint([]float32{math.Float32frombits(0x3f800000)}))
	assert.Len(t, Fingerprint([]float32{1}), 64)
}

func TestFingerprint_Deterministic(t *testing.T) {
	buf := make([]float32, 5000) // spans more than one internal chunk
	for i := range buf {
		buf[i] = float32(i) * 0.25
	}
	other := append([]float32(nil), buf...)

	assert.Equal(t, Fingerprint(buf), Fingerprint(buf))
	assert.Equal(t, Fingerprint(buf), Fingerprint(other), "hash must not depend on buffer identity")
}

func TestFingerprint_OneBitSensitivity(t *testing.T) {
	buf := make([]float32, 1500)
	for i := range buf {
		buf[i] = float32(i%100) / 100
	}
	base := Fingerprint(buf)

	for _, idx := range []int{0, 511, 1023, 1024, len(buf) - 1} {
		flipped := append([]float32(nil), buf...)
		flipped[idx] = math.Float32frombits(math.Float32bits(flipped[idx]) ^ 1)
		assert.NotEqual(t, base, Fingerprint(flipped), "flip at %d", idx)
	}
}

func TestFingerprint_OrderMatters(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]float32{1, 2}), Fingerprint([]float32{2, 1}))
}

func TestCheck(t *testing.T) {
	ref := []float32{1, 2, 3, 4}

	tests := []struct {
		name   string
		cand   []float32
		passed bool
	}{
		{"identical", []float32{1, 2, 3, 4}, true},
		{"below tolerance", []float32{1, 2.0005, 3, 4}, true},
		{"above tolerance", []float32{1, 2, 3.01, 4}, false},
		{"nan", []float32{1, 2, float32(math.NaN()), 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Check(tt.cand, ref, DefaultTolerance)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, Fingerprint(tt.cand), res.Hash)
		})
	}
}

func TestCheck_ToleranceIsStrict(t *testing.T) {
	res, err := Check([]float32{1.5}, []float32{1}, 0.5)
	require.NoError(t, err)
	assert.False(t, res.Passed, "error equal to tolerance must fail")
}

func TestCheck_LengthMismatch(t *testing.T) {
	_, err := Check([]float32{1, 2}, []float32{1}, DefaultTolerance)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	ref := []float32{1, 2, 0, 4}
	cand := []float32{1, 2.5, 0.125, 4}

	c, err := Compare(cand, ref)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), c.MaxAbsError)
	assert.Equal(t, 1, c.WorstIndex)
	assert.Equal(t, float32(0.25), c.MaxRelError, "relative error skips zero references")
	assert.Equal(t, 2, c.Mismatches)
	assert.Positive(t, c.MaxULP)

	same, err := Compare(ref, ref)
	require.NoError(t, err)
	assert.Equal(t, Comparison{WorstIndex: -1}, same)
}

func TestULPDistance(t *testing.T) {
	one := float32(1)
	next := math.Float32frombits(math.Float32bits(one) + 1)
	smallest := math.Float32frombits(1)

	tests := []struct {
		a, b float32
		want int64
	}{
		{one, one, 0},
		{one, next, 1},
		{next, one, 1},
		{smallest, -smallest, 2},
		{0, float32(math.Copysign(0, -1)), 0},
		{one, float32(math.NaN()), math.MaxInt32},
		{one, float32(math.Inf(1)), math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ULPDistance(tt.a, tt.b), "ULPDistance(%v, %v)", tt.a, tt.b)
	}
}
