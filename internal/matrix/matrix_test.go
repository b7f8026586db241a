package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_Validate(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"square", Shape{M: 4, N: 4, K: 4}, false},
		{"rectangular", Shape{M: 2, N: 3, K: 1}, false},
		{"zero M", Shape{M: 0, N: 3, K: 1}, true},
		{"negative K", Shape{M: 2, N: 3, K: -1}, true},
		{"zero N", Shape{M: 2, N: 0, K: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidShape))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestShape_Counts(t *testing.T) {
	s := Shape{M: 2, N: 3, K: 4}

	assert.Equal(t, 8, s.SizeA())
	assert.Equal(t, 12, s.SizeB())
	assert.Equal(t, 6, s.SizeC())
	assert.Equal(t, uint64(48), s.FLOPs())
	assert.Equal(t, uint64((8+12+6)*4), s.Bytes())
	assert.Equal(t, "2x3x4", s.String())
}

func TestShape_FLOPsNoOverflow(t *testing.T) {
	s := Shape{M: 65536, N: 65536, K: 65536}
	assert.Equal(t, uint64(2)<<48, s.FLOPs())
}

func TestShape_CheckBuffers(t *testing.T) {
	s := Shape{M: 2, N: 3, K: 4}

	require.NoError(t, s.CheckBuffers(make([]float32, 8), make([]float32, 12), make([]float32, 6)))
	assert.Error(t, s.CheckBuffers(make([]float32, 7), make([]float32, 12), make([]float32, 6)))
	assert.Error(t, s.CheckBuffers(make([]float32, 8), make([]float32, 13), make([]float32, 6)))
	assert.Error(t, s.CheckBuffers(make([]float32, 8), make([]float32, 12), make([]float32, 5)))
	assert.Error(t, Shape{}.CheckBuffers(nil, nil, nil))
}

func TestDefaultShape(t *testing.T) {
	assert.Equal(t, Shape{M: 1024, N: 1024, K: 1024}, DefaultShape())
}

func TestFromSlice(t *testing.T) {
	d, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())
	assert.Equal(t, 3, d.Cols())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, d.Data())

	_, err = FromSlice([]float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)

	_, err = FromSlice(nil, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestShape_Operands(t *testing.T) {
	s := Shape{M: 2, N: 3, K: 4}
	a, b := make([]float32, 8), make([]float32, 12)

	am, bm, err := s.Operands(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, am.Rows())
	assert.Equal(t, 4, am.Cols())
	assert.Equal(t, 4, bm.Rows())
	assert.Equal(t, 3, bm.Cols())

	_, _, err = s.Operands(a[:7], b)
	assert.ErrorContains(t, err, "A:")
	_, _, err = s.Operands(a, append(b, 0))
	assert.ErrorContains(t, err, "B:")
	_, _, err = Shape{M: 0, N: 3, K: 4}.Operands(a, b)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestGenerate(t *testing.T) {
	a, b, err := Generate(Shape{M: 3, N: 5, K: 20})
	require.NoError(t, err)

	assert.Equal(t, 3, a.Rows())
	assert.Equal(t, 20, a.Cols())
	assert.Equal(t, 20, b.Rows())
	assert.Equal(t, 5, b.Cols())

	assert.Equal(t, float32(0), a.Data()[0])
	assert.Equal(t, float32(7)/100, a.Data()[1])
	assert.Equal(t, float32(98)/100, a.Data()[14]) // 14*7 = 98
	assert.Equal(t, float32(5)/100, a.Data()[15])  // 15*7 = 105
	assert.Equal(t, float32(11)/100, b.Data()[1])
	assert.Equal(t, float32(10)/100, b.Data()[10]) // 110 mod 100

	a2, b2, err := Generate(Shape{M: 3, N: 5, K: 20})
	require.NoError(t, err)
	assert.Equal(t, a.Data(), a2.Data(), "generation must be deterministic")
	assert.Equal(t, b.Data(), b2.Data(), "generation must be deterministic")
}

func TestGenerate_InvalidShape(t *testing.T) {
	_, _, err := Generate(Shape{M: 1, N: 0, K: 1})
	assert.ErrorIs(t, err, ErrInvalidShape)
}
