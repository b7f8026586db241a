package matrix

import "fmt"

// Generate builds the benchmark operands from a fixed pattern so every run,
// on every machine, multiplies the same numbers:
//
//	A[i] = ((i*7) mod 100) / 100
//	B[i] = ((i*11) mod 100) / 100
func Generate(s Shape) (a, b *Dense, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("matrix: generate: %w", err)
	}

	aData := make([]float32, s.SizeA())
	for i := range aData {
		aData[i] = float32((i*7)%100) / 100
	}
	bData := make([]float32, s.SizeB())
	for i := range bData {
		bData[i] = float32((i*11)%100) / 100
	}

	return &Dense{data: aData, rows: s.M, cols: s.K}, &Dense{data: bData, rows: s.K, cols: s.N}, nil
}
