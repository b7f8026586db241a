package cpu

import "github.com/born-ml/matbench/internal/kernel"

const (
	// DefaultBlock is the cube edge used when none is configured.
	DefaultBlock = 64

	maxBlock = 256
)

// ClampBlock bounds a configured block edge to [1, 256]; 0 selects DefaultBlock.
func ClampBlock(v int) int {
	switch {
	case v == 0:
		return DefaultBlock
	case v < 1:
		return 1
	case v > maxBlock:
		return maxBlock
	}
	return v
}

// Tiled is the cache-blocked kernel. The i, j and l loops are split into
// cubes of edge Block so the working set of one cube stays cache resident.
// Partial sums accumulate into C across l-blocks, so C is cleared first.
type Tiled struct {
	block int
}

// NewTiled returns a cache-blocked kernel with the given block edge.
func NewTiled(block int) *Tiled {
	return &Tiled{block: ClampBlock(block)}
}

// Block returns the cube edge in elements.
func (t *Tiled) Block() int { return t.block }

// Variant implements kernel.Kernel.
func (*Tiled) Variant() kernel.Variant { return kernel.Tiled }

// MatMul implements kernel.Kernel.
func (t *Tiled) MatMul(a, b, c []float32, m, n, k int) {
	checkOperands("tiled", a, b, c, m, n, k)
	matmulTiled(a, b, c[:m*n], m, n, k, t.block)
}

func matmulTiled(a, b, c []float32, m, n, k, bs int) {
	zero(c)

	for ii := 0; ii < m; ii += bs {
		iEnd := min(ii+bs, m)
		for jj := 0; jj < n; jj += bs {
			jEnd := min(jj+bs, n)
			for kk := 0; kk < k; kk += bs {
				kEnd := min(kk+bs, k)

				for i := ii; i < iEnd; i++ {
					aRow := a[i*k : i*k+k]
					cRow := c[i*n : i*n+n]
					for j := jj; j < jEnd; j++ {
						sum := cRow[j]
						for l := kk; l < kEnd; l++ {
							sum += aRow[l] * b[l*n+j]
						}
						cRow[j] = sum
					}
				}
			}
		}
	}
}
