package cpu

import "github.com/born-ml/matbench/internal/kernel"

// LaneWidth is the number of output columns accumulated together.
const LaneWidth = 4

// Vectorized keeps the tiled loop nest but walks each output row of a tile
// LaneWidth columns at a time. The lane accumulator lives in registers while
// l streams over the k-block, then the lanes are added into C.
type Vectorized struct {
	block int
}

// NewVectorized returns a lane-vectorized kernel with the given block edge.
func NewVectorized(block int) *Vectorized {
	return &Vectorized{block: ClampBlock(block)}
}

// Block returns the cube edge in elements.
func (v *Vectorized) Block() int { return v.block }

// Variant implements kernel.Kernel.
func (*Vectorized) Variant() kernel.Variant { return kernel.Vectorized }

// MatMul implements kernel.Kernel.
func (v *Vectorized) MatMul(a, b, c []float32, m, n, k int) {
	checkOperands("vectorized", a, b, c, m, n, k)
	matmulVectorized(a, b, c[:m*n], m, n, k, v.block)
}

func matmulVectorized(a, b, c []float32, m, n, k, bs int) {
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

					j := jj
					for ; j+LaneWidth <= jEnd; j += LaneWidth {
						var acc [LaneWidth]float32
						for l := kk; l < kEnd; l++ {
							av := aRow[l]
							bv := b[l*n+j : l*n+j+LaneWidth : l*n+j+LaneWidth]
							acc[0] += av * bv[0]
							acc[1] += av * bv[1]
							acc[2] += av * bv[2]
							acc[3] += av * bv[3]
						}
						cv := cRow[j : j+LaneWidth : j+LaneWidth]
						cv[0] += acc[0]
						cv[1] += acc[1]
						cv[2] += acc[2]
						cv[3] += acc[3]
					}

					// Tail shorter than a full lane: flush only the valid lanes.
					if tail := jEnd - j; tail > 0 {
						var acc [LaneWidth]float32
						for l := kk; l < kEnd; l++ {
							av := aRow[l]
							bRow := b[l*n+j : l*n+jEnd]
							for x, bv := range bRow {
								acc[x] += av * bv
							}
						}
						for x := 0; x < tail; x++ {
							cRow[j+x] += acc[x]
						}
					}
				}
			}
		}
	}
}
