package cpu

import (
	"fmt"
	"math"
	"testing"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
	"github.com/born-ml/matbench/internal/parallel"
)

func testShapes() []matrix.Shape {
	return []matrix.Shape{
		{M: 1, N: 1, K: 1},
		{M: 2, N: 3, K: 1},
		{M: 3, N: 5, K: 7},
		{M: 17, N: 13, K: 9},
		{M: 64, N: 64, K: 64},
		{M: 65, N: 67, K: 63},
		{M: 100, N: 3, K: 130},
	}
}

// maxDiff returns the largest absolute element difference.
func maxDiff(a, b []float32) float64 {
	worst := 0.0
	for i := range a {
		d := math.Abs(float64(a[i]) - float64(b[i]))
		if d > worst || math.IsNaN(d) {
			worst = d
		}
	}
	return worst
}

func operands(t testing.TB, s matrix.Shape) (a, b []float32) {
	t.Helper()
	am, bm, err := matrix.Generate(s)
	if err != nil {
		t.Fatalf("Generate(%v): %v", s, err)
	}
	return am.Data(), bm.Data()
}

// nanFilled returns a buffer of size n where every element is NaN, so a
// kernel that leaves any cell unwritten is detected.
func nanFilled(n int) []float32 {
	c := make([]float32, n)
	nan := float32(math.NaN())
	for i := range c {
		c[i] = nan
	}
	return c
}

func TestNaive_Known(t *testing.T) {
	// [1 2]   [5 6]   [19 22]
	// [3 4] @ [7 8] = [43 50]
	a := []float32{1, 2, 3, 4}
	b := []float32{5, 6, 7, 8}
	c := make([]float32, 4)

	NewNaive().MatMul(a, b, c, 2, 2, 2)

	expected := []float32{19, 22, 43, 50}
	for i := range expected {
		if c[i] != expected[i] {
			t.Errorf("c[%d] = %f, expected %f", i, c[i], expected[i])
		}
	}
}

func TestNaive_OuterProduct(t *testing.T) {
	// K=1 degenerates into an outer product.
	a := []float32{1, 2}
	b := []float32{3, 4, 5}
	c := make([]float32, 6)

	NewNaive().MatMul(a, b, c, 2, 3, 1)

	expected := []float32{3, 4, 5, 6, 8, 10}
	for i := range expected {
		if c[i] != expected[i] {
			t.Errorf("c[%d] = %f, expected %f", i, c[i], expected[i])
		}
	}
}

func TestNaive_PanicsOnShortBuffer(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on short C buffer")
		}
	}()
	NewNaive().MatMul(make([]float32, 4), make([]float32, 4), make([]float32, 3), 2, 2, 2)
}

func TestKernels_AgreeWithNaive(t *testing.T) {
	pool := parallel.NewPool(parallel.Config{Enabled: true, NumWorkers: 4, MinRows: 1})
	defer pool.Close()

	kernels := []kernel.Kernel{
		NewTiled(8),
		NewTiled(DefaultBlock),
		NewVectorized(8),
		NewVectorized(DefaultBlock),
		NewParallel(8, pool),
		NewParallel(DefaultBlock, nil),
	}

	for _, s := range testShapes() {
		a, b := operands(t, s)
		want := make([]float32, s.SizeC())
		NewNaive().MatMul(a, b, want, s.M, s.N, s.K)

		for _, kern := range kernels {
			t.Run(fmt.Sprintf("%s/%s", kern.Variant(), s), func(t *testing.T) {
				c := nanFilled(s.SizeC())
				kern.MatMul(a, b, c, s.M, s.N, s.K)

				if d := maxDiff(c, want); !(d < 1e-3) {
					t.Errorf("max abs diff vs naive = %g, want < 1e-3", d)
				}
			})
		}
	}
}

func TestTiled_RepeatedCallsDoNotAccumulate(t *testing.T) {
	s := matrix.Shape{M: 9, N: 10, K: 11}
	a, b := operands(t, s)
	kern := NewTiled(4)

	first := make([]float32, s.SizeC())
	kern.MatMul(a, b, first, s.M, s.N, s.K)

	second := append([]float32(nil), first...)
	kern.MatMul(a, b, second, s.M, s.N, s.K)

	if d := maxDiff(first, second); d != 0 {
		t.Errorf("second call differs by %g; C must be cleared before accumulation", d)
	}
}

func TestTiled_RowStride(t *testing.T) {
	// A single 1-wide block per dimension means each output cell is written
	// exactly once at row*N+col. A stride of 1 instead of N would collide.
	s := matrix.Shape{M: 3, N: 4, K: 2}
	a := []float32{
		1, 0,
		0, 1,
		1, 1,
	}
	b := []float32{
		1, 2, 3, 4,
		10, 20, 30, 40,
	}
	c := nanFilled(s.SizeC())

	NewTiled(1).MatMul(a, b, c, s.M, s.N, s.K)

	expected := []float32{
		1, 2, 3, 4,
		10, 20, 30, 40,
		11, 22, 33, 44,
	}
	for i := range expected {
		if c[i] != expected[i] {
			t.Errorf("c[%d] = %f, expected %f", i, c[i], expected[i])
		}
	}
}

func TestVectorized_TailLanes(t *testing.T) {
	// N=6 leaves a two-column tail after one full lane group. Only the
	// valid lanes may be flushed.
	s := matrix.Shape{M: 2, N: 6, K: 3}
	a, b := operands(t, s)

	want := make([]float32, s.SizeC())
	NewNaive().MatMul(a, b, want, s.M, s.N, s.K)

	c := make([]float32, s.SizeC()+LaneWidth)
	sentinel := float32(-42)
	for i := s.SizeC(); i < len(c); i++ {
		c[i] = sentinel
	}
	NewVectorized(DefaultBlock).MatMul(a, b, c, s.M, s.N, s.K)

	if d := maxDiff(c[:s.SizeC()], want); !(d < 1e-5) {
		t.Errorf("max abs diff vs naive = %g", d)
	}
	for i := s.SizeC(); i < len(c); i++ {
		if c[i] != sentinel {
			t.Errorf("c[%d] = %f written past the output", i, c[i])
		}
	}
}

func TestClampBlock(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultBlock},
		{-5, 1},
		{1, 1},
		{32, 32},
		{256, 256},
		{1000, 256},
	}
	for _, tt := range tests {
		if got := ClampBlock(tt.in); got != tt.want {
			t.Errorf("ClampBlock(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParallel_Sequential(t *testing.T) {
	s := matrix.Shape{M: 33, N: 21, K: 17}
	a, b := operands(t, s)

	want := make([]float32, s.SizeC())
	NewNaive().MatMul(a, b, want, s.M, s.N, s.K)

	pool := parallel.NewPool(parallel.Config{Enabled: false, NumWorkers: 1})
	defer pool.Close()
	kern := NewParallel(16, pool)

	c := nanFilled(s.SizeC())
	kern.MatMul(a, b, c, s.M, s.N, s.K)
	if d := maxDiff(c, want); !(d < 1e-3) {
		t.Errorf("max abs diff vs naive = %g", d)
	}
}

func TestParallel_FewerRowsThanWorkers(t *testing.T) {
	s := matrix.Shape{M: 2, N: 5, K: 3}
	a, b := operands(t, s)

	want := make([]float32, s.SizeC())
	NewNaive().MatMul(a, b, want, s.M, s.N, s.K)

	pool := parallel.NewPool(parallel.Config{Enabled: true, NumWorkers: 16, MinRows: 1})
	defer pool.Close()
	kern := NewParallel(DefaultBlock, pool)

	c := nanFilled(s.SizeC())
	kern.MatMul(a, b, c, s.M, s.N, s.K)
	if d := maxDiff(c, want); !(d < 1e-3) {
		t.Errorf("max abs diff vs naive = %g", d)
	}
}

func TestVariants(t *testing.T) {
	p := NewParallel(0, nil)

	tests := []struct {
		k    kernel.Kernel
		want kernel.Variant
	}{
		{NewNaive(), kernel.Naive},
		{NewTiled(0), kernel.Tiled},
		{NewVectorized(0), kernel.Vectorized},
		{p, kernel.Parallel},
	}
	for _, tt := range tests {
		if got := tt.k.Variant(); got != tt.want {
			t.Errorf("Variant() = %v, want %v", got, tt.want)
		}
	}
}

func benchmarkKernel(b *testing.B, kern kernel.Kernel, size int) {
	s := matrix.Shape{M: size, N: size, K: size}
	a, bm := operands(b, s)
	c := make([]float32, s.SizeC())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		kern.MatMul(a, bm, c, s.M, s.N, s.K)
	}
	b.StopTimer()

	sec := b.Elapsed().Seconds() / float64(b.N)
	if sec > 0 {
		b.ReportMetric(float64(s.FLOPs())/1e9/sec, "GFLOPS")
	}
}

func BenchmarkNaive_128(b *testing.B)      { benchmarkKernel(b, NewNaive(), 128) }
func BenchmarkTiled_128(b *testing.B)      { benchmarkKernel(b, NewTiled(DefaultBlock), 128) }
func BenchmarkVectorized_128(b *testing.B) { benchmarkKernel(b, NewVectorized(DefaultBlock), 128) }

func BenchmarkParallel_256(b *testing.B) {
	pool := parallel.NewPool(parallel.DefaultConfig())
	defer pool.Close()
	benchmarkKernel(b, NewParallel(DefaultBlock, pool), 256)
}
