package bench

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
	"github.com/born-ml/matbench/internal/oracle"
)

// Measurement is the timing of one variant.
type Measurement struct {
	Variant  kernel.Variant
	Warmups  int
	Runs     int
	Mean     time.Duration
	Min      time.Duration
	Max      time.Duration
	FellBack bool // the last timed run used the variant's fallback path

	// Output is the C produced by the last timed run.
	Output []float32
}

// VariantResult is a graded measurement.
type VariantResult struct {
	Measurement
	GFLOPS     float64
	Speedup    float64
	Check      oracle.Result
	Comparison oracle.Comparison
}

// Result is the outcome of benchmarking a set of kernels on one shape.
type Result struct {
	Shape    matrix.Shape
	Primary  kernel.Variant
	Variants []VariantResult
	Metrics  Metrics
}

// Variant returns the result row for v.
func (r *Result) Variant(v kernel.Variant) (VariantResult, bool) {
	for _, vr := range r.Variants {
		if vr.Variant == v {
			return vr, true
		}
	}
	return VariantResult{}, false
}

// PrimaryResult returns the row of the primary variant.
func (r *Result) PrimaryResult() VariantResult {
	vr, _ := r.Variant(r.Primary)
	return vr
}

// Harness runs kernels under a Config.
type Harness struct {
	cfg    Config
	logger *slog.Logger
}

// NewHarness returns a harness. A nil logger uses slog.Default().
func NewHarness(cfg Config, logger *slog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{cfg: cfg, logger: logger}, nil
}

// Config returns the harness configuration.
func (h *Harness) Config() Config { return h.cfg }

// Measure times k on the inputs a and b. Warmup outputs are discarded; every
// run gets a freshly allocated C and the last timed C is returned.
func (h *Harness) Measure(k kernel.Kernel, a, b []float32, s matrix.Shape) (Measurement, error) {
	am, bm, err := s.Operands(a, b)
	if err != nil {
		return Measurement{}, fmt.Errorf("bench: %s: %w", k.Variant(), err)
	}
	rows, cols, inner := am.Rows(), bm.Cols(), am.Cols()

	warmup, runs := h.cfg.schedule(k.Variant())
	log := h.logger.With("variant", k.Variant(), "shape", s)

	for i := 0; i < warmup; i++ {
		c := make([]float32, rows*cols)
		k.MatMul(am.Data(), bm.Data(), c, rows, cols, inner)
	}
	if warmup > 0 {
		log.Debug("warmup done", "runs", warmup)
	}

	times := make([]time.Duration, 0, runs)
	var last []float32
	for i := 0; i < runs; i++ {
		c := make([]float32, rows*cols)
		start := time.Now()
		k.MatMul(am.Data(), bm.Data(), c, rows, cols, inner)
		times = append(times, time.Since(start))
		last = c
	}

	m := Measurement{
		Variant: k.Variant(),
		Warmups: warmup,
		Runs:    runs,
		Mean:    meanDuration(times),
		Min:     slices.Min(times),
		Max:     slices.Max(times),
		Output:  last,
	}
	if fb, ok := k.(kernel.Fallbacker); ok {
		m.FellBack = fb.FellBack()
	}

	log.Info("measured",
		"runs", runs,
		"mean", m.Mean,
		"gflops", GFLOPS(s, m.Mean),
		"fallback", m.FellBack,
	)
	return m, nil
}

// Run measures every kernel, grades each output against the naive kernel's
// output and derives the metrics from the primary variant. kernels must
// include naive and the primary variant.
func (h *Harness) Run(kernels []kernel.Kernel, a, b []float32, s matrix.Shape) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	if !hasVariant(kernels, kernel.Naive) {
		return nil, fmt.Errorf("bench: the naive reference kernel is required")
	}
	if !hasVariant(kernels, h.cfg.Primary) {
		return nil, fmt.Errorf("bench: primary variant %s is not among the kernels", h.cfg.Primary)
	}

	h.logger.Info("benchmark started",
		"shape", s,
		"variants", len(kernels),
		"warmup_runs", h.cfg.WarmupRuns,
		"bench_runs", h.cfg.BenchRuns,
	)

	measurements := make([]Measurement, 0, len(kernels))
	latencies := make(map[kernel.Variant]time.Duration, len(kernels))
	var reference []float32
	for _, k := range kernels {
		m, err := h.Measure(k, a, b, s)
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
		latencies[m.Variant] = m.Mean
		if m.Variant == kernel.Naive {
			reference = m.Output
		}
	}

	res := &Result{
		Shape:   s,
		Primary: h.cfg.Primary,
		Metrics: ComputeMetrics(s, h.cfg.Primary, latencies, h.cfg.PeakGFLOPS),
	}
	for _, m := range measurements {
		check, err := oracle.Check(m.Output, reference, h.cfg.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("bench: grade %s: %w", m.Variant, err)
		}
		cmp, err := oracle.Compare(m.Output, reference)
		if err != nil {
			return nil, fmt.Errorf("bench: compare %s: %w", m.Variant, err)
		}

		vr := VariantResult{
			Measurement: m,
			GFLOPS:      GFLOPS(s, m.Mean),
			Speedup:     res.Metrics.Speedups[m.Variant],
			Check:       check,
			Comparison:  cmp,
		}
		if !check.Passed {
			h.logger.Warn("output mismatch",
				"variant", m.Variant,
				"max_error", check.MaxAbsError,
				"tolerance", h.cfg.Tolerance,
				"worst_index", cmp.WorstIndex,
				"max_ulp", cmp.MaxULP,
			)
		}
		res.Variants = append(res.Variants, vr)
	}

	p := res.PrimaryResult()
	h.logger.Info("benchmark finished",
		"primary", res.Primary,
		"latency", res.Metrics.Latency,
		"gflops", res.Metrics.ThroughputGFLOPS,
		"max_error", p.Check.MaxAbsError,
		"correct", p.Check.Passed,
	)
	return res, nil
}

func hasVariant(kernels []kernel.Kernel, v kernel.Variant) bool {
	return slices.ContainsFunc(kernels, func(k kernel.Kernel) bool { return k.Variant() == v })
}
