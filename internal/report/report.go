// Package report renders a benchmark result as the JSON output record.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/matbench/internal/bench"
	"github.com/born-ml/matbench/internal/kernel"
)

// Record is the serialized result of one benchmark run.
type Record struct {
	RunID               string              `json:"run_id"`
	Timestamp           time.Time           `json:"timestamp"`
	WorkloadName        string              `json:"workload_name"`
	LatencyMS           float64             `json:"latency_ms"`
	ThroughputGFLOPS    float64             `json:"throughput_gflops"`
	OpsPerSecond        float64             `json:"ops_per_second"`
	OutputHash          string              `json:"output_hash"`
	MaxError            float32             `json:"max_error"`
	Correctness         bool                `json:"correctness"`
	PrimaryVariant      kernel.Variant      `json:"primary_variant"`
	WorkloadInfo        WorkloadInfo        `json:"workload_info"`
	PerformanceAnalysis PerformanceAnalysis `json:"performance_analysis"`
	Variants            []VariantRow        `json:"variants"`
	Hardware            Hardware            `json:"hardware"`
}

// WorkloadInfo describes the problem size.
type WorkloadInfo struct {
	MatrixSize    [3]int  `json:"matrix_size"` // M, N, K
	TotalOps      uint64  `json:"total_ops"`
	MemoryUsageMB float64 `json:"memory_usage_mb"`
}

// PerformanceAnalysis holds speedups over naive and the derived rates.
// A variant that was not run reports a speedup of 0.
type PerformanceAnalysis struct {
	SpeedupVsNaive      float64 `json:"speedup_vs_naive"`
	BLASSpeedup         float64 `json:"blas_speedup"`
	TiledSpeedup        float64 `json:"tiled_speedup"`
	VectorizedSpeedup   float64 `json:"vectorized_speedup"`
	ParallelSpeedup     float64 `json:"parallel_speedup"`
	GPUSpeedup          float64 `json:"gpu_speedup"`
	MemoryBandwidthGBps float64 `json:"memory_bandwidth_gbps"`
	ComputeEfficiency   float64 `json:"compute_efficiency"`
}

// VariantRow is the graded timing of one variant.
type VariantRow struct {
	Variant      kernel.Variant `json:"variant"`
	Runs         int            `json:"runs"`
	LatencyMS    float64        `json:"latency_ms"`
	MinLatencyMS float64        `json:"min_latency_ms"`
	MaxLatencyMS float64        `json:"max_latency_ms"`
	GFLOPS       float64        `json:"gflops"`
	Speedup      float64        `json:"speedup"`
	MaxError     float32        `json:"max_error"`
	MaxRelError  float32        `json:"max_rel_error"`
	MaxULP       int64          `json:"max_ulp"`
	OutputHash   string         `json:"output_hash"`
	Passed       bool           `json:"passed"`
	Fallback     bool           `json:"fallback"`
}

// Hardware describes the host.
type Hardware struct {
	OS       string   `json:"os"`
	Arch     string   `json:"arch"`
	NumCPU   int      `json:"num_cpu"`
	Features []string `json:"features"`
	BestISA  string   `json:"best_isa"`
}

// FromResult builds the record for res.
func FromResult(name string, res *bench.Result, hw bench.Hardware) Record {
	p := res.PrimaryResult()
	m := res.Metrics

	rec := Record{
		RunID:            uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		WorkloadName:     name,
		LatencyMS:        ms(m.Latency),
		ThroughputGFLOPS: finite(m.ThroughputGFLOPS),
		OpsPerSecond:     finite(m.OpsPerSecond),
		OutputHash:       p.Check.Hash,
		MaxError:         p.Check.MaxAbsError,
		Correctness:      p.Check.Passed,
		PrimaryVariant:   res.Primary,
		WorkloadInfo: WorkloadInfo{
			MatrixSize:    [3]int{res.Shape.M, res.Shape.N, res.Shape.K},
			TotalOps:      m.TotalOps,
			MemoryUsageMB: m.MemoryUsageMB,
		},
		PerformanceAnalysis: PerformanceAnalysis{
			SpeedupVsNaive:      finite(m.Speedups[res.Primary]),
			BLASSpeedup:         finite(m.Speedups[kernel.BLAS]),
			TiledSpeedup:        finite(m.Speedups[kernel.Tiled]),
			VectorizedSpeedup:   finite(m.Speedups[kernel.Vectorized]),
			ParallelSpeedup:     finite(m.Speedups[kernel.Parallel]),
			GPUSpeedup:          finite(m.Speedups[kernel.GPU]),
			MemoryBandwidthGBps: finite(m.BandwidthGBps),
			ComputeEfficiency:   finite(m.ComputeEfficiency),
		},
		Hardware: Hardware{
			OS:       hw.OS,
			Arch:     hw.Arch,
			NumCPU:   hw.NumCPU,
			Features: hw.Features,
			BestISA:  hw.BestISA,
		},
	}
	if rec.Hardware.Features == nil {
		rec.Hardware.Features = []string{}
	}

	rec.Variants = make([]VariantRow, 0, len(res.Variants))
	for _, vr := range res.Variants {
		rec.Variants = append(rec.Variants, VariantRow{
			Variant:      vr.Variant,
			Runs:         vr.Runs,
			LatencyMS:    ms(vr.Mean),
			MinLatencyMS: ms(vr.Min),
			MaxLatencyMS: ms(vr.Max),
			GFLOPS:       finite(vr.GFLOPS),
			Speedup:      finite(vr.Speedup),
			MaxError:     vr.Check.MaxAbsError,
			MaxRelError:  vr.Comparison.MaxRelError,
			MaxULP:       vr.Comparison.MaxULP,
			OutputHash:   vr.Check.Hash,
			Passed:       vr.Check.Passed,
			Fallback:     vr.FellBack,
		})
	}
	return rec
}

// Write encodes rec as indented JSON.
func Write(w io.Writer, rec Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	return nil
}

// WriteFile writes rec to path, or to stdout when path is empty or "-".
func WriteFile(path string, rec Record) (err error) {
	if path == "" || path == "-" {
		return Write(os.Stdout, rec)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("report: close %s: %w", path, cerr)
		}
	}()
	return Write(f, rec)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// finite maps NaN and infinities to 0; encoding/json rejects them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
