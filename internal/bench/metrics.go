package bench

import (
	"time"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
)

// Metrics are the headline figures of one benchmark run, derived from the
// primary variant's mean latency.
type Metrics struct {
	Latency           time.Duration
	ThroughputGFLOPS  float64
	OpsPerSecond      float64
	TotalOps          uint64
	MemoryBytes       uint64
	MemoryUsageMB     float64 // MemoryBytes / 2^20
	BandwidthGBps     float64
	ComputeEfficiency float64

	// Speedups maps every measured variant to naive latency / variant latency.
	Speedups map[kernel.Variant]float64
}

// seconds converts d to seconds, clamping to one nanosecond so that a run
// below timer resolution still yields finite rates.
func seconds(d time.Duration) float64 {
	if d < time.Nanosecond {
		d = time.Nanosecond
	}
	return d.Seconds()
}

// GFLOPS returns the throughput of one s-shaped multiplication taking d.
func GFLOPS(s matrix.Shape, d time.Duration) float64 {
	return float64(s.FLOPs()) / 1e9 / seconds(d)
}

// Speedup returns naive / variant.
func Speedup(naive, variant time.Duration) float64 {
	return seconds(naive) / seconds(variant)
}

// ComputeMetrics derives the headline metrics from mean latencies.
// latencies must contain naive and primary.
func ComputeMetrics(s matrix.Shape, primary kernel.Variant, latencies map[kernel.Variant]time.Duration, peakGFLOPS float64) Metrics {
	lat := latencies[primary]
	sec := seconds(lat)
	ops := s.FLOPs()
	bytes := s.Bytes()
	gflops := GFLOPS(s, lat)

	speedups := make(map[kernel.Variant]float64, len(latencies))
	naive := latencies[kernel.Naive]
	for v, d := range latencies {
		speedups[v] = Speedup(naive, d)
	}
	speedups[kernel.Naive] = 1.0

	m := Metrics{
		Latency:          lat,
		ThroughputGFLOPS: gflops,
		OpsPerSecond:     float64(ops) / sec,
		TotalOps:         ops,
		MemoryBytes:      bytes,
		MemoryUsageMB:    float64(bytes) / (1 << 20),
		BandwidthGBps:    float64(bytes) / 1e9 / sec,
		Speedups:         speedups,
	}
	if peakGFLOPS > 0 {
		m.ComputeEfficiency = gflops / peakGFLOPS
	}
	return m
}

// meanDuration returns the arithmetic mean of ds.
func meanDuration(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total / time.Duration(len(ds))
}
