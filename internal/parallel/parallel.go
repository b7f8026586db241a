// Package parallel splits row ranges of an output matrix across workers.
package parallel

import (
	"fmt"
	"runtime"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Number of worker goroutines to use.
	MinRows    int  // Minimum rows per range to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinRows:    4,
	}
}

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits [0, n) into at most parts contiguous, non-empty ranges of
// near-equal length. The ranges are disjoint and cover every row exactly once.
func Partition(n, parts int) []Range {
	if n <= 0 {
		return nil
	}
	parts = max(1, min(parts, n))

	ranges := make([]Range, 0, parts)
	base, extra := n/parts, n%parts
	start := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, Range{Start: start, End: start + size})
		start += size
	}
	return ranges
}

// Plan returns the row partition for n rows under cfg.
func Plan(n int, cfg Config) []Range {
	if !cfg.Enabled || cfg.NumWorkers <= 1 {
		return Partition(n, 1)
	}
	parts := cfg.NumWorkers
	if cfg.MinRows > 0 {
		parts = min(parts, max(1, n/cfg.MinRows))
	}
	return Partition(n, parts)
}

// Verify checks that ranges are sorted, non-overlapping and cover [0, n).
func Verify(ranges []Range, n int) error {
	next := 0
	for i, r := range ranges {
		if r.Start != next {
			if r.Start < next {
				return fmt.Errorf("parallel: range %d [%d,%d) overlaps previous end %d", i, r.Start, r.End, next)
			}
			return fmt.Errorf("parallel: gap before range %d: rows [%d,%d) unassigned", i, next, r.Start)
		}
		if r.End <= r.Start {
			return fmt.Errorf("parallel: range %d [%d,%d) is empty", i, r.Start, r.End)
		}
		next = r.End
	}
	if next != n {
		return fmt.Errorf("parallel: ranges cover [0,%d), want [0,%d)", next, n)
	}
	return nil
}

// For executes f once per range, in order, on the caller's goroutine.
// It is the path taken by a pool without workers.
func For(ranges []Range, f func(r Range)) {
	for _, r := range ranges {
		f(r)
	}
}

// Pool is a fixed-size set of persistent workers reused across calls.
type Pool struct {
	cfg     Config
	workers *workerpool.Pool
}

// NewPool starts cfg.NumWorkers persistent workers.
// A disabled config yields a pool that runs everything on the caller's goroutine.
func NewPool(cfg Config) *Pool {
	p := &Pool{cfg: cfg}
	if cfg.Enabled && cfg.NumWorkers > 1 {
		p.workers = workerpool.New(cfg.NumWorkers)
	}
	return p
}

// Config returns the configuration the pool was created with.
func (p *Pool) Config() Config { return p.cfg }

// Workers exposes the underlying worker pool, nil when running sequentially.
func (p *Pool) Workers() *workerpool.Pool { return p.workers }

// Run executes f once per range on the pool and blocks until all complete.
func (p *Pool) Run(ranges []Range, f func(r Range)) {
	if p == nil || p.workers == nil {
		For(ranges, f)
		return
	}
	p.workers.ParallelFor(len(ranges), func(start, end int) {
		for _, r := range ranges[start:end] {
			f(r)
		}
	})
}

// Close stops the workers. Safe to call more than once.
func (p *Pool) Close() {
	if p != nil && p.workers != nil {
		p.workers.Close()
	}
}
