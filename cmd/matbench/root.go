package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/born-ml/matbench/internal/backend/cpu"
	"github.com/born-ml/matbench/internal/backend/native"
	"github.com/born-ml/matbench/internal/bench"
	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/matrix"
	"github.com/born-ml/matbench/internal/report"
	"github.com/born-ml/matbench/internal/workload"
)

// envNativeLib seeds --native-lib.
const envNativeLib = "MATBENCH_NATIVE_LIB"

type options struct {
	workload     string
	output       string
	warmupRuns   int
	benchRuns    int
	baselineRuns int
	nativeLib    string
	nativeSymbol string
	tolerance    float32
	peakGFLOPS   float64
	tile         int
	workers      int
	gpu          bool
	variants     []string
	primary      string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	defaults := bench.DefaultConfig()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "matbench",
		Short: "Benchmark and validate f32 GEMM kernels",
		Long: `matbench multiplies two generated f32 matrices with every kernel variant
(naive, tiled, vectorized, parallel, native, blas, gpu), checks each output
against the naive reference and writes a JSON record with latency, throughput,
bandwidth and speedups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	bindRunFlags(cmd.Flags(), opts, defaults)
	// Shared with the variants subcommand.
	bindSharedFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(newVersionCmd(), newVariantsCmd(opts))
	return cmd
}

func bindRunFlags(f *pflag.FlagSet, opts *options, defaults bench.Config) {
	f.StringVar(&opts.workload, "workload", "", "workload file (JSON or YAML); default shape is 1024x1024x1024")
	f.StringVar(&opts.output, "output", "", "result file; stdout when empty")
	f.IntVar(&opts.warmupRuns, "warmup-runs", defaults.WarmupRuns, "discarded runs per variant before timing")
	f.IntVar(&opts.benchRuns, "bench-runs", defaults.BenchRuns, "timed runs per variant")
	f.IntVar(&opts.baselineRuns, "baseline-runs", defaults.BaselineRuns, "timed runs for the naive reference")
	f.Float32Var(&opts.tolerance, "tolerance", defaults.Tolerance, "largest passing absolute error")
	f.Float64Var(&opts.peakGFLOPS, "peak-gflops", defaults.PeakGFLOPS, "nominal peak GFLOP/s for compute efficiency")
	f.StringSliceVar(&opts.variants, "variants", []string{"all"}, "variants to run; naive is always included")
	f.StringVar(&opts.primary, "primary", defaults.Primary.String(), "variant reported in the headline metrics")
}

func bindSharedFlags(pf *pflag.FlagSet, opts *options) {
	pf.StringVar(&opts.nativeLib, "native-lib", os.Getenv(envNativeLib), "shared library with the native kernel (env "+envNativeLib+")")
	pf.StringVar(&opts.nativeSymbol, "native-symbol", native.DefaultSymbol, "native kernel symbol")
	pf.IntVar(&opts.tile, "tile", cpu.DefaultBlock, "block edge of the tiled kernels, clamped to [1,256]")
	pf.IntVar(&opts.workers, "workers", 0, "parallel workers; 0 uses every CPU")
	pf.BoolVar(&opts.gpu, "gpu", true, "offload the gpu variant to a device when one is available")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// parseVariants resolves the --variants list. "all" selects every variant.
func parseVariants(names []string) ([]kernel.Variant, error) {
	names = lo.FlatMap(names, func(s string, _ int) []string { return strings.Split(s, ",") })
	names = lo.Compact(lo.Map(names, func(s string, _ int) string { return strings.TrimSpace(s) }))
	if len(names) == 0 || lo.Contains(names, "all") {
		return kernel.AllVariants(), nil
	}

	var errs []string
	vs := lo.FilterMap(names, func(name string, _ int) (kernel.Variant, bool) {
		v, err := kernel.ParseVariant(name)
		if err != nil {
			errs = append(errs, name)
			return 0, false
		}
		return v, true
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("unknown variants: %s", strings.Join(errs, ", "))
	}
	return lo.Uniq(vs), nil
}

func (o *options) benchConfig() (bench.Config, error) {
	primary, err := kernel.ParseVariant(o.primary)
	if err != nil {
		return bench.Config{}, fmt.Errorf("invalid --primary: %w", err)
	}
	cfg := bench.DefaultConfig()
	cfg.WarmupRuns = o.warmupRuns
	cfg.BenchRuns = o.benchRuns
	cfg.BaselineRuns = o.baselineRuns
	cfg.Tolerance = o.tolerance
	cfg.PeakGFLOPS = o.peakGFLOPS
	cfg.Primary = primary
	return cfg, cfg.Validate()
}

func (o *options) suiteOptions(variants []kernel.Variant, logger *slog.Logger) bench.SuiteOptions {
	so := bench.DefaultSuiteOptions()
	so.Variants = variants
	so.Block = o.tile
	if o.workers > 0 {
		so.Parallel.NumWorkers = o.workers
		so.Parallel.Enabled = o.workers > 1
	}
	so.Native = native.Config{Library: o.nativeLib, Symbol: o.nativeSymbol}
	so.GPU = o.gpu
	so.Logger = logger
	return so
}

func run(cmd *cobra.Command, o *options) error {
	logger, err := newLogger(o.logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := o.benchConfig()
	if err != nil {
		return err
	}
	variants, err := parseVariants(o.variants)
	if err != nil {
		return err
	}
	variants = lo.Uniq(append(variants, cfg.Primary))

	w, err := workload.Load(o.workload)
	if err != nil {
		return err
	}
	logger.Info("workload loaded", "name", w.Name, "shape", w.Shape, "flops", w.Shape.FLOPs())

	a, b, err := matrix.Generate(w.Shape)
	if err != nil {
		return err
	}

	suite := bench.NewSuite(o.suiteOptions(variants, logger))
	defer func() {
		if cerr := suite.Close(); cerr != nil {
			logger.Warn("releasing kernels", "error", cerr)
		}
	}()

	h, err := bench.NewHarness(cfg, logger)
	if err != nil {
		return err
	}
	res, err := h.Run(suite.Kernels(), a.Data(), b.Data(), w.Shape)
	if err != nil {
		return err
	}

	rec := report.FromResult(w.Name, res, bench.DetectHardware())
	if o.output == "" {
		return report.Write(cmd.OutOrStdout(), rec)
	}
	if err := report.WriteFile(o.output, rec); err != nil {
		return err
	}
	logger.Info("result written", "path", o.output, "correct", rec.Correctness)
	return nil
}
