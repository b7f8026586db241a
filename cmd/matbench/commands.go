package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/matbench/internal/backend/cpu"
	"github.com/born-ml/matbench/internal/backend/native"
	"github.com/born-ml/matbench/internal/backend/webgpu"
	"github.com/born-ml/matbench/internal/bench"
	"github.com/born-ml/matbench/internal/kernel"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "matbench %s\n", version)
		},
	}
}

// newVariantsCmd lists the kernel variants and what backs each one on this machine.
func newVariantsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List kernel variants and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VARIANT\tBACKEND")
			for _, v := range kernel.AllVariants() {
				fmt.Fprintf(tw, "%s\t%s\n", v, describe(v, opts))
			}
			hw := bench.DetectHardware()
			fmt.Fprintf(tw, "\nhost\t%s/%s, %d CPUs, best ISA %s\n", hw.OS, hw.Arch, hw.NumCPU, hw.BestISA)
			return tw.Flush()
		},
	}
}

func describe(v kernel.Variant, opts *options) string {
	switch v {
	case kernel.Naive:
		return "scalar reference"
	case kernel.Tiled, kernel.Vectorized:
		return fmt.Sprintf("block %d", cpu.ClampBlock(opts.tile))
	case kernel.Parallel:
		cfg := opts.suiteOptions(nil, nil).Parallel
		return fmt.Sprintf("%d workers, block %d", max(1, cfg.NumWorkers), cpu.ClampBlock(opts.tile))
	case kernel.Native:
		r, err := native.Open(native.Config{Library: opts.nativeLib, Symbol: opts.nativeSymbol})
		if err != nil {
			return fmt.Sprintf("unavailable (%v), falls back to tiled", err)
		}
		defer r.Close()
		return r.Name()
	case kernel.BLAS:
		return native.NewBLAS(nil).Library()
	case kernel.GPU:
		if !opts.gpu {
			return "disabled, falls back to naive"
		}
		name, err := webgpu.Probe(webgpu.DefaultRuntime())
		if err != nil {
			return fmt.Sprintf("unavailable (%v), falls back to naive", err)
		}
		return name
	}
	return "unknown"
}
