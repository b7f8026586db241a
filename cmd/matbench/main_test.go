package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/matbench/internal/kernel"
	"github.com/born-ml/matbench/internal/report"
	"github.com/born-ml/matbench/internal/workload"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeWorkload(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wl.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "matbench "+version+"\n", out)
}

func TestRun_WritesRecord(t *testing.T) {
	wl := writeWorkload(t, `{"name":"small","parameters":{"shapes":{"M":48,"N":40,"K":33}}}`)
	outPath := filepath.Join(t.TempDir(), "result.json")

	_, err := execute(t,
		"--workload", wl,
		"--output", outPath,
		"--warmup-runs", "0",
		"--bench-runs", "2",
		"--gpu=false",
		"--workers", "2",
		"--log-level", "error",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rec report.Record
	require.NoError(t, json.Unmarshal(data, &rec))

	assert.Equal(t, "small", rec.WorkloadName)
	assert.Equal(t, [3]int{48, 40, 33}, rec.WorkloadInfo.MatrixSize)
	assert.True(t, rec.Correctness)
	assert.Positive(t, rec.ThroughputGFLOPS)
	assert.Equal(t, kernel.Native, rec.PrimaryVariant)
	assert.Len(t, rec.Variants, len(kernel.AllVariants()))
	for _, row := range rec.Variants {
		assert.True(t, row.Passed, "%s", row.Variant)
	}
}

func TestRun_Stdout(t *testing.T) {
	wl := writeWorkload(t, `{"parameters":{"shapes":{"M":8,"N":8,"K":8}}}`)
	out, err := execute(t,
		"--workload", wl,
		"--variants", "naive,tiled",
		"--primary", "tiled",
		"--warmup-runs", "0",
		"--bench-runs", "1",
		"--log-level", "error",
	)
	require.NoError(t, err)

	var rec report.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, kernel.Tiled, rec.PrimaryVariant)
	assert.Len(t, rec.Variants, 2)
	assert.Zero(t, rec.PerformanceAnalysis.GPUSpeedup, "unselected variants report 0")
}

func TestRun_InvalidWorkload(t *testing.T) {
	wl := writeWorkload(t, `{"parameters":{"shapes":{"M":0,"N":8,"K":8}}}`)
	_, err := execute(t, "--workload", wl, "--log-level", "error")
	require.Error(t, err)
	assert.True(t, workload.IsInvalid(err))
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestRun_UnwritableOutput(t *testing.T) {
	wl := writeWorkload(t, `{"parameters":{"shapes":{"M":4,"N":4,"K":4}}}`)
	_, err := execute(t,
		"--workload", wl,
		"--output", filepath.Join(t.TempDir(), "no", "such", "dir.json"),
		"--warmup-runs", "0",
		"--bench-runs", "1",
		"--gpu=false",
		"--log-level", "error",
	)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestRun_BadFlags(t *testing.T) {
	_, err := execute(t, "--variants", "naive,quantum", "--log-level", "error")
	assert.ErrorContains(t, err, "quantum")

	_, err = execute(t, "--bench-runs", "0", "--log-level", "error")
	assert.Error(t, err)

	_, err = execute(t, "--log-level", "loud")
	assert.Error(t, err)
}

func TestParseVariants(t *testing.T) {
	vs, err := parseVariants([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, kernel.AllVariants(), vs)

	vs, err = parseVariants([]string{"tiled, blis", "optimized", "tiled"})
	require.NoError(t, err)
	assert.Equal(t, []kernel.Variant{kernel.Tiled, kernel.BLAS, kernel.Native}, vs)
}

func TestVariantsCommand(t *testing.T) {
	out, err := execute(t, "variants", "--gpu=false", "--tile", "32")
	require.NoError(t, err)
	for _, v := range kernel.AllVariants() {
		assert.Contains(t, out, v.String())
	}
	assert.Contains(t, out, "block 32")
	assert.Contains(t, out, "disabled, falls back to naive")
}
