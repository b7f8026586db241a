package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/matbench/internal/matrix"
)

func TestParse_JSON(t *testing.T) {
	w, err := Parse([]byte(`{"parameters":{"shapes":{"M":64,"N":32,"K":16}}}`))
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{M: 64, N: 32, K: 16}, w.Shape)
	assert.Equal(t, DefaultName, w.Name)
}

func TestParse_YAML(t *testing.T) {
	doc := `
name: tall
parameters:
  shapes:
    M: 512
    N: 8
    K: 128
`
	w, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "tall", w.Name)
	assert.Equal(t, matrix.Shape{M: 512, N: 8, K: 128}, w.Shape)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no parameters", `{"name":"x"}`},
		{"no shapes", `{"parameters":{}}`},
		{"missing K", `{"parameters":{"shapes":{"M":1,"N":1}}}`},
		{"zero", `{"parameters":{"shapes":{"M":0,"N":1,"K":1}}}`},
		{"negative", `{"parameters":{"shapes":{"M":4,"N":-2,"K":1}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsInvalid(err), "error %v", err)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{"parameters": [`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"parameters":{"shapes":{"M":"big","N":1,"K":1}}}`))
	require.Error(t, err)
}

func TestLoad_Default(t *testing.T) {
	w, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), w)
	assert.Equal(t, matrix.Shape{M: 1024, N: 1024, K: 1024}, w.Shape)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square-64.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parameters":{"shapes":{"M":64,"N":64,"K":64}}}`), 0o600))

	w, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "square-64", w.Name, "unnamed workloads take the file stem")
	assert.Equal(t, matrix.Shape{M: 64, N: 64, K: 64}, w.Shape)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, IsInvalid(err))
}
