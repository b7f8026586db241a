// Package workload reads the GEMM shape to benchmark.
//
// A workload file is JSON or YAML:
//
//	{"name": "square-1k", "parameters": {"shapes": {"M": 1024, "N": 1024, "K": 1024}}}
package workload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/matbench/internal/matrix"
)

// ErrInvalidShape is returned when the shape is missing or not positive.
var ErrInvalidShape = matrix.ErrInvalidShape

// DefaultName is reported when the workload has no name.
const DefaultName = "matmul"

// Workload is a named GEMM shape.
type Workload struct {
	Name  string
	Shape matrix.Shape
}

// Default returns the workload used when no file is given.
func Default() Workload {
	return Workload{Name: DefaultName, Shape: matrix.DefaultShape()}
}

type fileShapes struct {
	M *int `yaml:"M"`
	N *int `yaml:"N"`
	K *int `yaml:"K"`
}

type fileParameters struct {
	Shapes *fileShapes `yaml:"shapes"`
}

type file struct {
	Name       string          `yaml:"name"`
	Parameters *fileParameters `yaml:"parameters"`
}

// Parse decodes a workload document. YAML is a superset of JSON, so one
// decoder handles both.
func Parse(data []byte) (Workload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Workload{}, fmt.Errorf("workload: empty document: %w", ErrInvalidShape)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Workload{}, fmt.Errorf("workload: decode: %w", err)
	}
	if f.Parameters == nil || f.Parameters.Shapes == nil {
		return Workload{}, fmt.Errorf("workload: missing parameters.shapes: %w", ErrInvalidShape)
	}

	sh := f.Parameters.Shapes
	var missing []string
	for _, d := range []struct {
		name string
		v    *int
	}{{"M", sh.M}, {"N", sh.N}, {"K", sh.K}} {
		if d.v == nil {
			missing = append(missing, d.name)
		}
	}
	if len(missing) > 0 {
		return Workload{}, fmt.Errorf("workload: missing dimension %s: %w", strings.Join(missing, ", "), ErrInvalidShape)
	}

	w := Workload{
		Name:  f.Name,
		Shape: matrix.Shape{M: *sh.M, N: *sh.N, K: *sh.K},
	}
	if w.Name == "" {
		w.Name = DefaultName
	}
	if err := w.Shape.Validate(); err != nil {
		return Workload{}, fmt.Errorf("workload: %w", err)
	}
	return w, nil
}

// Load reads the workload at path. An empty path yields Default().
func Load(path string) (Workload, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Workload{}, fmt.Errorf("workload: read %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return Workload{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if w.Name == DefaultName {
		w.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return w, nil
}

// IsInvalid reports whether err is a malformed-workload error.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidShape)
}
