// Package matrix holds the flat row-major f32 buffers every kernel works on.
package matrix

import "fmt"

// Dense is a row-major view over a float32 buffer.
// Element (i, j) lives at i*cols+j.
type Dense struct {
	data []float32
	rows int
	cols int
}

// FromSlice wraps data without copying. rows*cols must equal len(data).
func FromSlice(data []float32, rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("matrix: %w: %dx%d", ErrInvalidShape, rows, cols)
	}
	if rows*cols != len(data) {
		return nil, fmt.Errorf("matrix: buffer has %d elements, want %dx%d=%d", len(data), rows, cols, rows*cols)
	}
	return &Dense{data: data, rows: rows, cols: cols}, nil
}

// Rows returns the number of rows.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the number of columns.
func (d *Dense) Cols() int { return d.cols }

// Data returns the backing buffer. Callers must treat it as read-only.
func (d *Dense) Data() []float32 { return d.data }
