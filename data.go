package clusterkit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// flatten copies data into a flat row-major slice and reports its shape.
// Every row must have the same, non-zero length.
func flatten(data [][]float64) (flat []float64, n, dims int, err error) {
	n = len(data)
	if n == 0 {
		return nil, 0, 0, ErrEmptyData
	}
	dims = len(data[0])
	if dims == 0 {
		return nil, 0, 0, fmt.Errorf("%w: rows have zero features", ErrEmptyData)
	}
	flat = make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, 0, 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrRaggedData, i, len(row), dims)
		}
		copy(flat[i*dims:], row)
	}
	return flat, n, dims, nil
}

// row returns point i of flat row-major data.
func row(flat []float64, i, dims int) []float64 {
	return flat[i*dims : (i+1)*dims]
}

// FromDense converts a gonum matrix (one observation per row) into the
// [][]float64 layout accepted by this package.
func FromDense(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
