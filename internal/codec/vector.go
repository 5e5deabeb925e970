// Package codec converts validated parameters into wire requests and wire
// responses into typed results.
package codec

import "github.com/kailas-cloud/vecsearch/internal/domain"

// Flatten packs rectangular rows into one contiguous slice. The dimension is
// the length of the first row; callers validate rectangularity first.
func Flatten(rows [][]float32) (data []float32, dim int) {
	if len(rows) == 0 {
		return nil, 0
	}
	dim = len(rows[0])
	data = make([]float32, 0, dim*len(rows))
	for _, r := range rows {
		data = append(data, r...)
	}
	return data, dim
}

// Unflatten slices data into rows of dim elements.
func Unflatten(data []float32, dim int) ([][]float32, error) {
	if len(data) == 0 {
		return [][]float32{}, nil
	}
	if dim <= 0 {
		return nil, domain.NewSchemaMismatch("invalid vector dimension %d", dim)
	}
	if len(data)%dim != 0 {
		return nil, domain.NewSchemaMismatch("vector data length %d is not a multiple of dimension %d", len(data), dim)
	}
	rows := make([][]float32, len(data)/dim)
	for i := range rows {
		row := make([]float32, dim)
		copy(row, data[i*dim:(i+1)*dim])
		rows[i] = row
	}
	return rows, nil
}
