package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"athena-demo/internal/domain"
)

// Predicate selects rows of a frame.
type Predicate func(row []string) bool

// Equals returns a predicate matching rows whose column equals value.
func Equals(f *domain.Frame, column, value string) (Predicate, error) {
	idx := f.ColumnIndex(column)
	if idx < 0 {
		return nil, domain.ErrNotFound("column %q not found", column)
	}
	return func(row []string) bool {
		return idx < len(row) && row[idx] == value
	}, nil
}

// Filter returns a new frame holding the rows of f that match pred.
func Filter(f *domain.Frame, pred Predicate) *domain.Frame {
	out := &domain.Frame{Columns: f.Columns}
	for _, row := range f.Rows {
		if pred(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Mean averages a numeric column. Empty cells are skipped. A frame with no
// numeric values yields NaN, not an error.
func Mean(f *domain.Frame, column string) (float64, error) {
	idx := f.ColumnIndex(column)
	if idx < 0 {
		return 0, domain.ErrNotFound("column %q not found", column)
	}

	var sum float64
	var n int
	for i, row := range f.Rows {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, fmt.Errorf("row %d: column %q: %w", i+1, column, err)
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum / float64(n), nil
}
