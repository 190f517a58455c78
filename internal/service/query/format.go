package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"athena-demo/internal/domain"
)

// FormatResult converts a raw result set into a table. The first row is the
// header and is dropped; column names come from the metadata instead. NULL
// cells become empty strings. rs is not modified.
func FormatResult(rs *domain.ResultSet) *domain.Table {
	t := &domain.Table{Columns: []string{}, Rows: [][]string{}}
	if rs == nil {
		return t
	}

	t.Columns = make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		name := c.Label
		if name == "" {
			name = c.Name
		}
		t.Columns[i] = name
	}

	rows := rs.Rows
	if len(rows) > 0 {
		rows = rows[1:]
	}
	t.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, len(row))
		for i, cell := range row {
			if cell != nil {
				out[i] = *cell
			}
		}
		t.Rows = append(t.Rows, out)
	}
	return t
}

// ScalarFloat reads the first cell of t as a number. An empty table or an
// empty cell (AVG over no rows) yields NaN.
func ScalarFloat(t *domain.Table) (float64, error) {
	if t == nil || len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return math.NaN(), nil
	}
	v := strings.TrimSpace(t.Rows[0][0])
	if v == "" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse scalar result %q: %w", v, err)
	}
	return f, nil
}
