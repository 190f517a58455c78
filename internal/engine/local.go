// Package engine computes local aggregates over CSV files with DuckDB, used
// to cross-check results from the remote query service.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
)

// LocalEngine wraps an in-process DuckDB connection.
type LocalEngine struct {
	db *sql.DB
}

// Open starts an in-memory DuckDB instance.
func Open() (*LocalEngine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return NewLocalEngine(db), nil
}

// NewLocalEngine wraps an existing DuckDB handle.
func NewLocalEngine(db *sql.DB) *LocalEngine {
	return &LocalEngine{db: db}
}

// Close releases the DuckDB handle.
func (e *LocalEngine) Close() error {
	return e.db.Close()
}

// DB exposes the underlying handle.
func (e *LocalEngine) DB() *sql.DB {
	return e.db
}

// Load reads a comma-delimited file with a header row. Every cell is kept as
// text; empty fields load as "".
func (e *LocalEngine) Load(ctx context.Context, path string) (*domain.Frame, error) {
	q := fmt.Sprintf("SELECT * FROM read_csv(%s, header = true, delim = ',', all_varchar = true)", ddl.QuoteLiteral(path))
	rows, err := e.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	frame := &domain.Frame{Columns: cols}

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("load %s: scan: %w", path, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		frame.Rows = append(frame.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return frame, nil
}

// AverageWhere computes AVG(avgColumn) over rows whose filterColumn equals
// value, entirely inside DuckDB. Returns NaN when no row matches.
func (e *LocalEngine) AverageWhere(ctx context.Context, path, avgColumn, filterColumn, value string) (float64, error) {
	q := fmt.Sprintf(
		"SELECT AVG(CAST(NULLIF(%s, '') AS DOUBLE)) FROM read_csv(%s, header = true, delim = ',', all_varchar = true) WHERE %s = ?",
		ddl.QuoteIdentifier(avgColumn), ddl.QuoteLiteral(path), ddl.QuoteIdentifier(filterColumn),
	)
	var avg sql.NullFloat64
	if err := e.db.QueryRowContext(ctx, q, value).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average %s where %s = %q: %w", avgColumn, filterColumn, value, err)
	}
	if !avg.Valid {
		return math.NaN(), nil
	}
	return avg.Float64, nil
}
