package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"athena-demo/internal/domain"
)

// DuckQueryEngine is a domain.QueryEngine backed by DuckDB. SELECT
// statements run against db; DDL statements succeed without effect, since
// the Hive dialect is not DuckDB's. Every query completes on the first
// status check.
type DuckQueryEngine struct {
	db *sql.DB

	mu      sync.Mutex
	seq     int
	results map[string]*domain.ResultSet
	errors  map[string]string
	SQL     []string // submitted statements in order
}

// NewDuckQueryEngine wraps an open DuckDB handle.
func NewDuckQueryEngine(db *sql.DB) *DuckQueryEngine {
	return &DuckQueryEngine{
		db:      db,
		results: map[string]*domain.ResultSet{},
		errors:  map[string]string{},
	}
}

// StartQuery runs the statement synchronously and stores its outcome.
func (e *DuckQueryEngine) StartQuery(ctx context.Context, req domain.QueryRequest) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	id := fmt.Sprintf("duck-%d", e.seq)
	e.SQL = append(e.SQL, req.SQL)

	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(req.SQL)), "SELECT") {
		e.results[id] = &domain.ResultSet{}
		return id, nil
	}
	rs, err := e.query(ctx, req.SQL)
	if err != nil {
		e.errors[id] = err.Error()
		return id, nil
	}
	e.results[id] = rs
	return id, nil
}

// QueryStatus reports SUCCEEDED, or FAILED with the DuckDB error message.
func (e *DuckQueryEngine) QueryStatus(_ context.Context, executionID string) (*domain.QueryStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if msg, ok := e.errors[executionID]; ok {
		return &domain.QueryStatus{ID: executionID, State: domain.QueryStateFailed, Reason: msg}, nil
	}
	if _, ok := e.results[executionID]; !ok {
		return nil, domain.ErrNotFound("execution %q not found", executionID)
	}
	return &domain.QueryStatus{ID: executionID, State: domain.QueryStateSucceeded}, nil
}

// QueryResults returns the stored result set.
func (e *DuckQueryEngine) QueryResults(_ context.Context, executionID string) (*domain.ResultSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rs, ok := e.results[executionID]
	if !ok {
		return nil, domain.ErrNotFound("no results for execution %q", executionID)
	}
	return rs, nil
}

// StopQuery is a no-op; queries finish on submission.
func (e *DuckQueryEngine) StopQuery(context.Context, string) error { return nil }

func (e *DuckQueryEngine) query(ctx context.Context, q string) (*domain.ResultSet, error) {
	rows, err := e.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &domain.ResultSet{}
	header := make(domain.ResultRow, len(cols))
	for i, c := range cols {
		rs.Columns = append(rs.Columns, domain.ColumnInfo{Name: c, Label: c})
		header[i] = Str(c)
	}
	rs.Rows = append(rs.Rows, header)

	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(domain.ResultRow, len(cols))
		for i, v := range vals {
			if v != nil {
				row[i] = Str(fmt.Sprintf("%v", v))
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}
