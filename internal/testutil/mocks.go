// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"io"
	"strings"

	"athena-demo/internal/domain"
)

// === Query Engine Mock ===

// MockQueryEngine implements domain.QueryEngine for testing.
type MockQueryEngine struct {
	StartFn   func(ctx context.Context, req domain.QueryRequest) (string, error)
	StatusFn  func(ctx context.Context, executionID string) (*domain.QueryStatus, error)
	ResultsFn func(ctx context.Context, executionID string) (*domain.ResultSet, error)
	StopFn    func(ctx context.Context, executionID string) error

	Requests     []domain.QueryRequest // collected submissions for assertions
	StatusCalls  int
	ResultsCalls int
	Stopped      []string
}

// StartQuery implements the interface method for testing.
func (m *MockQueryEngine) StartQuery(ctx context.Context, req domain.QueryRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.StartFn != nil {
		return m.StartFn(ctx, req)
	}
	return "exec-1", nil
}

// QueryStatus implements the interface method for testing.
func (m *MockQueryEngine) QueryStatus(ctx context.Context, executionID string) (*domain.QueryStatus, error) {
	m.StatusCalls++
	if m.StatusFn != nil {
		return m.StatusFn(ctx, executionID)
	}
	panic("unexpected call to MockQueryEngine.QueryStatus")
}

// QueryResults implements the interface method for testing.
func (m *MockQueryEngine) QueryResults(ctx context.Context, executionID string) (*domain.ResultSet, error) {
	m.ResultsCalls++
	if m.ResultsFn != nil {
		return m.ResultsFn(ctx, executionID)
	}
	panic("unexpected call to MockQueryEngine.QueryResults")
}

// StopQuery implements the interface method for testing.
func (m *MockQueryEngine) StopQuery(ctx context.Context, executionID string) error {
	m.Stopped = append(m.Stopped, executionID)
	if m.StopFn != nil {
		return m.StopFn(ctx, executionID)
	}
	return nil
}

// StatusSequence returns a StatusFn that yields one state per call and
// repeats the last state once the sequence is exhausted.
func StatusSequence(reason string, states ...domain.QueryState) func(context.Context, string) (*domain.QueryStatus, error) {
	i := 0
	return func(_ context.Context, id string) (*domain.QueryStatus, error) {
		s := states[len(states)-1]
		if i < len(states) {
			s = states[i]
		}
		i++
		st := &domain.QueryStatus{ID: id, State: s}
		if s == domain.QueryStateFailed {
			st.Reason = reason
		}
		return st, nil
	}
}

// === Object Store Mock ===

// MockObjectStore implements domain.ObjectStore in memory.
type MockObjectStore struct {
	PutFn   func(ctx context.Context, loc domain.ObjectLocation, body io.Reader, contentType string) error
	Objects map[string]string // keyed by s3:// URI
}

// PutObject implements the interface method for testing.
func (m *MockObjectStore) PutObject(ctx context.Context, loc domain.ObjectLocation, body io.Reader, contentType string) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, loc, body, contentType)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, body); err != nil {
		return err
	}
	if m.Objects == nil {
		m.Objects = map[string]string{}
	}
	m.Objects[loc.URI()] = b.String()
	return nil
}

// Str returns a pointer to s, for building raw result rows.
func Str(s string) *string { return &s }

// RawResult builds a header-first result set from column names and rows.
func RawResult(columns []string, rows ...[]string) *domain.ResultSet {
	rs := &domain.ResultSet{}
	header := make(domain.ResultRow, len(columns))
	for i, c := range columns {
		rs.Columns = append(rs.Columns, domain.ColumnInfo{Name: c, Label: c, Type: "varchar"})
		header[i] = Str(c)
	}
	rs.Rows = append(rs.Rows, header)
	for _, r := range rows {
		out := make(domain.ResultRow, len(r))
		for i, v := range r {
			out[i] = Str(v)
		}
		rs.Rows = append(rs.Rows, out)
	}
	return rs
}
