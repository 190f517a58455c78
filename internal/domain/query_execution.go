package domain

import "time"

// QueryState represents the lifecycle state of an asynchronous query execution.
type QueryState string

// Query execution lifecycle states.
const (
	QueryStateQueued    QueryState = "QUEUED"
	QueryStateRunning   QueryState = "RUNNING"
	QueryStateSucceeded QueryState = "SUCCEEDED"
	QueryStateFailed    QueryState = "FAILED"
	QueryStateCancelled QueryState = "CANCELLED"
)

// Terminal reports whether no further transition can occur from s.
func (s QueryState) Terminal() bool {
	switch s {
	case QueryStateSucceeded, QueryStateFailed, QueryStateCancelled:
		return true
	default:
		return false
	}
}

// Valid reports whether s is one of the known states.
func (s QueryState) Valid() bool {
	switch s {
	case QueryStateQueued, QueryStateRunning, QueryStateSucceeded, QueryStateFailed, QueryStateCancelled:
		return true
	default:
		return false
	}
}

// QueryRequest is a single submission to the query service.
type QueryRequest struct {
	SQL            string
	Database       string
	OutputLocation string
	WorkGroup      string
	RequestToken   string
}

// QueryStatus is one observation of an execution's state.
type QueryStatus struct {
	ID          string
	State       QueryState
	Reason      string
	SubmittedAt *time.Time
	CompletedAt *time.Time
}

// ColumnInfo describes one result column as reported by the query service.
type ColumnInfo struct {
	Name  string
	Label string
	Type  string
}

// ResultRow is one raw result row. A nil cell is a NULL datum.
type ResultRow []*string

// ResultSet is the raw query result. The first row repeats the column
// header for SELECT statements.
type ResultSet struct {
	Columns []ColumnInfo
	Rows    []ResultRow
}

// Table is a formatted query result with the header row removed.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Execution bundles everything observed for one query.
type Execution struct {
	Status *QueryStatus
	Table  *Table
}
