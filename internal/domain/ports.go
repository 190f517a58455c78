package domain

import (
	"context"
	"io"
)

// QueryEngine is an asynchronous SQL query service.
// Implemented by athena.Client.
type QueryEngine interface {
	StartQuery(ctx context.Context, req QueryRequest) (string, error)
	QueryStatus(ctx context.Context, executionID string) (*QueryStatus, error)
	QueryResults(ctx context.Context, executionID string) (*ResultSet, error)
	StopQuery(ctx context.Context, executionID string) error
}

// ObjectStore writes objects to blob storage.
// Implemented by storage.S3Store.
type ObjectStore interface {
	PutObject(ctx context.Context, loc ObjectLocation, body io.Reader, contentType string) error
}
