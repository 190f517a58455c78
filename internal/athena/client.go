// Package athena adapts the Amazon Athena API to domain.QueryEngine.
package athena

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"athena-demo/internal/domain"
)

// Compile-time check: Client implements domain.QueryEngine.
var _ domain.QueryEngine = (*Client)(nil)

// API is the subset of *athena.Client used by Client.
type API interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
	StopQueryExecution(ctx context.Context, params *athena.StopQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StopQueryExecutionOutput, error)
}

// Client runs queries through Athena.
type Client struct {
	api API
}

// NewClient wraps an Athena API implementation.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewClientFromConfig builds a Client from an aws.Config.
func NewClientFromConfig(awsCfg aws.Config) *Client {
	return NewClient(athena.NewFromConfig(awsCfg))
}

// StartQuery submits req and returns the execution ID without waiting.
func (c *Client) StartQuery(ctx context.Context, req domain.QueryRequest) (string, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(req.SQL),
	}
	if req.Database != "" {
		in.QueryExecutionContext = &types.QueryExecutionContext{Database: aws.String(req.Database)}
	}
	if req.OutputLocation != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(req.OutputLocation)}
	}
	if req.WorkGroup != "" {
		in.WorkGroup = aws.String(req.WorkGroup)
	}
	if req.RequestToken != "" {
		in.ClientRequestToken = aws.String(req.RequestToken)
	}

	out, err := c.api.StartQueryExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	id := aws.ToString(out.QueryExecutionId)
	if id == "" {
		return "", fmt.Errorf("start query execution: empty execution id")
	}
	return id, nil
}

// QueryStatus returns the current state of an execution.
func (c *Client) QueryStatus(ctx context.Context, executionID string) (*domain.QueryStatus, error) {
	out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(executionID),
	})
	if err != nil {
		return nil, fmt.Errorf("get query execution %s: %w", executionID, err)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return nil, fmt.Errorf("get query execution %s: response has no status", executionID)
	}

	st := out.QueryExecution.Status
	state := domain.QueryState(st.State)
	if !state.Valid() {
		return nil, fmt.Errorf("get query execution %s: unknown state %q", executionID, st.State)
	}
	status := &domain.QueryStatus{
		ID:          executionID,
		State:       state,
		SubmittedAt: st.SubmissionDateTime,
		CompletedAt: st.CompletionDateTime,
	}
	if st.StateChangeReason != nil {
		status.Reason = *st.StateChangeReason
	}
	if status.Reason == "" && st.AthenaError != nil && st.AthenaError.ErrorMessage != nil {
		status.Reason = *st.AthenaError.ErrorMessage
	}
	return status, nil
}

// QueryResults fetches every page of results for an execution. The header
// row is left in place; only the first page carries it.
func (c *Client) QueryResults(ctx context.Context, executionID string) (*domain.ResultSet, error) {
	rs := &domain.ResultSet{}
	var token *string
	for page := 0; ; page++ {
		out, err := c.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(executionID),
			NextToken:        token,
		})
		if err != nil {
			return nil, fmt.Errorf("get query results %s (page %d): %w", executionID, page, err)
		}
		if out.ResultSet != nil {
			if page == 0 && out.ResultSet.ResultSetMetadata != nil {
				rs.Columns = convertColumns(out.ResultSet.ResultSetMetadata.ColumnInfo)
			}
			for _, row := range out.ResultSet.Rows {
				rs.Rows = append(rs.Rows, convertRow(row))
			}
		}
		if aws.ToString(out.NextToken) == "" {
			return rs, nil
		}
		token = out.NextToken
	}
}

// StopQuery asks Athena to cancel an execution.
func (c *Client) StopQuery(ctx context.Context, executionID string) error {
	_, err := c.api.StopQueryExecution(ctx, &athena.StopQueryExecutionInput{
		QueryExecutionId: aws.String(executionID),
	})
	if err != nil {
		return fmt.Errorf("stop query execution %s: %w", executionID, err)
	}
	return nil
}

func convertColumns(info []types.ColumnInfo) []domain.ColumnInfo {
	cols := make([]domain.ColumnInfo, len(info))
	for i, ci := range info {
		cols[i] = domain.ColumnInfo{
			Name:  aws.ToString(ci.Name),
			Label: aws.ToString(ci.Label),
			Type:  aws.ToString(ci.Type),
		}
	}
	return cols
}

func convertRow(row types.Row) domain.ResultRow {
	out := make(domain.ResultRow, len(row.Data))
	for i, d := range row.Data {
		out[i] = d.VarCharValue
	}
	return out
}
