package athena

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-demo/internal/domain"
)

type mockAPI struct {
	StartFn   func(*athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error)
	GetFn     func(*athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error)
	ResultsFn func(*athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error)
	StopFn    func(*athena.StopQueryExecutionInput) (*athena.StopQueryExecutionOutput, error)
}

func (m *mockAPI) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	return m.StartFn(in)
}

func (m *mockAPI) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	return m.GetFn(in)
}

func (m *mockAPI) GetQueryResults(_ context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	return m.ResultsFn(in)
}

func (m *mockAPI) StopQueryExecution(_ context.Context, in *athena.StopQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StopQueryExecutionOutput, error) {
	return m.StopFn(in)
}

func row(cells ...*string) types.Row {
	data := make([]types.Datum, len(cells))
	for i, c := range cells {
		data[i] = types.Datum{VarCharValue: c}
	}
	return types.Row{Data: data}
}

func TestClient_StartQuery(t *testing.T) {
	var got *athena.StartQueryExecutionInput
	c := NewClient(&mockAPI{StartFn: func(in *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		got = in
		return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q-1")}, nil
	}})

	id, err := c.StartQuery(context.Background(), domain.QueryRequest{
		SQL:            "SELECT 1",
		Database:       "redfin",
		OutputLocation: "s3://b/athena-results/",
		WorkGroup:      "primary",
		RequestToken:   "token-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", id)

	assert.Equal(t, "SELECT 1", aws.ToString(got.QueryString))
	assert.Equal(t, "redfin", aws.ToString(got.QueryExecutionContext.Database))
	assert.Equal(t, "s3://b/athena-results/", aws.ToString(got.ResultConfiguration.OutputLocation))
	assert.Equal(t, "primary", aws.ToString(got.WorkGroup))
	assert.Equal(t, "token-123", aws.ToString(got.ClientRequestToken))
}

func TestClient_StartQuery_OmitsEmptyContext(t *testing.T) {
	var got *athena.StartQueryExecutionInput
	c := NewClient(&mockAPI{StartFn: func(in *athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		got = in
		return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q-1")}, nil
	}})

	_, err := c.StartQuery(context.Background(), domain.QueryRequest{SQL: "CREATE DATABASE IF NOT EXISTS `redfin`"})
	require.NoError(t, err)
	assert.Nil(t, got.QueryExecutionContext)
	assert.Nil(t, got.ResultConfiguration)
	assert.Nil(t, got.WorkGroup)
	assert.Nil(t, got.ClientRequestToken)
}

func TestClient_StartQuery_Errors(t *testing.T) {
	c := NewClient(&mockAPI{StartFn: func(*athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		return nil, errors.New("ThrottlingException")
	}})
	_, err := c.StartQuery(context.Background(), domain.QueryRequest{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ThrottlingException")

	c = NewClient(&mockAPI{StartFn: func(*athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error) {
		return &athena.StartQueryExecutionOutput{}, nil
	}})
	_, err = c.StartQuery(context.Background(), domain.QueryRequest{SQL: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty execution id")
}

func TestClient_QueryStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     *types.QueryExecutionStatus
		wantState  domain.QueryState
		wantReason string
		wantErr    string
	}{
		{
			name:      "running",
			status:    &types.QueryExecutionStatus{State: types.QueryExecutionStateRunning},
			wantState: domain.QueryStateRunning,
		},
		{
			name: "failed_with_reason",
			status: &types.QueryExecutionStatus{
				State:             types.QueryExecutionStateFailed,
				StateChangeReason: aws.String("Insufficient Permissions"),
			},
			wantState:  domain.QueryStateFailed,
			wantReason: "Insufficient Permissions",
		},
		{
			name: "failed_with_athena_error_only",
			status: &types.QueryExecutionStatus{
				State:       types.QueryExecutionStateFailed,
				AthenaError: &types.AthenaError{ErrorMessage: aws.String("SYNTAX_ERROR")},
			},
			wantState:  domain.QueryStateFailed,
			wantReason: "SYNTAX_ERROR",
		},
		{
			name:      "cancelled",
			status:    &types.QueryExecutionStatus{State: types.QueryExecutionStateCancelled},
			wantState: domain.QueryStateCancelled,
		},
		{
			name:    "unknown_state",
			status:  &types.QueryExecutionStatus{State: "PAUSED"},
			wantErr: "unknown state",
		},
		{
			name:    "no_status",
			status:  nil,
			wantErr: "no status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&mockAPI{GetFn: func(in *athena.GetQueryExecutionInput) (*athena.GetQueryExecutionOutput, error) {
				assert.Equal(t, "q-1", aws.ToString(in.QueryExecutionId))
				return &athena.GetQueryExecutionOutput{
					QueryExecution: &types.QueryExecution{Status: tt.status},
				}, nil
			}})

			got, err := c.QueryStatus(context.Background(), "q-1")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "q-1", got.ID)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestClient_QueryResults_Paginates(t *testing.T) {
	pages := map[string]*athena.GetQueryResultsOutput{
		"": {
			ResultSet: &types.ResultSet{
				ResultSetMetadata: &types.ResultSetMetadata{ColumnInfo: []types.ColumnInfo{
					{Name: aws.String("average_price"), Label: aws.String("average_price"), Type: aws.String("double")},
				}},
				Rows: []types.Row{row(aws.String("average_price")), row(aws.String("200.0"))},
			},
			NextToken: aws.String("page-2"),
		},
		"page-2": {
			ResultSet: &types.ResultSet{Rows: []types.Row{row(nil)}},
		},
	}
	var calls int
	c := NewClient(&mockAPI{ResultsFn: func(in *athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
		calls++
		return pages[aws.ToString(in.NextToken)], nil
	}})

	rs, err := c.QueryResults(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, rs.Columns, 1)
	assert.Equal(t, domain.ColumnInfo{Name: "average_price", Label: "average_price", Type: "double"}, rs.Columns[0])
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, "average_price", *rs.Rows[0][0])
	assert.Equal(t, "200.0", *rs.Rows[1][0])
	assert.Nil(t, rs.Rows[2][0])
}

func TestClient_QueryResults_Error(t *testing.T) {
	c := NewClient(&mockAPI{ResultsFn: func(*athena.GetQueryResultsInput) (*athena.GetQueryResultsOutput, error) {
		return nil, errors.New("InvalidRequestException: Query has not yet finished")
	}})
	_, err := c.QueryResults(context.Background(), "q-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not yet finished")
}

func TestClient_StopQuery(t *testing.T) {
	var stopped string
	c := NewClient(&mockAPI{StopFn: func(in *athena.StopQueryExecutionInput) (*athena.StopQueryExecutionOutput, error) {
		stopped = aws.ToString(in.QueryExecutionId)
		return &athena.StopQueryExecutionOutput{}, nil
	}})
	require.NoError(t, c.StopQuery(context.Background(), "q-9"))
	assert.Equal(t, "q-9", stopped)
}
