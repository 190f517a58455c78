// Package query runs SQL through an asynchronous query engine: submit, poll
// until terminal, retrieve, and format.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"athena-demo/internal/config"
	"athena-demo/internal/domain"
)

const (
	defaultPollInterval = 5 * time.Second
	stopTimeout         = 10 * time.Second
)

// Options controls submission and polling.
type Options struct {
	OutputLocation string
	WorkGroup      string
	PollInterval   time.Duration // fixed wait between status checks
	Timeout        time.Duration // bound on Wait; 0 means only the caller's context applies

	// ContinueOnFailure makes Execute log a FAILED or CANCELLED query and
	// still attempt result retrieval instead of returning QueryFailedError.
	ContinueOnFailure bool
}

// OptionsFromConfig extracts runner options from the pipeline configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputLocation:    cfg.OutputLocation,
		WorkGroup:         cfg.WorkGroup,
		PollInterval:      cfg.PollInterval,
		Timeout:           cfg.QueryTimeout,
		ContinueOnFailure: cfg.ContinueOnQueryFailure,
	}
}

// Runner drives queries through a domain.QueryEngine.
type Runner struct {
	engine domain.QueryEngine
	opts   Options
	logger *slog.Logger
}

// NewRunner creates a Runner. A non-positive poll interval falls back to 5s.
func NewRunner(engine domain.QueryEngine, opts Options, logger *slog.Logger) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Runner{engine: engine, opts: opts, logger: logger}
}

// Submit starts sqlQuery in database and returns the execution ID
// immediately.
func (r *Runner) Submit(ctx context.Context, sqlQuery, database string) (string, error) {
	if strings.TrimSpace(sqlQuery) == "" {
		return "", domain.ErrValidation("sql query is required")
	}
	id, err := r.engine.StartQuery(ctx, domain.QueryRequest{
		SQL:            sqlQuery,
		Database:       database,
		OutputLocation: r.opts.OutputLocation,
		WorkGroup:      r.opts.WorkGroup,
		RequestToken:   uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("submit query: %w", err)
	}
	r.logger.Info("query submitted", "execution_id", id, "database", database)
	return id, nil
}

// Wait polls the execution until it reaches a terminal state and returns
// that status. The first check is immediate; later checks are spaced by
// PollInterval. A FAILED state is logged with its reason and returned
// without an error.
//
// When ctx ends (or Timeout elapses) first, the query is stopped on a
// best-effort basis and the context error is returned wrapped.
func (r *Runner) Wait(ctx context.Context, executionID string) (*domain.QueryStatus, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	limiter := rate.NewLimiter(rate.Every(r.opts.PollInterval), 1)
	for checks := 1; ; checks++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, r.abandon(executionID, waitErr(ctx, err))
		}

		status, err := r.engine.QueryStatus(ctx, executionID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.abandon(executionID, ctx.Err())
			}
			return nil, fmt.Errorf("poll query %s: %w", executionID, err)
		}

		if !status.State.Terminal() {
			r.logger.Debug("query in progress", "execution_id", executionID, "state", status.State, "checks", checks)
			continue
		}

		switch status.State {
		case domain.QueryStateFailed:
			r.logger.Warn("query failed", "execution_id", executionID, "reason", status.Reason)
		case domain.QueryStateCancelled:
			r.logger.Warn("query cancelled", "execution_id", executionID, "reason", status.Reason)
		default:
			r.logger.Info("query succeeded", "execution_id", executionID, "checks", checks)
		}
		return status, nil
	}
}

// Results fetches the raw result set of a finished execution.
func (r *Runner) Results(ctx context.Context, executionID string) (*domain.ResultSet, error) {
	rs, err := r.engine.QueryResults(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	return rs, nil
}

// Run submits a statement and waits for it, treating anything other than
// SUCCEEDED as an error. Used for statements whose completion must be
// confirmed before the caller proceeds, such as DDL.
func (r *Runner) Run(ctx context.Context, sqlQuery, database string) (*domain.QueryStatus, error) {
	id, err := r.Submit(ctx, sqlQuery, database)
	if err != nil {
		return nil, err
	}
	status, err := r.Wait(ctx, id)
	if err != nil {
		return nil, err
	}
	if status.State != domain.QueryStateSucceeded {
		return status, domain.ErrQueryFailed(status)
	}
	return status, nil
}

// Execute submits sqlQuery, waits for completion, and returns the formatted
// result. Unless ContinueOnFailure is set, a FAILED or CANCELLED query
// returns a *domain.QueryFailedError alongside the execution.
func (r *Runner) Execute(ctx context.Context, sqlQuery, database string) (*domain.Execution, error) {
	id, err := r.Submit(ctx, sqlQuery, database)
	if err != nil {
		return nil, err
	}
	status, err := r.Wait(ctx, id)
	if err != nil {
		return nil, err
	}

	exec := &domain.Execution{Status: status}
	if status.State != domain.QueryStateSucceeded {
		if !r.opts.ContinueOnFailure {
			return exec, domain.ErrQueryFailed(status)
		}
		r.logger.Warn("continuing after unsuccessful query", "execution_id", id, "state", status.State)
	}

	rs, err := r.Results(ctx, id)
	if err != nil {
		return exec, err
	}
	exec.Table = FormatResult(rs)
	return exec, nil
}

// abandon stops an execution the caller is no longer waiting for.
func (r *Runner) abandon(executionID string, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := r.engine.StopQuery(ctx, executionID); err != nil {
		r.logger.Warn("failed to stop abandoned query", "execution_id", executionID, "error", err)
	} else {
		r.logger.Info("stopped abandoned query", "execution_id", executionID)
	}
	return fmt.Errorf("wait for query %s: %w", executionID, cause)
}

// waitErr maps a limiter error to the context error behind it. The limiter
// refuses early when the next check would land past the deadline.
func waitErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return context.DeadlineExceeded
	}
	return err
}
