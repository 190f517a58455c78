package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
	"athena-demo/internal/engine"
	"athena-demo/internal/service/query"
)

// RunOptions selects which pipeline steps run.
type RunOptions struct {
	SkipUpload   bool
	SkipRegister bool
	ReplaceTable bool
}

// Report is the outcome of one pipeline run.
type Report struct {
	Target      domain.ObjectLocation `json:"-"`
	TargetURI   string                `json:"target"`
	Database    string                `json:"database"`
	Table       string                `json:"table"`
	SQL         string                `json:"sql"`
	ExecutionID string                `json:"execution_id,omitempty"`
	State       domain.QueryState     `json:"state,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	Result      *domain.Table         `json:"result,omitempty"`

	RemoteAverage float64 `json:"remote_average"`
	LocalAverage  float64 `json:"local_average"`
	LocalSQLAvg   float64 `json:"local_sql_average"`
	Match         bool    `json:"match"`
}

// Run executes the full flow: upload, register, query, and local
// cross-check. Each step completes before the next starts.
func (a *App) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	cfg := a.Cfg
	target := cfg.ObjectLocation()
	report := &Report{
		Target:    target,
		TargetURI: target.URI(),
		Database:  cfg.DatabaseName,
		Table:     cfg.TableName,
	}

	if !opts.SkipUpload {
		if err := a.Services.Uploader.Upload(ctx, cfg.LocalPath, target); err != nil {
			return report, err
		}
	}

	if !opts.SkipRegister {
		if err := a.Register(ctx, opts.ReplaceTable); err != nil {
			return report, err
		}
	}

	sqlQuery, err := ddl.AverageWhere(cfg.TableName, ddl.RemotePriceColumn, ddl.RemotePropertyTypeColumn, cfg.FilterValue)
	if err != nil {
		return report, domain.ErrValidation("build query: %v", err)
	}
	report.SQL = sqlQuery

	exec, err := a.Services.Runner.Execute(ctx, sqlQuery, cfg.DatabaseName)
	if exec != nil && exec.Status != nil {
		report.ExecutionID = exec.Status.ID
		report.State = exec.Status.State
		report.Reason = exec.Status.Reason
	}
	if err != nil {
		return report, err
	}
	report.Result = exec.Table

	report.RemoteAverage, err = query.ScalarFloat(exec.Table)
	if err != nil {
		return report, err
	}

	if err := a.crossCheck(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// Register creates the database and the external table over the uploaded
// object's prefix, waiting for each statement to finish.
func (a *App) Register(ctx context.Context, replace bool) error {
	cfg := a.Cfg
	if err := a.Services.Registrar.EnsureDatabase(ctx, cfg.DatabaseName); err != nil {
		return err
	}
	def := ddl.RedfinTable(cfg.DatabaseName, cfg.TableName, cfg.ObjectLocation().Prefix())
	return a.Services.Registrar.DefineTable(ctx, def, replace)
}

// LocalAverage computes the filtered mean price of the local file, both
// through the frame operations and directly in DuckDB.
func (a *App) LocalAverage(ctx context.Context) (frameAvg, sqlAvg float64, err error) {
	if a.Local == nil {
		return 0, 0, errors.New("local engine is not configured")
	}
	return LocalAverage(ctx, a.Local, a.Cfg.LocalPath, a.Cfg.FilterValue)
}

// LocalAverage computes the mean price of rows in the CSV at path whose
// property type equals filter. It needs no cloud access.
func LocalAverage(ctx context.Context, local *engine.LocalEngine, path, filter string) (frameAvg, sqlAvg float64, err error) {
	frame, err := local.Load(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	pred, err := engine.Equals(frame, ddl.LocalPropertyTypeColumn, filter)
	if err != nil {
		return 0, 0, fmt.Errorf("local filter: %w", err)
	}
	frameAvg, err = engine.Mean(engine.Filter(frame, pred), ddl.LocalPriceColumn)
	if err != nil {
		return 0, 0, fmt.Errorf("local mean: %w", err)
	}

	sqlAvg, err = local.AverageWhere(ctx, path, ddl.LocalPriceColumn, ddl.LocalPropertyTypeColumn, filter)
	if err != nil {
		return 0, 0, err
	}
	return frameAvg, sqlAvg, nil
}

func (a *App) crossCheck(ctx context.Context, report *Report) error {
	frameAvg, sqlAvg, err := a.LocalAverage(ctx)
	if err != nil {
		return err
	}
	report.LocalAverage = frameAvg
	report.LocalSQLAvg = sqlAvg
	report.Match = Agree(report.RemoteAverage, frameAvg, a.Cfg.Tolerance)

	if !report.Match {
		a.Logger.Warn("remote and local averages differ",
			"remote", report.RemoteAverage, "local", frameAvg, "tolerance", a.Cfg.Tolerance)
	}
	if !Agree(frameAvg, sqlAvg, a.Cfg.Tolerance) {
		a.Logger.Warn("local frame and DuckDB averages differ", "frame", frameAvg, "duckdb", sqlAvg)
	}
	return nil
}

// Agree reports whether x and y are equal within a relative tolerance.
// Two NaNs agree; NaN and a number do not.
func Agree(x, y, tolerance float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	scale := math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
	return math.Abs(x-y) <= tolerance*scale
}

// MarshalJSON encodes NaN averages as null.
func (r *Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		*alias
		RemoteAverage *float64 `json:"remote_average"`
		LocalAverage  *float64 `json:"local_average"`
		LocalSQLAvg   *float64 `json:"local_sql_average"`
	}{
		alias:         (*alias)(r),
		RemoteAverage: finite(r.RemoteAverage),
		LocalAverage:  finite(r.LocalAverage),
		LocalSQLAvg:   finite(r.LocalSQLAvg),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
