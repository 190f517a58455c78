// Package catalog registers databases and external tables in the query
// service's catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
)

// StatementRunner executes a statement and returns only once it has
// reached SUCCEEDED. Implemented by query.Runner.
type StatementRunner interface {
	Run(ctx context.Context, sqlQuery, database string) (*domain.QueryStatus, error)
}

// Registrar issues catalog DDL. Each call blocks until the statement has
// completed, so a table is queryable as soon as DefineTable returns.
type Registrar struct {
	runner StatementRunner
	logger *slog.Logger
}

// NewRegistrar creates a Registrar.
func NewRegistrar(runner StatementRunner, logger *slog.Logger) *Registrar {
	return &Registrar{runner: runner, logger: logger}
}

// EnsureDatabase creates the database if it does not exist.
func (r *Registrar) EnsureDatabase(ctx context.Context, name string) error {
	stmt, err := ddl.CreateDatabase(name)
	if err != nil {
		return domain.ErrValidation("create database: %v", err)
	}
	if _, err := r.runner.Run(ctx, stmt, ""); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	r.logger.Info("database ready", "database", name)
	return nil
}

// DefineTable registers def as an external table. With replace set, an
// existing table of the same name is dropped first; the data under its
// location is untouched.
func (r *Registrar) DefineTable(ctx context.Context, def domain.TableDefinition, replace bool) error {
	stmt, err := ddl.CreateExternalTable(def)
	if err != nil {
		return domain.ErrValidation("create table: %v", err)
	}

	if replace {
		drop, err := ddl.DropTable(def.Database, def.Table)
		if err != nil {
			return domain.ErrValidation("drop table: %v", err)
		}
		if _, err := r.runner.Run(ctx, drop, def.Database); err != nil {
			return fmt.Errorf("drop table %s.%s: %w", def.Database, def.Table, err)
		}
	}

	r.logger.Debug("creating external table", "sql", stmt)
	if _, err := r.runner.Run(ctx, stmt, def.Database); err != nil {
		return fmt.Errorf("create table %s.%s: %w", def.Database, def.Table, err)
	}
	r.logger.Info("table registered", "database", def.Database, "table", def.Table, "location", def.Location)
	return nil
}
