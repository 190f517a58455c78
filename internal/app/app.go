// Package app wires the pipeline components from configuration and runs the
// upload, register, query, and cross-check flow.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"athena-demo/internal/athena"
	"athena-demo/internal/awsclient"
	"athena-demo/internal/config"
	"athena-demo/internal/domain"
	"athena-demo/internal/engine"
	"athena-demo/internal/service/catalog"
	"athena-demo/internal/service/query"
	"athena-demo/internal/storage"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Store  domain.ObjectStore
	Engine domain.QueryEngine
	Local  *engine.LocalEngine
	Logger *slog.Logger
}

// Services groups the pipeline components.
type Services struct {
	Uploader  *storage.Uploader
	Registrar *catalog.Registrar
	Runner    *query.Runner
}

// App holds the fully-wired pipeline.
type App struct {
	Cfg      *config.Config
	Services Services
	Local    *engine.LocalEngine
	Logger   *slog.Logger
}

// New wires services from deps. The configuration is validated here so
// every component sees a complete Config.
func New(deps Deps) (*App, error) {
	if deps.Cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := deps.Cfg.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runner := query.NewRunner(deps.Engine, query.OptionsFromConfig(deps.Cfg), logger.With("component", "query"))
	return &App{
		Cfg: deps.Cfg,
		Services: Services{
			Uploader:  storage.NewUploader(deps.Store, logger.With("component", "storage")),
			Registrar: catalog.NewRegistrar(runner, logger.With("component", "catalog")),
			Runner:    runner,
		},
		Local:  deps.Local,
		Logger: logger,
	}, nil
}

// NewFromConfig builds real S3, Athena, and DuckDB clients. Callers must
// Close the returned App.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	local, err := engine.Open()
	if err != nil {
		return nil, err
	}
	a, err := New(Deps{
		Cfg:    cfg,
		Store:  storage.NewS3StoreFromConfig(awsCfg, cfg),
		Engine: athena.NewClientFromConfig(awsCfg),
		Local:  local,
		Logger: logger,
	})
	if err != nil {
		_ = local.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the local engine.
func (a *App) Close() error {
	if a.Local == nil {
		return nil
	}
	return a.Local.Close()
}
