// Package app wires configuration, storage and use cases into the services
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"adtest/internal/adapter/fetch"
	"adtest/internal/adapter/memory"
	"adtest/internal/adapter/postgres"
	"adtest/internal/adapter/sqlite"
	"adtest/internal/adapter/usecase"
	"adtest/internal/config"
	"adtest/internal/config/configs"
	"adtest/internal/core/archive"
	"adtest/internal/core/ingest"
	"adtest/internal/core/port"
	"adtest/internal/core/render"
	"adtest/internal/db"
	"adtest/internal/preview"
	"adtest/internal/session"
)

// App holds the wired services. Close releases the storage backend and any
// open drafts.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Previews *preview.Registry
	Tests    *usecase.TestUseCase
	Drafts   *usecase.DraftUseCase
	Sessions *session.Manager

	closers []func()
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg configs.Logger, w io.Writer) *slog.Logger {
	var handler slog.Handler
	opts := cfg.HandlerOptions()
	switch cfg.SlogFormat() {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New opens the configured storage backend and wires the services over it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	kv, closeKV, err := OpenKVStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a, err := NewWithStore(cfg, kv, logger)
	if err != nil {
		closeKV()
		return nil, err
	}
	a.closers = append(a.closers, closeKV)
	return a, nil
}

// NewWithStore wires the services over an already opened store.
func NewWithStore(cfg config.Config, kv port.KVStore, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Render.Location()
	if err != nil {
		return nil, err
	}

	previews := preview.NewRegistry()
	gen := render.New(loc)
	packager := archive.NewPackager(fetch.NewFetcher(cfg.Fetch.Timeout), gen, logger)
	tests := usecase.NewTestUseCase(kv, cfg.Storage.Key, gen, packager, logger)
	drafts := usecase.NewDraftUseCase(
		ingest.New(previews, logger),
		ingest.Policy{MaxSize: cfg.Ingest.MaxFileSize},
		tests,
		logger,
	)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Previews: previews,
		Tests:    tests,
		Drafts:   drafts,
		Sessions: session.NewManager(cfg.Auth),
	}
	a.closers = append(a.closers, drafts.Close)
	return a, nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// OpenKVStore opens the backend selected by cfg.Storage.Driver. The returned
// func closes it.
func OpenKVStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.KVStore, func(), error) {
	switch cfg.Storage.Driver {
	case configs.DriverMemory:
		return memory.NewKVStore(), func() {}, nil

	case configs.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("sqlite store opened", slog.String("path", cfg.Storage.SQLitePath))
		return sqlite.NewKVStore(sqlDB), func() { _ = sqlDB.Close() }, nil

	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		return postgres.NewKVStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
