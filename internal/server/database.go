package server

import (
	"context"
	"log/slog"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
)

// ConnectDB opens the job store described by cfg and applies the schema.
// An empty DSN opens an in-memory sqlite store.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = repository.MemoryDSN
	}

	logger.Info("connecting to database", "postgres", repository.IsPostgresDSN(dsn))
	db, err := repository.Open(ctx, repository.Config{
		DSN:              dsn,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", db.Dialect)
	return db, nil
}
