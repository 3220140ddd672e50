package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory sqlite database.
const MemoryDSN = ":memory:"

const jobsTable = "extraction_jobs"

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB wraps an Ent SQL driver plus the pgx pool behind it when the DSN is postgres.
type DB struct {
	Driver  *entsql.Driver
	Dialect string // dialect.Postgres or dialect.SQLite

	pool   *pgxpool.Pool
	logger *slog.Logger
}

// IsPostgresDSN reports whether dsn should be opened with pgx.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to postgres (pgx pool wrapped for Ent) or sqlite for any other DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if IsPostgresDSN(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "resumeocr"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dialCtx, cancel := withDialTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	drv := entsql.OpenDB(dialect.Postgres, stdlib.OpenDBFromPool(pool))

	logger.Info("successfully connected to database")
	return &DB{Driver: drv, Dialect: dialect.Postgres, pool: pool, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = MemoryDSN
	}
	logger.Info("connecting to database", "dialect", dialect.SQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	pingCtx, cancel := withDialTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := drv.Exec(ctx, "PRAGMA busy_timeout = 5000", []any{}, nil); err != nil {
		logger.Warn("sqlite busy_timeout not applied", "error", err)
	}
	return &DB{Driver: drv, Dialect: dialect.SQLite, logger: logger}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	d.logger.Info("closing database connections")
	if err := d.Driver.Close(); err != nil {
		d.logger.Error("failed to close ent driver", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the database within timeout.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var err error
	if d.pool != nil {
		err = d.pool.Ping(ctx)
	} else {
		err = d.Driver.DB().PingContext(ctx)
	}
	if err != nil {
		d.logger.Error("database ping failed", "error", err)
		return err
	}
	d.logger.Debug("database ping successful")
	return nil
}

// builder returns the dialect-aware statement builder for this database.
func (d *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.Dialect)
}

// Migrate creates the extraction_jobs table and its hash index.
func (d *DB) Migrate(ctx context.Context) error {
	for _, q := range migrationQueries(d.Dialect) {
		query, args := q.Query()
		if err := d.Driver.Exec(ctx, query, args, nil); err != nil {
			d.logger.Error("migration failed", "error", err)
			return fmt.Errorf("migrate %s: %w", jobsTable, err)
		}
	}
	d.logger.Info("migrations applied", "dialect", d.Dialect)
	return nil
}

func migrationQueries(name string) []entsql.Querier {
	b := entsql.Dialect(name)
	ts := "timestamp"
	if name == dialect.Postgres {
		ts = "timestamptz"
	}
	notNull := func(col, typ string) *entsql.ColumnBuilder {
		return entsql.Column(col).Type(typ).Attr("NOT NULL")
	}
	return []entsql.Querier{
		b.CreateTable(jobsTable).IfNotExists().
			Columns(
				notNull("id", "text"),
				notNull("filename", "text"),
				notNull("content_hash", "text"),
				notNull("format", "text"),
				notNull("status", "text"),
				entsql.Column("method").Type("text"),
				notNull("pages", "integer").Attr("DEFAULT 0"),
				notNull("text_len", "integer").Attr("DEFAULT 0"),
				notNull("preprocessed", "boolean").Attr("DEFAULT FALSE"),
				entsql.Column("record_json").Type("text"),
				entsql.Column("error_message").Type("text"),
				entsql.Column("archive_uri").Type("text"),
				notNull("created_at", ts),
				entsql.Column("finished_at").Type(ts),
			).
			PrimaryKey("id"),
		b.CreateIndex("extraction_jobs_hash_status_idx").IfNotExists().
			Table(jobsTable).
			Columns("content_hash", "status"),
	}
}

// timeArg binds a timestamp; sqlite gets RFC3339 text so ordering by the column stays chronological.
func (d *DB) timeArg(t time.Time) any {
	if d.Dialect == dialect.Postgres {
		return t
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func withDialTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
