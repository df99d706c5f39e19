// Package dbpool owns the PostgreSQL connection pool shared by the stores,
// the migrator and the readiness probe.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxConns is used when Options.MaxConns is not positive.
const DefaultMaxConns = 21

const (
	statementTimeout = 30 * time.Second
	pingTimeout      = 3 * time.Second
	defaultAppName   = "gigadmin"
)

// Options configures NewPool.
type Options struct {
	URL      string
	MaxConns int32
	// MinConns is clamped to MaxConns.
	MinConns int32
	// AppName shows up in pg_stat_activity; it defaults to "gigadmin".
	AppName string
}

// Pool is the connection pool used by every store. Sessions run in UTC so
// timestamps recorded in the audit log compare the same way regardless of
// the server's locale.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a pool and pings the database once before returning.
func NewPool(ctx context.Context, opts Options) (*Pool, error) {
	if opts.URL == "" {
		return nil, errors.New("database URL is empty")
	}

	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	appName := opts.AppName
	if appName == "" {
		appName = defaultAppName
	}

	params := cfg.ConnConfig.RuntimeParams
	params["application_name"] = appName
	params["statement_timeout"] = fmt.Sprint(statementTimeout.Milliseconds())
	params["timezone"] = "UTC"

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = min(opts.MinConns, maxConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{pool: pool}
	if err := p.HealthCheck(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return p, nil
}

// Exec runs a statement that returns no rows.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// Query runs a statement that returns rows.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

// QueryRow runs a statement that returns at most one row.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Begin starts a read-committed transaction.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.pool.Begin(ctx)
}

// BeginTx starts a transaction with explicit isolation or access mode.
func (p *Pool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { //nolint:gocritic // matching pgxpool.Pool signature.
	return p.pool.BeginTx(ctx, txOptions)
}

// HealthCheck pings the database, bounded by a short timeout so the
// readiness probe never hangs on a stuck connection.
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	return nil
}

// Stats is a point-in-time view of pool usage.
type Stats struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

// Stats reports current connection usage.
func (p *Pool) Stats() Stats {
	s := p.pool.Stat()

	return Stats{
		Acquired: s.AcquiredConns(),
		Idle:     s.IdleConns(),
		Total:    s.TotalConns(),
		Max:      s.MaxConns(),
	}
}

// Collectors exposes pool usage as gauges that are sampled at scrape time.
func (p *Pool) Collectors() []prometheus.Collector {
	gauge := func(name, help string, read func(Stats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "gigadmin_db_pool_" + name,
			Help: help,
		}, func() float64 { return float64(read(p.Stats())) })
	}

	return []prometheus.Collector{
		gauge("acquired_connections", "Connections currently checked out", func(s Stats) int32 { return s.Acquired }),
		gauge("idle_connections", "Idle connections held by the pool", func(s Stats) int32 { return s.Idle }),
		gauge("total_connections", "Open connections", func(s Stats) int32 { return s.Total }),
		gauge("max_connections", "Configured connection limit", func(s Stats) int32 { return s.Max }),
	}
}

// ConnString returns the connection string the pool was built from. The
// migrator needs it to open a database/sql handle.
func (p *Pool) ConnString() string {
	return p.pool.Config().ConnString()
}

// Close waits for acquired connections to be released and closes the pool.
func (p *Pool) Close() {
	p.pool.Close()
}
