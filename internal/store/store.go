// Package store provides focused, single-concern data access stores
// for the gigadmin relational schema.
//
// Each store owns one aggregate (projects, users, transactions, etc.) and
// embeds shared helpers (Pool, logger) via the Base struct.
// Stores never import each other; shared logic lives in this file
// or in dedicated helper files (helpers.go, errors.go, scan.go).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/dbpool"
	"github.com/gigboard/gigadmin/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only repeatable-read transaction so a count and
// the page it describes observe the same snapshot.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// listPage runs the count and page queries of a filtered list inside one
// read-only transaction. where and args come from a sqlArgs builder; order is
// a complete ORDER BY clause.
func listPage[T any](
	ctx context.Context,
	b *Base,
	from string,
	columns string,
	where *sqlArgs,
	order string,
	q models.ListQuery,
	collect func(pgx.Rows) ([]T, error),
) (*models.Page[T], error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := b.beginReadTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only, nothing to keep.

	var total int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM "+from+where.whereClause(), where.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	pageArgs := where.clone()
	query := fmt.Sprintf("SELECT %s FROM %s%s %s LIMIT %s OFFSET %s",
		columns, from, pageArgs.whereClause(), order,
		pageArgs.arg(q.Limit), pageArgs.arg(q.Offset()),
	)

	rows, err := tx.Query(ctx, query, pageArgs.args...)
	if err != nil {
		return nil, fmt.Errorf("querying page: %w", err)
	}

	items, err := collect(rows)
	rows.Close()

	if err != nil {
		return nil, err
	}

	return &models.Page[T]{Data: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}
