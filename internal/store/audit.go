package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// AuditStore provides data access for the append-only admin_action_logs table.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// jsonArg turns an empty snapshot into SQL NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	return []byte(raw)
}

// RecordAudit inserts one admin action row and returns it.
func (s *AuditStore) RecordAudit(ctx context.Context, d models.AuditDetails) (*models.AuditRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `
		INSERT INTO admin_action_logs (action, entity_type, entity_id, old_data, new_data, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+auditColumns,
		string(d.Action), string(d.EntityType), d.EntityID, jsonArg(d.OldData), jsonArg(d.NewData), d.AdminID,
	)

	rec, err := scanAudit(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	return rec, nil
}

// ListAll returns every audit row in insertion order (ascending id).
func (s *AuditStore) ListAll(ctx context.Context) ([]models.AuditRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		"SELECT "+auditColumns+" FROM admin_action_logs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}

	return collect(rows, scanAudit, "audit entry")
}

// buildAuditFilter builds the WHERE conditions for AuditQueryOpts.
func buildAuditFilter(opts models.AuditQueryOpts) *sqlArgs {
	w := &sqlArgs{}

	if opts.EntityType != "" {
		w.where("entity_type = ?", string(opts.EntityType))
	}

	if opts.EntityID != nil {
		w.where("entity_id = ?", *opts.EntityID)
	}

	if opts.Action != "" {
		w.where("action = ?", string(opts.Action))
	}

	if opts.AdminID != nil {
		w.where("admin_id = ?", *opts.AdminID)
	}

	if opts.Since != nil {
		w.where("created_at >= ?", *opts.Since)
	}

	return w
}

// Query returns one page of audit rows matching opts, newest first.
func (s *AuditStore) Query(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error) {
	q := models.ListQuery{Page: opts.Page, Limit: opts.Limit}
	q.Normalize()

	return listPage(ctx, &s.Base, "admin_action_logs", auditColumns, buildAuditFilter(opts),
		"ORDER BY created_at DESC, id DESC", q,
		func(rows pgx.Rows) ([]models.AuditRecord, error) {
			return collect(rows, scanAudit, "audit entry")
		},
	)
}
