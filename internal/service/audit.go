package service

import (
	"context"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// AuditStore persists and reads admin action rows.
type AuditStore interface {
	RecordAudit(ctx context.Context, d models.AuditDetails) (*models.AuditRecord, error)
	ListAll(ctx context.Context) ([]models.AuditRecord, error)
	Query(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error)
}

// Compile-time checks: AuditSink is both the leaf observer and the read side.
var (
	_ observer.Observer   = (*AuditSink)(nil)
	_ domain.AuditService = (*AuditSink)(nil)
)

// AuditSink writes every notified action to the audit log.
type AuditSink struct {
	store AuditStore
}

// NewAuditSink creates an AuditSink.
func NewAuditSink(store AuditStore) *AuditSink {
	return &AuditSink{store: store}
}

// Name labels the sink in logs and metrics.
func (a *AuditSink) Name() string { return "audit_sink" }

// Update persists one record. The action argument is authoritative.
func (a *AuditSink) Update(ctx context.Context, action models.Action, details models.AuditDetails) error {
	details.Action = action

	_, err := a.store.RecordAudit(ctx, details)

	return err
}

// ListAll returns every record in insertion order.
func (a *AuditSink) ListAll(ctx context.Context) ([]models.AuditRecord, error) {
	return a.store.ListAll(ctx)
}

// Query returns a filtered page of records, newest first.
func (a *AuditSink) Query(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error) {
	return a.store.Query(ctx, opts)
}
