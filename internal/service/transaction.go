package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// TransactionStore is the data-access interface TransactionService depends on.
type TransactionStore interface {
	ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// Compile-time check: *TransactionService must satisfy domain.TransactionService.
var _ domain.TransactionService = (*TransactionService)(nil)

// TransactionService records ledger entries. It never adjusts balances.
type TransactionService struct {
	*observer.Subject
	store TransactionStore
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(store TransactionStore, log *logrus.Logger, observers ...observer.Observer) *TransactionService {
	return &TransactionService{Subject: observer.NewSubject(log, observers...), store: store}
}

// ListTransactions returns a filtered page of ledger entries (pass-through).
func (s *TransactionService) ListTransactions(
	ctx context.Context, f models.TransactionFilter,
) (*models.Page[models.Transaction], error) {
	return s.store.ListTransactions(ctx, f)
}

// GetTransaction returns one ledger entry (pass-through).
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// CreateTransaction records a ledger entry.
func (s *TransactionService) CreateTransaction(
	ctx context.Context, adminID int64, req models.CreateTransactionRequest,
) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.CreateTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionCreateTransaction, EntityType: models.EntityTransaction,
		EntityID: t.ID, AdminID: adminID, New: t,
	})

	return t, nil
}

// UpdateTransaction changes a ledger entry.
func (s *TransactionService) UpdateTransaction(
	ctx context.Context, adminID, id int64, req models.UpdateTransactionRequest,
) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.store.UpdateTransaction(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateTransaction, EntityType: models.EntityTransaction,
		EntityID: id, AdminID: adminID, Old: old, New: t,
	})

	return t, nil
}

// DeleteTransaction removes a ledger entry and returns its last known state.
func (s *TransactionService) DeleteTransaction(ctx context.Context, adminID, id int64) (*models.Transaction, error) {
	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionDeleteTransaction, EntityType: models.EntityTransaction,
		EntityID: id, AdminID: adminID, Old: old,
	})

	return old, nil
}
