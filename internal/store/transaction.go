package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// TransactionStore provides data access for the transactions ledger.
type TransactionStore struct {
	Base
}

// NewTransactionStore creates a TransactionStore.
func NewTransactionStore(base Base) *TransactionStore {
	return &TransactionStore{Base: base}
}

var transactionSortColumns = sortColumns{
	"id":         "id",
	"projectId":  "project_id",
	"taskId":     "task_id",
	"fromUserId": "from_user_id",
	"toUserId":   "to_user_id",
	"amount":     "amount",
	"type":       "type",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// ListTransactions returns a page of ledger entries.
func (s *TransactionStore) ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), transactionSortColumns, "id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}

	if f.ProjectID != nil {
		w.where("project_id = ?", *f.ProjectID)
	}

	if f.TaskID != nil {
		w.where("task_id = ?", *f.TaskID)
	}

	if f.FromUserID != nil {
		w.where("from_user_id = ?", *f.FromUserID)
	}

	if f.ToUserID != nil {
		w.where("to_user_id = ?", *f.ToUserID)
	}

	if f.AmountFrom != nil {
		w.where("amount >= ?", *f.AmountFrom)
	}

	if f.AmountTo != nil {
		w.where("amount <= ?", *f.AmountTo)
	}

	if f.Type != "" {
		w.where("type = ?", string(f.Type))
	}

	return listPage(ctx, &s.Base, "transactions", transactionColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.Transaction, error) {
			return collect(rows, scanTransaction, "transaction")
		},
	)
}

// GetTransaction returns one ledger entry.
func (s *TransactionStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	t, err := scanTransaction(s.Pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrTransactionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return t, nil
}

// CreateTransaction records a ledger entry. Balances are not touched.
func (s *TransactionStore) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	typ := models.TransactionPayment
	if req.Type != nil {
		typ = *req.Type
	}

	t, err := scanTransaction(s.Pool.QueryRow(ctx, `
		INSERT INTO transactions (project_id, task_id, from_user_id, to_user_id, amount, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		req.ProjectID, req.TaskID, req.FromUserID, req.ToUserID, req.Amount, string(typ),
	).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrTransactionNotFound), "creating transaction")
	}

	return t, nil
}

// UpdateTransaction applies a partial update.
func (s *TransactionStore) UpdateTransaction(
	ctx context.Context, id int64, req models.UpdateTransactionRequest,
) (*models.Transaction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := &sqlArgs{}

	if req.ProjectID != nil {
		set.set("project_id", *req.ProjectID)
	}

	if req.TaskID != nil {
		set.set("task_id", *req.TaskID)
	}

	if req.FromUserID != nil {
		set.set("from_user_id", *req.FromUserID)
	}

	if req.ToUserID != nil {
		set.set("to_user_id", *req.ToUserID)
	}

	if req.Amount != nil {
		set.set("amount", *req.Amount)
	}

	if req.Type != nil {
		set.set("type", string(*req.Type))
	}

	set.conds = append(set.conds, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = %s RETURNING %s",
		set.setClause(), set.arg(id), transactionColumns)

	t, err := scanTransaction(s.Pool.QueryRow(ctx, query, set.args...).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrTransactionNotFound), "updating transaction")
	}

	return t, nil
}

// DeleteTransaction removes a ledger entry.
func (s *TransactionStore) DeleteTransaction(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var got int64

	err := s.Pool.QueryRow(ctx, "DELETE FROM transactions WHERE id = $1 RETURNING id", id).Scan(&got)
	if err != nil {
		return wrapUnclassified(classifyDelete(err, models.ErrTransactionNotFound), "deleting transaction")
	}

	return nil
}
