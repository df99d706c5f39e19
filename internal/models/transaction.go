package models

import (
	"fmt"
	"math"
	"time"
)

// MaxTransactionAmount is the inclusive upper bound of a ledger entry.
const MaxTransactionAmount = 1_000_000

// TransactionType classifies a ledger entry.
type TransactionType string

// Transaction types.
const (
	TransactionPayment  TransactionType = "PAYMENT"
	TransactionSystem   TransactionType = "SYSTEM"
	TransactionReward   TransactionType = "REWARD"
	TransactionReferral TransactionType = "REFERRAL"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPayment, TransactionSystem, TransactionReward, TransactionReferral:
		return true
	}

	return false
}

// Transaction is a ledger entry between two users for a project task.
// It is pure record keeping: balances are not adjusted.
type Transaction struct {
	ID         int64           `json:"id"`
	ProjectID  int64           `json:"projectId"`
	TaskID     int64           `json:"taskId"`
	FromUserID int64           `json:"fromUserId"`
	ToUserID   int64           `json:"toUserId"`
	Amount     float64         `json:"amount"`
	Type       TransactionType `json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CreateTransactionRequest is the payload for recording a transaction.
type CreateTransactionRequest struct {
	ProjectID  int64            `json:"projectId"`
	TaskID     int64            `json:"taskId"`
	FromUserID int64            `json:"fromUserId"`
	ToUserID   int64            `json:"toUserId"`
	Amount     float64          `json:"amount"`
	Type       *TransactionType `json:"type,omitempty"`
}

// Validate checks ids, the amount bound and defaults the type to PAYMENT.
func (r *CreateTransactionRequest) Validate() error {
	ids := []struct {
		name string
		v    int64
	}{
		{"projectId", r.ProjectID},
		{"taskId", r.TaskID},
		{"fromUserId", r.FromUserID},
		{"toUserId", r.ToUserID},
	}
	for _, id := range ids {
		if id.v <= 0 {
			return ErrMissingField(id.name)
		}
	}

	if err := validateAmount(r.Amount); err != nil {
		return err
	}

	if r.Type == nil {
		t := TransactionPayment
		r.Type = &t
	} else if !r.Type.Valid() {
		return NewValidationError("type", "is not a known transaction type")
	}

	return nil
}

// UpdateTransactionRequest is a partial update of a transaction.
type UpdateTransactionRequest struct {
	ProjectID  *int64           `json:"projectId,omitempty"`
	TaskID     *int64           `json:"taskId,omitempty"`
	FromUserID *int64           `json:"fromUserId,omitempty"`
	ToUserID   *int64           `json:"toUserId,omitempty"`
	Amount     *float64         `json:"amount,omitempty"`
	Type       *TransactionType `json:"type,omitempty"`
}

// Validate checks UpdateTransactionRequest fields.
func (r *UpdateTransactionRequest) Validate() error {
	ids := []struct {
		name string
		v    *int64
	}{
		{"projectId", r.ProjectID},
		{"taskId", r.TaskID},
		{"fromUserId", r.FromUserID},
		{"toUserId", r.ToUserID},
	}
	for _, id := range ids {
		if id.v != nil && *id.v <= 0 {
			return NewValidationError(id.name, "must be a positive integer")
		}
	}

	if r.Amount != nil {
		if err := validateAmount(*r.Amount); err != nil {
			return err
		}
	}

	if r.Type != nil && !r.Type.Valid() {
		return NewValidationError("type", "is not a known transaction type")
	}

	return nil
}

// TransactionFilter narrows the transaction list.
type TransactionFilter struct {
	ProjectID  *int64
	TaskID     *int64
	FromUserID *int64
	ToUserID   *int64
	AmountFrom *float64
	AmountTo   *float64
	Type       TransactionType
	ListQuery
}

func validateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxTransactionAmount {
		return NewValidationError("amount", fmt.Sprintf("must be greater than 0 and at most %d", MaxTransactionAmount))
	}

	return nil
}
