package models

import (
	"errors"
	"time"
)

// Transaction statuses. A pending transaction becomes completed when the
// user marks it paid; there is no way back to pending.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Payment methods.
const (
	MethodOnline   = "online"
	MethodTransfer = "transfer"
	MethodCash     = "cash"
	MethodDebit    = "debit"
	MethodCredit   = "credit"
)

var (
	ErrEmptyDescription = errors.New("description can't be empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidType      = errors.New("type must be income or expense")
	ErrInvalidDay       = errors.New("day_of_month must be between 1 and 31")
	ErrInvalidStatus    = errors.New("invalid status transition")
)

// Transaction is a concrete, dated ledger entry. All amounts are in minor
// currency units (cents). For a shared transaction Amount is this owner's
// share, not the full bill; TotalAmount = MyShare + OtherShare always.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null;uniqueIndex:idx_fixed_period" json:"user_id"`
	Description string    `gorm:"size:255;not null;uniqueIndex:idx_fixed_period" json:"description"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Type        string    `gorm:"size:16;not null" json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	Status      string    `gorm:"size:16;not null" json:"status"`

	// IsFixed marks entries generated from a FixedExpense rule. Period is
	// the YYYY-MM the entry was materialized for and is set only on those
	// entries; the (user_id, description, period) unique index is the
	// storage-level backstop against concurrent double generation. Manual
	// entries leave Period NULL and stay out of the constraint.
	IsFixed bool    `gorm:"default:false" json:"is_fixed"`
	Period  *string `gorm:"size:7;uniqueIndex:idx_fixed_period" json:"period,omitempty"`

	// Credit fields. Installments below 1 is read back as a single charge.
	PaymentMethod string `gorm:"size:16" json:"payment_method"`
	Installments  int    `gorm:"default:1" json:"installments"`

	// Shared fields, populated only when IsShared.
	IsShared     bool   `gorm:"default:false" json:"is_shared"`
	SharedWithID string `json:"shared_with_id,omitempty"`
	TotalAmount  int64  `json:"total_amount,omitempty"`
	MyShare      int64  `json:"my_share,omitempty"`
	OtherShare   int64  `json:"other_share,omitempty"`
	PaidBy       string `json:"paid_by,omitempty"`
	SharedTxID   string `gorm:"index" json:"shared_tx_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields every transaction must carry regardless of
// how it was created.
func (t *Transaction) Validate() error {
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return ErrInvalidType
	}
	return nil
}

// MarkPaid moves a pending transaction to completed, optionally correcting
// the amount to what was actually paid. Completed entries stay completed.
func (t *Transaction) MarkPaid(paidAmount int64) error {
	if t.Status == StatusCompleted {
		return ErrInvalidStatus
	}
	if paidAmount > 0 {
		t.Amount = paidAmount
	}
	t.Status = StatusCompleted
	return nil
}
