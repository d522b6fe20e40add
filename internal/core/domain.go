package core

import (
	"errors"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// Intent labels produced by the classifier. LabelUnknown is the
// "no confident intent" sentinel, as is the empty string.
const (
	LabelExpense        = "expense"
	LabelIncome         = "income"
	LabelSummaryExpense = "summary_expense"
	LabelSummaryIncome  = "summary_income"
	LabelBalance        = "balance"
	LabelUnknown        = "unknown"
)

type (
	TransactionType string

	Transaction struct {
		ID        int64 // Assigned by the ledger on append
		Type      TransactionType
		Amount    int64 // Whole currency units, always > 0
		CreatedAt time.Time
	}

	// Classification is the classifier's verdict for one message.
	Classification struct {
		Label      string
		Confidence float64 // 0..1
	}
)

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountMissing       = errors.New("amount missing")
	ErrAmountOverflow      = errors.New("amount exceeds integer range")
	ErrTotalOverflow       = errors.New("total exceeds integer range")
	ErrStore               = errors.New("ledger store failure")
	ErrFallbackUnavailable = errors.New("fallback responder unavailable")
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Expense, Income:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// NewTransaction builds a transaction stamped with createdAt (UTC). A zero
// createdAt means "now".
func NewTransaction(t TransactionType, amount int64, createdAt time.Time) (Transaction, error) {
	if !t.Valid() {
		return Transaction{}, ErrInvalidType
	}
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Transaction{
		Type:      t,
		Amount:    amount,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if tx.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	return nil
}

// Confident reports whether c clears threshold with a usable label.
func (c Classification) Confident(threshold float64) bool {
	if c.Label == "" || c.Label == LabelUnknown {
		return false
	}
	return c.Confidence >= threshold
}
