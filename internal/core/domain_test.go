package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewTransaction(t *testing.T) {
	at := time.Date(2024, 6, 25, 17, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	tx, err := NewTransaction(Expense, 50000, at)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Type != Expense || tx.Amount != 50000 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.CreatedAt.Location() != time.UTC || !tx.CreatedAt.Equal(at) {
		t.Fatalf("expected UTC timestamp equal to input, got %s", tx.CreatedAt)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("constructed transaction should validate: %v", err)
	}
}

func TestNewTransactionRejects(t *testing.T) {
	cases := []struct {
		typ    TransactionType
		amount int64
		want   error
	}{
		{Expense, 0, ErrInvalidAmount},
		{Income, -5, ErrInvalidAmount},
		{"transfer", 10, ErrInvalidType},
		{"", 10, ErrInvalidType},
	}
	for i, tc := range cases {
		if _, err := NewTransaction(tc.typ, tc.amount, time.Now()); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestNewTransactionDefaultsCreatedAt(t *testing.T) {
	before := time.Now()
	tx, err := NewTransaction(Income, 1, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.CreatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("expected created_at near now, got %s", tx.CreatedAt)
	}
}

func TestClassificationConfident(t *testing.T) {
	cases := []struct {
		c    Classification
		want bool
	}{
		{Classification{Label: LabelExpense, Confidence: 0.8}, true},
		{Classification{Label: LabelExpense, Confidence: 0.79}, false},
		{Classification{Label: LabelUnknown, Confidence: 0.99}, false},
		{Classification{Label: "", Confidence: 1}, false},
		{Classification{Label: LabelBalance, Confidence: 0.95}, true},
	}
	for i, tc := range cases {
		if got := tc.c.Confident(0.8); got != tc.want {
			t.Fatalf("case %d: Confident = %v, want %v", i, got, tc.want)
		}
	}
}
