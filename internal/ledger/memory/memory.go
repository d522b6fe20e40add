package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-filled with txs, IDs assigned in order.
func NewSeeded(txs ...core.Transaction) *Store {
	s := New()
	for _, tx := range txs {
		_, _ = s.Append(context.Background(), tx)
	}
	return s
}

// Append stores the transaction and returns a synthetic reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = int64(len(s.items) + 1)
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", tx.ID), nil
}

// Sum totals the amounts of type t whose CreatedAt falls inside p.
func (s *Store) Sum(_ context.Context, t core.TransactionType, p core.Period) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, err := core.SumAmounts(s.items, t, p)
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", t, err)
	}
	return total, nil
}

// Transactions returns a copy of everything recorded so far.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

func (s *Store) Ping(context.Context) error {
	return nil
}
