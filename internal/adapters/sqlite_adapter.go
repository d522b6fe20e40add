package adapters

import (
	"context"
	"strconv"

	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/ledger"
	"github.com/4rinababan/chatfinance/internal/services"
	"github.com/4rinababan/chatfinance/internal/storage"
)

var (
	_ ledger.Store  = (*SQLiteAdapter)(nil)
	_ ledger.Pinger = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter exposes the SQLite repository and TransactionService as a
// ledger.Store, so the router is unaware of the AMQP side effects.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements ledger.Writer
func (a *SQLiteAdapter) Append(ctx context.Context, tx core.Transaction) (string, error) {
	saved, err := a.service.CreateTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(saved.ID, 10), nil
}

// Sum implements ledger.Summer
func (a *SQLiteAdapter) Sum(ctx context.Context, t core.TransactionType, p core.Period) (int64, error) {
	return a.storage.Sum(ctx, t, p)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *SQLiteAdapter) Close() error {
	return a.service.Close()
}
