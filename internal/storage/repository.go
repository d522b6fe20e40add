package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/4rinababan/chatfinance/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("transaction not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens the database and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	return openRepository(dbPath, func() error { return RunMigrations(dbPath) })
}

// OpenWithRetry is NewSQLiteRepository with migrations retried per policy.
func OpenWithRetry(ctx context.Context, dbPath string, policy RetryPolicy) (*SQLiteRepository, error) {
	return openRepository(dbPath, func() error { return RunMigrationsWithRetry(ctx, dbPath, policy) })
}

func openRepository(dbPath string, migrateFn func() error) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateFn(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append inserts the transaction and returns its ID.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		CreatedAt: tx.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"amount", row.Amount)

	return row.ID, nil
}

// Sum totals amounts of type t inside p. Bounds are half-open.
func (r *SQLiteRepository) Sum(ctx context.Context, t core.TransactionType, p core.Period) (int64, error) {
	var (
		total int64
		err   error
	)
	if p.Bounded() {
		total, err = r.queries.SumBetween(ctx, SumBetweenParams{
			Type:  string(t),
			Start: p.Start.UnixMilli(),
			End:   p.End.UnixMilli(),
		})
	} else {
		total, err = r.queries.SumAll(ctx, string(t))
	}
	if err != nil {
		return 0, fmt.Errorf("sum %s transactions: %w", t, err)
	}
	return total, nil
}

// GetTransaction retrieves a single transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return row.toCore(), nil
}

// GetPendingSync returns transactions not yet mirrored, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.queries.GetPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

// IsSynced reports whether the transaction has already been mirrored.
func (r *SQLiteRepository) IsSynced(ctx context.Context, id int64) (bool, error) {
	status, err := r.queries.GetSyncStatus(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("get sync status %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("get sync status: %w", err)
	}
	return status == "synced", nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkSynced(ctx, time.Now().UnixMilli(), id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.DebugContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (row TransactionRow) toCore() core.Transaction {
	return core.Transaction{
		ID:        row.ID,
		Type:      core.TransactionType(row.Type),
		Amount:    row.Amount,
		CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
	}
}
