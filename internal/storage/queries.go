package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow mirrors a row of the transactions table.
type TransactionRow struct {
	ID         int64
	Type       string
	Amount     int64
	CreatedAt  int64
	SyncStatus string
	SyncedAt   sql.NullInt64
}

const createTransaction = `
INSERT INTO transactions (type, amount, created_at)
VALUES (?, ?, ?)
RETURNING id, type, amount, created_at, sync_status, synced_at
`

type CreateTransactionParams struct {
	Type      string
	Amount    int64
	CreatedAt int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.Type, arg.Amount, arg.CreatedAt)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Type, &i.Amount, &i.CreatedAt, &i.SyncStatus, &i.SyncedAt)
	return i, err
}

const getTransaction = `
SELECT id, type, amount, created_at, sync_status, synced_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Type, &i.Amount, &i.CreatedAt, &i.SyncStatus, &i.SyncedAt)
	return i, err
}

const getSyncStatus = `
SELECT sync_status
FROM transactions
WHERE id = ?
`

func (q *Queries) GetSyncStatus(ctx context.Context, id int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getSyncStatus, id)
	var status string
	err := row.Scan(&status)
	return status, err
}

const sumAll = `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE type = ?
`

func (q *Queries) SumAll(ctx context.Context, typ string) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumAll, typ)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumBetween = `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE type = ? AND created_at >= ? AND created_at < ?
`

type SumBetweenParams struct {
	Type  string
	Start int64
	End   int64
}

func (q *Queries) SumBetween(ctx context.Context, arg SumBetweenParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumBetween, arg.Type, arg.Start, arg.End)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const getPendingSync = `
SELECT id, type, amount, created_at, sync_status, synced_at
FROM transactions
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?
`

func (q *Queries) GetPendingSync(ctx context.Context, limit int64) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSync, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Type, &i.Amount, &i.CreatedAt, &i.SyncStatus, &i.SyncedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markSynced = `
UPDATE transactions
SET sync_status = 'synced', synced_at = ?
WHERE id = ?
`

func (q *Queries) MarkSynced(ctx context.Context, syncedAt, id int64) error {
	_, err := q.db.ExecContext(ctx, markSynced, syncedAt, id)
	return err
}

const markSyncError = `
UPDATE transactions
SET sync_status = 'error'
WHERE id = ?
`

func (q *Queries) MarkSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncError, id)
	return err
}
