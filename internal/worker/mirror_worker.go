// Package worker mirrors transactions recorded in SQLite to a secondary
// ledger, normally Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/4rinababan/chatfinance/internal/amqp"
	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/ledger"
	applog "github.com/4rinababan/chatfinance/internal/log"
	"github.com/4rinababan/chatfinance/internal/storage"
)

// Source is the local store that tracks what has been mirrored.
type Source interface {
	GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
	IsSynced(ctx context.Context, id int64) (bool, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// MirrorWorker copies transactions from Source to target. Event handling
// and the pending scan may run concurrently; mu keeps a row from being
// appended twice.
type MirrorWorker struct {
	source    Source
	target    ledger.Writer
	batchSize int
	logger    *slog.Logger

	mu sync.Mutex
}

func NewMirrorWorker(source Source, target ledger.Writer, batchSize int, logger *slog.Logger) *MirrorWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		source:    source,
		target:    target,
		batchSize: batchSize,
		logger:    logger,
	}
}

// HandleRecorded processes one transaction.recorded event. The event body
// is trusted for the row contents; the local store decides whether it
// still needs mirroring.
func (w *MirrorWorker) HandleRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		return fmt.Errorf("invalid event %s: %w", msg.EventID, err)
	}

	w.logger.InfoContext(ctx, "Processing transaction event",
		applog.FieldEventID, msg.EventID,
		applog.FieldTransactionID, tx.ID)

	return w.mirror(ctx, tx)
}

// ProcessPending mirrors up to one batch of transactions still marked
// pending. It is the backstop for lost or never-published events.
func (w *MirrorWorker) ProcessPending(ctx context.Context) (synced int, err error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger pending pass to recover from downtime.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

// RunPending calls ProcessPending every interval until ctx is done.
func (w *MirrorWorker) RunPending(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Pending sync pass failed",
					applog.FieldOperation, applog.OpSync,
					applog.FieldError, err)
			}
		}
	}
}

func (w *MirrorWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.source.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	for _, tx := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.mirror(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction",
				applog.FieldTransactionID, tx.ID,
				applog.FieldError, err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *MirrorWorker) mirror(ctx context.Context, tx core.Transaction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	done, err := w.source.IsSynced(ctx, tx.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Skipping transaction unknown to the local store",
			applog.FieldTransactionID, tx.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check sync status: %w", err)
	}
	if done {
		w.logger.DebugContext(ctx, "Transaction already mirrored", applog.FieldTransactionID, tx.ID)
		return nil
	}

	ref, err := w.target.Append(ctx, tx)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, tx.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error",
				applog.FieldTransactionID, tx.ID,
				applog.FieldError, markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	// The row is in the mirror; a failed status update only risks a
	// duplicate on the next pass.
	if err := w.source.MarkSynced(ctx, tx.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Mirrored transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldTransactionType, tx.Type.String(),
		applog.FieldAmount, tx.Amount,
		applog.FieldLedgerRef, ref)
	return nil
}
