package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/4rinababan/chatfinance/internal/core"
)

type (
	// Repository persists transactions and assigns their IDs.
	Repository interface {
		Append(ctx context.Context, tx core.Transaction) (int64, error)
		Close() error
	}

	// EventPublisher announces persisted transactions to other processes.
	EventPublisher interface {
		PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
		Close() error
	}
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
type TransactionService struct {
	repo      Repository
	publisher EventPublisher
}

// NewTransactionService builds the service. publisher may be nil.
func NewTransactionService(repo Repository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateTransaction saves tx locally and then publishes an event. A failed
// publish is logged only; the worker's pending scan picks the row up later.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	id, err := s.repo.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "id", id)
		return tx, nil
	}

	if err := s.publisher.PublishTransactionRecorded(ctx, tx); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event",
			"id", id,
			"error", err)
	}

	return tx, nil
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close transaction service: %w", err)
	}
	return nil
}
