// Package router turns a chat message into a reply: it classifies the
// message, gates on confidence and dispatches to the ledger or the
// fallback generator.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/fallback"
	"github.com/4rinababan/chatfinance/internal/ledger"
	applog "github.com/4rinababan/chatfinance/internal/log"
	"github.com/4rinababan/chatfinance/internal/metrics"
)

const DefaultThreshold = 0.8

// Classifier predicts the intent of a lowercased message.
type Classifier interface {
	Predict(text string) core.Classification
}

type Config struct {
	Threshold float64
	Currency  string
	Now       func() time.Time
	Logger    *slog.Logger
	Metrics   metrics.Collector
}

type Router struct {
	classifier Classifier
	store      ledger.Store
	fallback   fallback.Generator

	threshold float64
	currency  string
	now       func() time.Time
	logger    *slog.Logger
	metrics   metrics.Collector
}

// New builds a router. A zero Threshold means DefaultThreshold; callers
// pass the validated CONFIDENCE_THRESHOLD, which is always within (0, 1].
func New(classifier Classifier, store ledger.Store, gen fallback.Generator, cfg Config) *Router {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Currency == "" {
		cfg.Currency = "Rp"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoOpCollector{}
	}
	if gen == nil {
		gen = fallback.Disabled{}
	}

	return &Router{
		classifier: classifier,
		store:      store,
		fallback:   gen,
		threshold:  cfg.Threshold,
		currency:   cfg.Currency,
		now:        cfg.Now,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Reply always returns a user-facing answer. Failures are logged and
// mapped to a reply here and nowhere else.
func (r *Router) Reply(ctx context.Context, message string) (reply string) {
	start := time.Now()
	decision := Decision{Kind: Fallback}

	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "Recovered from panic while routing message",
				"panic", fmt.Sprint(p),
				applog.FieldRoute, decision.Kind.String())
			reply = ReplyInternal
		}
		r.metrics.RecordReply(decision.Kind.String(), time.Since(start))
	}()

	normalized := strings.ToLower(message)
	classification := r.classifier.Predict(normalized)
	decision = Decide(classification, r.threshold)
	r.metrics.RecordClassification(classification.Label, decision.Kind != Fallback)

	r.logger.InfoContext(ctx, "Routed message",
		applog.FieldIntent, classification.Label,
		applog.FieldConfidence, classification.Confidence,
		applog.FieldRoute, decision.Kind.String())

	reply, err := r.execute(ctx, decision, message, normalized)
	if err != nil {
		return r.replyForError(ctx, decision, err)
	}
	return reply
}

func (r *Router) execute(ctx context.Context, d Decision, original, normalized string) (string, error) {
	switch d.Kind {
	case Record:
		return r.record(ctx, d.Type, normalized)
	case Summarize:
		return r.summarize(ctx, d.Type, normalized)
	case Unhandled:
		return ReplyUnhandled, nil
	case Fallback:
		return r.fallback.Generate(ctx, original)
	default:
		return "", fmt.Errorf("unknown decision kind %d", d.Kind)
	}
}

func (r *Router) record(ctx context.Context, t core.TransactionType, normalized string) (string, error) {
	amount, err := core.ExtractAmount(normalized)
	if err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", core.ErrAmountMissing
	}

	tx, err := core.NewTransaction(t, amount, r.now())
	if err != nil {
		return "", err
	}

	ref, err := r.store.Append(ctx, tx)
	if err != nil {
		r.metrics.RecordStoreError(applog.OpAppend)
		return "", fmt.Errorf("%w: append %s: %w", core.ErrStore, t, err)
	}

	r.logger.InfoContext(ctx, "Recorded transaction",
		applog.FieldTransactionType, tx.Type.String(),
		applog.FieldAmount, tx.Amount,
		applog.FieldLedgerRef, ref)
	return recordedReply(r.currency, tx), nil
}

func (r *Router) summarize(ctx context.Context, t core.TransactionType, normalized string) (string, error) {
	period := core.ResolvePeriod(normalized, r.now())

	total, err := r.store.Sum(ctx, t, period)
	if err != nil {
		r.metrics.RecordStoreError(applog.OpSum)
		return "", fmt.Errorf("%w: sum %s: %w", core.ErrStore, t, err)
	}

	r.logger.DebugContext(ctx, "Summed transactions",
		applog.FieldTransactionType, t.String(),
		applog.FieldPeriod, period.String(),
		applog.FieldAmount, total)
	return totalReply(r.currency, t, total, period), nil
}

func (r *Router) replyForError(ctx context.Context, d Decision, err error) string {
	switch {
	case errors.Is(err, core.ErrAmountOverflow):
		r.logger.WarnContext(ctx, "Amount out of range, asking again",
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		return ReplyAskAmount
	case errors.Is(err, core.ErrAmountMissing):
		return ReplyAskAmount
	case errors.Is(err, core.ErrStore):
		r.logger.ErrorContext(ctx, "Ledger operation failed",
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			applog.FieldRoute, d.Kind.String(),
			applog.FieldError, err)
		return storeFailureReply(d)
	case errors.Is(err, core.ErrFallbackUnavailable):
		reason, errType := fallbackReason(err)
		r.metrics.RecordFallbackFailure(reason)
		r.logger.WarnContext(ctx, "Fallback unavailable, sending degraded reply",
			applog.FieldErrorType, errType,
			"reason", reason,
			applog.FieldError, err)
		return ReplyDegraded
	case d.Kind == Fallback:
		r.metrics.RecordFallbackFailure("error")
		r.logger.WarnContext(ctx, "Fallback failed, sending degraded reply",
			applog.FieldErrorType, applog.ErrorTypeNetwork,
			applog.FieldError, err)
		return ReplyDegraded
	default:
		r.logger.ErrorContext(ctx, "Failed to handle message",
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldRoute, d.Kind.String(),
			applog.FieldError, err)
		return ReplyInternal
	}
}

func fallbackReason(err error) (reason, errType string) {
	switch {
	case errors.Is(err, fallback.ErrTimeout):
		return "timeout", applog.ErrorTypeTimeout
	case errors.Is(err, fallback.ErrCircuitOpen):
		return "circuit_open", applog.ErrorTypeNetwork
	default:
		return "error", applog.ErrorTypeNetwork
	}
}
