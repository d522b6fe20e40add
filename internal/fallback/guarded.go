package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/4rinababan/chatfinance/internal/core"
)

var (
	ErrTimeout     = fmt.Errorf("%w: timed out", core.ErrFallbackUnavailable)
	ErrCircuitOpen = fmt.Errorf("%w: circuit open", core.ErrFallbackUnavailable)
)

// Settings bound a guarded generator.
type Settings struct {
	Timeout     time.Duration // per call, enforced even if the generator ignores ctx
	MaxFailures uint32        // consecutive failures before the breaker opens
	OpenTimeout time.Duration // how long the breaker stays open
}

func DefaultSettings() Settings {
	return Settings{
		Timeout:     8 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// StateObserver is notified when the breaker changes state.
type StateObserver func(from, to gobreaker.State)

// Guarded wraps a Generator with a hard timeout and a circuit breaker.
// Calls are never retried.
type Guarded struct {
	next    Generator
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewGuarded(next Generator, settings Settings, logger *slog.Logger, observers ...StateObserver) *Guarded {
	defaults := DefaultSettings()
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = defaults.MaxFailures
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = defaults.OpenTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Guarded{
		next:    next,
		timeout: settings.Timeout,
		logger:  logger,
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fallback",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		// A caller going away says nothing about the generator's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			for _, observe := range observers {
				observe(from, to)
			}
		},
	})
	return g
}

// Generate returns the wrapped generator's reply, or an error wrapping
// core.ErrFallbackUnavailable on timeout, failure or an open breaker.
func (g *Guarded) Generate(ctx context.Context, text string) (string, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.call(ctx, text)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return "", ErrCircuitOpen
		case errors.Is(err, core.ErrFallbackUnavailable):
			return "", err
		default:
			return "", fmt.Errorf("%w: %w", core.ErrFallbackUnavailable, err)
		}
	}
	return out.(string), nil
}

func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

func (g *Guarded) call(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				g.logger.Error("Fallback generator panicked", "panic", rec)
				done <- result{err: fmt.Errorf("%w: generator panic: %v", core.ErrFallbackUnavailable, rec)}
			}
		}()
		reply, err := g.next.Generate(ctx, text)
		done <- result{reply: reply, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return r.reply, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ctx.Err()
	}
}
