// Package fallback produces free-form replies for messages the intent
// pipeline could not handle with confidence.
package fallback

import (
	"context"
	"fmt"

	"github.com/4rinababan/chatfinance/internal/core"
)

// Generator turns a user message into a generated reply.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, text string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Disabled is used when no model is configured. Every call fails so the
// router answers with its degraded reply.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: no generator configured", core.ErrFallbackUnavailable)
}
