package ledger

import (
	"context"

	"github.com/4rinababan/chatfinance/internal/core"
)

// Ports for ledger adapters.
type (
	Writer interface {
		Append(ctx context.Context, tx core.Transaction) (ref string, err error)
	}

	// Summer aggregates recorded transactions.
	Summer interface {
		// Sum returns the total amount of type t recorded inside p.
		// An unbounded period sums everything.
		Sum(ctx context.Context, t core.TransactionType, p core.Period) (int64, error)
	}

	Store interface {
		Writer
		Summer
	}

	// Pinger is implemented by stores that can report their health.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
