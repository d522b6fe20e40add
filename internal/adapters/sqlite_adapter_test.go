package adapters

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/services"
	"github.com/4rinababan/chatfinance/internal/storage"
)

func TestSQLiteAdapterAppendAndSum(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "adapter.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	adapter := NewSQLiteAdapter(repo, services.NewTransactionService(repo, nil))
	t.Cleanup(func() { _ = adapter.Close() })

	ctx := context.Background()
	tx, _ := core.NewTransaction(core.Income, 2500000, time.Date(2024, 6, 25, 8, 0, 0, 0, time.UTC))

	ref, err := adapter.Append(ctx, tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "1" {
		t.Fatalf("expected ref 1, got %q", ref)
	}

	total, err := adapter.Sum(ctx, core.Income, core.Unbounded)
	if err != nil || total != 2500000 {
		t.Fatalf("sum: total=%d err=%v", total, err)
	}

	if err := adapter.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
