package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/4rinababan/chatfinance/internal/config"
	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/ledger"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	_, err := FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	for _, bt := range GetBackendTypes() {
		if !strings.Contains(err.Error(), bt.String()) {
			t.Errorf("error %q should list backend %q", err, bt)
		}
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:       "sqlite",
		SQLiteDBPath:      "/tmp/x.db",
		MigrationAttempts: 3,
		MigrationBackoff:  time.Second,
		GoogleSheetName:   "Ledger",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.MigrationAttempts != 3 || cfg.SheetsConfig().SheetName != "Ledger" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend, GoogleServiceAccountJSON: "{}"}, true},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, true},
		{"sheets ok", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc", GoogleServiceAccountJSON: "{}"}, false},
		{"unknown", Config{Type: "mongo"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if res.Cleanup != nil {
			t.Fatal("memory backend needs no cleanup")
		}
		exerciseStore(t, res.Store)
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{
			Type:              SQLiteBackend,
			SQLiteDBPath:      filepath.Join(t.TempDir(), "ledger.db"),
			MigrationAttempts: 1,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		t.Cleanup(func() { _ = res.Cleanup() })
		if _, ok := res.Store.(ledger.Pinger); !ok {
			t.Fatal("sqlite store should support Ping")
		}
		exerciseStore(t, res.Store)
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: "mongo"}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func exerciseStore(t *testing.T, store ledger.Store) {
	t.Helper()
	ctx := context.Background()
	tx, _ := core.NewTransaction(core.Expense, 12000, time.Now())
	if _, err := store.Append(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	total, err := store.Sum(ctx, core.Expense, core.Unbounded)
	if err != nil || total != 12000 {
		t.Fatalf("sum: total=%d err=%v", total, err)
	}
}
