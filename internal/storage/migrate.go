package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const maxMigrationBackoff = 30 * time.Second

// RetryPolicy controls how many times migrations are attempted at start-up.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func RunMigrations(dbPath string) error {
	// Separate connection so the migrate instance can close it freely.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// RunMigrationsWithRetry applies migrations, retrying with exponential
// backoff while the database is not ready yet.
func RunMigrationsWithRetry(ctx context.Context, dbPath string, policy RetryPolicy) error {
	return retry(ctx, policy, func() error { return RunMigrations(dbPath) })
}

func retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := migrationBackoff(policy.Backoff, attempt)
		slog.WarnContext(ctx, "Migration attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("migrations cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("migrations failed after %d attempts: %w", attempts, err)
}

// migrationBackoff doubles base for every failed attempt, capped at 30s.
func migrationBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxMigrationBackoff {
			return maxMigrationBackoff
		}
	}
	return d
}
