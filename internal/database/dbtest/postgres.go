// Package dbtest starts a disposable PostgreSQL container with the service
// schema applied. It is imported only from tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"hirdavat/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// New creates a PostgreSQL test container, migrates it and registers
// cleanup on t. Tests calling it are skipped under -short.
func New(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping test that needs a postgres container")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Truncate empties every table the service writes, restoring the single
// store_settings row.
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		TRUNCATE order_items, orders, products, shipping_tiers RESTART IDENTITY CASCADE;
		UPDATE store_settings SET free_shipping_threshold = 0;
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
