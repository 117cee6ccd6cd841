package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/sprachweg/internal/config"
	"github.com/phrazzld/sprachweg/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// EnvDatabaseURL names the environment variable holding the test database URL.
const EnvDatabaseURL = "DATABASE_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// IsIntegrationTestEnvironment returns true if DATABASE_URL is set.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv(EnvDatabaseURL) != ""
}

// GetTestDB opens a connection to the test database, applying migrations the
// first time it is called. The test is skipped when DATABASE_URL is unset.
// The connection is closed when the test finishes.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skipf("%s not set; skipping database test", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*TestTimeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:          os.Getenv(EnvDatabaseURL),
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}, logger)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, logger)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin test transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// Exec runs a statement on tx, failing the test on error. It is meant for
// seeding fixtures the stores do not write, such as lessons and cards.
func Exec(t *testing.T, tx *sql.Tx, query string, args ...any) {
	t.Helper()

	_, err := tx.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, fmt.Sprintf("fixture statement failed: %s", query))
}
