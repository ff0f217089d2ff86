package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/skirmish/internal/testutil"
)

// setupTestDB поднимает PostgreSQL testcontainer с применёнными миграциями.
// В режиме -short интеграционные тесты пропускаются.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("integration test: needs docker")
	}
	pool := testutil.SetupTestDB(tb)

	// Очищаем таблицы для изоляции
	ctx := context.Background()
	queries := []string{
		"TRUNCATE encounter_events CASCADE",
		"TRUNCATE encounter_sessions CASCADE",
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			tb.Logf("cleanup warning: %v", err) // non-fatal
		}
	}
	return pool
}
