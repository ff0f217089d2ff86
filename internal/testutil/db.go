package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/skirmish/internal/db/migrations"
)

const (
	testDBImage = "postgres:16-alpine"
	// Холодный старт контейнера на CI бывает медленным.
	testDBStartTimeout = 2 * time.Minute
)

// SetupTestDB поднимает PostgreSQL в testcontainer, накатывает схему журнала боёв
// и возвращает pool. Контейнер и pool закрываются через tb.Cleanup.
func SetupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	ctx := ContextWithTimeout(tb, testDBStartTimeout)

	container, err := postgres.Run(ctx, testDBImage,
		postgres.WithDatabase("skirmish_test"),
		postgres.WithUsername("skirmish"),
		postgres.WithPassword("skirmish"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(pool.Close)

	// goose работает с *sql.DB, поэтому открываем его поверх конфигурации pool.
	sqlDB := sql.OpenDB(stdlib.GetConnector(*pool.Config().ConnConfig))
	defer sqlDB.Close()

	if _, err := migrations.Up(ctx, sqlDB); err != nil {
		tb.Fatalf("migrating test db: %v", err)
	}

	return pool
}

// ContextWithTimeout возвращает контекст с таймаутом, отменяемый по завершении теста.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}
