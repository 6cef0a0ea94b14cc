//go:build integration

package app_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres поднимает контейнер, накатывает миграции и возвращает пул соединений
func startPostgres(ctx context.Context, t *testing.T) *sql.DB {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jpashop"),
		postgres.WithUsername("jpashop"),
		postgres.WithPassword("jpashop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, runMigrations(dsn))

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	return db
}

func runMigrations(dsn string) error {
	m, err := migrate.New(migrationsPath(), dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func migrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..", "..")
	return "file://" + filepath.Join(root, "migrations")
}

// resetFixtures заменяет демонстрационные данные набором для проверок:
//
//	1 Joanna  ORDERED   2 позиции
//	2 Anna    ORDERED   без позиций
//	3 Hanna   CANCELED  1 позиция
//	4 ANN     ORDERED   3 позиции
func resetFixtures(ctx context.Context, t *testing.T, db *sql.DB) {
	t.Helper()

	statements := []string{
		`TRUNCATE order_items, orders, deliveries, items, members RESTART IDENTITY CASCADE`,
		`INSERT INTO members (name, city, street, zipcode) VALUES
			('Joanna', 'Seoul', '1', '1111'),
			('Anna', 'Jinju', '2', '2222'),
			('Hanna', 'Busan', '3', '3333'),
			('ANN', 'Daegu', '4', '4444')`,
		`INSERT INTO items (name, price, stock_quantity) VALUES
			('JPA1 BOOK', 10000, 100),
			('JPA2 BOOK', 20000, 100),
			('SPRING1 BOOK', 20000, 100),
			('SPRING2 BOOK', 40000, 100)`,
		`INSERT INTO deliveries (city, street, zipcode, status) VALUES
			('Seoul', '10', '1010', 'READY'),
			('Jinju', '20', '2020', 'READY'),
			('Busan', '30', '3030', 'COMP'),
			('Daegu', '40', '4040', 'READY')`,
		`INSERT INTO orders (member_id, delivery_id, order_date, status) VALUES
			(1, 1, '2024-03-01 10:00:00+00', 'ORDERED'),
			(2, 2, '2024-03-02 10:00:00+00', 'ORDERED'),
			(3, 3, '2024-03-03 10:00:00+00', 'CANCELED'),
			(4, 4, '2024-03-04 10:00:00+00', 'ORDERED')`,
		`INSERT INTO order_items (order_id, item_id, order_price, count) VALUES
			(1, 1, 10000, 1),
			(1, 2, 20000, 2),
			(3, 3, 20000, 3),
			(4, 1, 10000, 1),
			(4, 3, 20000, 2),
			(4, 4, 40000, 4)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

// addOrders дописывает n заказов участнику 1 без позиций
func addOrders(ctx context.Context, t *testing.T, db *sql.DB, n int) {
	t.Helper()

	_, err := db.ExecContext(ctx, `
		WITH d AS (
			INSERT INTO deliveries (city, street, zipcode)
			SELECT 'Seoul', 'bulk', '0000' FROM generate_series(1, $1::int)
			RETURNING id
		)
		INSERT INTO orders (member_id, delivery_id, status)
		SELECT 1, d.id, 'ORDERED' FROM d`, n)
	require.NoError(t, err)
}
