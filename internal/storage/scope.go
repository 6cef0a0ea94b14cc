package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/linemk/jpashop-orders/internal/storage"

// Querier - общая часть *sql.DB и *sql.Tx, которой пользуются репозитории.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReadScope открывает границу чтения на время одного запроса к API.
type ReadScope interface {
	// Run выполняет fn внутри read-only транзакции. Транзакция фиксируется,
	// если fn вернула nil, и откатывается на любом другом пути выхода, включая панику.
	Run(ctx context.Context, name string, fn func(q Querier) error) error
}

type readScope struct {
	db      *sql.DB
	log     *slog.Logger
	queries metric.Int64Histogram
}

// NewReadScope создаёт ReadScope поверх пула соединений.
func NewReadScope(log *slog.Logger, db *sql.DB) ReadScope {
	meter := otel.Meter(instrumentationName)
	queries, err := meter.Int64Histogram(
		"orders.read_scope.queries",
		metric.WithDescription("Number of SQL statements issued inside one read scope"),
		metric.WithUnit("{statement}"),
	)
	if err != nil {
		log.Warn("failed to create read scope histogram", slog.Any("error", err))
	}
	return &readScope{db: db, log: log, queries: queries}
}

func (s *readScope) Run(ctx context.Context, name string, fn func(q Querier) error) error {
	const op = "storage.ReadScope.Run"
	logger := s.log.With(slog.String("op", op), slog.String("scope", name))

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	counter := &countingQuerier{q: tx}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
		}
		s.record(ctx, name, counter.n)
		logger.Debug("read scope finished", slog.Int64("queries", counter.n), slog.Bool("committed", committed))
	}()

	if err := fn(counter); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	committed = true
	return nil
}

func (s *readScope) record(ctx context.Context, name string, n int64) {
	if s.queries == nil {
		return
	}
	s.queries.Record(ctx, n, metric.WithAttributes(attribute.String("scope", name)))
}

// countingQuerier считает выполненные запросы. Один экземпляр живёт в пределах
// одного Run и не используется из нескольких горутин.
type countingQuerier struct {
	q Querier
	n int64
}

func (c *countingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	c.n++
	return c.q.QueryContext(ctx, query, args...)
}

func (c *countingQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	c.n++
	return c.q.QueryRowContext(ctx, query, args...)
}

// Queries возвращает число запросов, выполненных через q, если q получен из ReadScope.
func Queries(q Querier) (int64, bool) {
	c, ok := q.(*countingQuerier)
	if !ok {
		return 0, false
	}
	return c.n, true
}
