package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/linemk/jpashop-orders/internal/config"
	"github.com/linemk/jpashop-orders/internal/service"
	"github.com/linemk/jpashop-orders/internal/storage"
	"github.com/linemk/jpashop-orders/internal/telemetry"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
}

// NewApp создаёт новый экземпляр App и проверяет подключение к БД
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := telemetry.OpenDB("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connected",
		slog.String("host", cfg.Database.Host),
		slog.String("name", cfg.Database.Name),
	)

	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}, nil
}

// NewOrderQueryService собирает сервис выборки заказов поверх пула соединений
func NewOrderQueryService(log *slog.Logger, db *sql.DB) service.OrderQueryService {
	return service.NewOrderQueryService(
		log,
		storage.NewReadScope(log, db),
		storage.NewOrderRepository(),
		storage.NewOrderQueryRepository(),
	)
}

func (a *App) Close() error {
	return a.DB.Close()
}
