package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/url"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/linemk/jpashop-orders/internal/config"
	"github.com/linemk/jpashop-orders/internal/lib/logger"
)

const migrationsTable = "schema_migrations"

func main() {
	var migrationsPathFlag string
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")

	// флаги разбирает MustLoad вместе с -config
	cfg := config.MustLoad()
	log := logger.SetupLogger(cfg.Env)

	command := "up"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	// Создаем объект мигратора
	m, err := migrate.New(
		"file://"+migrationsPath,
		cfg.Database.DSN()+"&"+url.Values{"x-migrations-table": {migrationsTable}}.Encode(),
	)
	if err != nil {
		log.Error("failed to create migrate instance", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	switch command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return
		}
		if err != nil {
			log.Error("migration up failed", slog.Any("error", err))
			os.Exit(1)
		}
		log.Info("migrations applied successfully")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to roll back")
			return
		}
		if err != nil {
			log.Error("migration down failed", slog.Any("error", err))
			os.Exit(1)
		}
		log.Info("migration rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("no migrations applied yet")
			return
		}
		if err != nil {
			log.Error("failed to get version", slog.Any("error", err))
			os.Exit(1)
		}
		log.Info("current migration version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))

	default:
		log.Error("unknown command, expected up|down|version", slog.String("command", command))
		os.Exit(1)
	}
}
