package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/linemk/jpashop-orders/internal/config"
	security "github.com/linemk/jpashop-orders/internal/jwt-new"
	"github.com/linemk/jpashop-orders/internal/lib/logger"
)

// token выпускает jwt для доступа к /orders при включённой авторизации
func main() {
	var subject string
	flag.StringVar(&subject, "subject", "reporting", "token subject")

	cfg := config.MustLoad()
	log := logger.SetupLogger(cfg.Env)

	if cfg.Auth.Secret == "" {
		log.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := security.NewToken(subject, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(token)
}
