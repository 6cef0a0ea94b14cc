package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linemk/jpashop-orders/internal/app/handlers"
	"github.com/linemk/jpashop-orders/internal/config"
	"github.com/linemk/jpashop-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/jpashop-orders/internal/lib/logger/handlers/urllog"
	"github.com/linemk/jpashop-orders/internal/service"
	"github.com/linemk/jpashop-orders/internal/telemetry"
)

type RouterConfig struct {
	Auth config.AuthConfig
	CORS config.CORSConfig
	// Metrics отдаётся на /metrics; nil - эндпоинт не регистрируется
	Metrics http.Handler
}

// NewRouter регистрирует все эндпоинты выборки заказов
func NewRouter(log *slog.Logger, svc service.OrderQueryService, rc RouterConfig) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(exposeRequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rc.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         rc.CORS.MaxAge,
	}))
	router.Use(telemetry.WithHTTPRoute)

	if rc.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rc.Metrics)
	}

	router.Route("/orders", func(r chi.Router) {
		if rc.Auth.Enabled {
			r.Use(jwtmiddleware.NewJWTMiddleware(rc.Auth.Secret))
		}

		// графы сущностей
		r.Get("/raw", handlers.OrdersRawHandler(log, svc))
		r.Get("/simple", handlers.OrdersSimpleHandler(log, svc))
		// детали заказов разными стратегиями
		r.Get("/detailed-naive", handlers.OrdersDetailedNaiveHandler(log, svc))
		r.Get("/detailed-lazy", handlers.OrdersDetailedLazyHandler(log, svc))
		r.Get("/detailed-paged", handlers.OrdersDetailedPagedHandler(log, svc))
		r.Get("/detailed-dto", handlers.OrdersDetailedDTOHandler(log, svc))
		r.Get("/detailed-flat", handlers.OrdersDetailedFlatHandler(log, svc))
		r.Get("/detailed-flat-optimized", handlers.OrdersDetailedFlatOptimizedHandler(log, svc))
		r.Get("/{id}", handlers.OrderHandler(log, svc))
	})

	return router
}

// exposeRequestID возвращает клиенту идентификатор запроса из middleware.RequestID
func exposeRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
