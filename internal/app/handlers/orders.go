package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/jpashop-orders/internal/service"
)

// OrdersRawHandler обрабатывает GET /orders/raw.
// Отдаёт графы сущностей как есть, сравнительный вариант без DTO.
func OrdersRawHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersRawHandler"
		logger := log.With(slog.String("op", op))

		search, err := parseSearch(r.URL.Query())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		orders, err := svc.ListRaw(r.Context(), search)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, orders)
	}
}

// OrdersSimpleHandler обрабатывает GET /orders/simple
func OrdersSimpleHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersSimpleHandler"
		logger := log.With(slog.String("op", op))

		search, err := parseSearch(r.URL.Query())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		summaries, err := svc.ListSummaries(r.Context(), search)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, summaries)
	}
}

// OrdersDetailedNaiveHandler обрабатывает GET /orders/detailed-naive.
// Выборка идёт одним join'ом с коллекцией, поэтому offset/limit запрещены.
func OrdersDetailedNaiveHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedNaiveHandler"
		logger := log.With(slog.String("op", op))

		if err := rejectPaging(r.URL.Query()); err != nil {
			writeError(w, logger, err)
			return
		}

		details, err := svc.ListDetailsFetchJoin(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrdersDetailedLazyHandler обрабатывает GET /orders/detailed-lazy
func OrdersDetailedLazyHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedLazyHandler"
		logger := log.With(slog.String("op", op))

		details, err := svc.ListDetailsLazy(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrdersDetailedPagedHandler обрабатывает GET /orders/detailed-paged?offset=&limit=
func OrdersDetailedPagedHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedPagedHandler"
		logger := log.With(slog.String("op", op))

		page, err := parsePage(r.URL.Query())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		details, err := svc.ListDetailsPaged(r.Context(), page)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrdersDetailedDTOHandler обрабатывает GET /orders/detailed-dto
func OrdersDetailedDTOHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedDTOHandler"
		logger := log.With(slog.String("op", op))

		details, err := svc.ListDetailsDTO(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrdersDetailedFlatHandler обрабатывает GET /orders/detailed-flat.
// Плоская выборка повторяет заказ в каждой строке, поэтому offset/limit тоже запрещены.
func OrdersDetailedFlatHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedFlatHandler"
		logger := log.With(slog.String("op", op))

		if err := rejectPaging(r.URL.Query()); err != nil {
			writeError(w, logger, err)
			return
		}

		details, err := svc.ListDetailsFlat(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrdersDetailedFlatOptimizedHandler обрабатывает GET /orders/detailed-flat-optimized
func OrdersDetailedFlatOptimizedHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersDetailedFlatOptimizedHandler"
		logger := log.With(slog.String("op", op))

		details, err := svc.ListDetailsFlatBatched(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, details)
	}
}

// OrderHandler обрабатывает GET /orders/{id}
func OrderHandler(log *slog.Logger, svc service.OrderQueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseOrderID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		detail, err := svc.FindOne(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, detail)
	}
}

// writeError переводит вид ошибки сервиса в HTTP-статус.
// Подробности отдаются клиенту только для неверных параметров.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var invalid *service.InvalidArgumentError
	switch {
	case errors.As(err, &invalid):
		logger.Warn("invalid request", slog.Any("error", err))
		http.Error(w, invalid.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidArgument):
		logger.Warn("invalid request", slog.Any("error", err))
		http.Error(w, "invalid request", http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		logger.Info("order not found", slog.Any("error", err))
		http.Error(w, "order not found", http.StatusNotFound)
	default:
		logger.Error("failed to load orders", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
