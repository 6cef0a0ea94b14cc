package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/linemk/jpashop-orders/internal/domain/models"
	"github.com/linemk/jpashop-orders/internal/projection"
	"github.com/linemk/jpashop-orders/internal/storage"
)

// OrderQueryService отдаёт заказы разными стратегиями выборки.
// Каждый метод работает внутри одной ReadScope.
type OrderQueryService interface {
	FindOne(ctx context.Context, id int64) (models.OrderDetail, error)
	// ListRaw возвращает графы сущностей: поиск заказов и отдельная загрузка позиций каждого.
	ListRaw(ctx context.Context, search models.OrderSearch) ([]*models.Order, error)
	ListSummaries(ctx context.Context, search models.OrderSearch) ([]models.OrderSummary, error)
	// ListDetailsFetchJoin - один запрос с join всего графа, дубликаты убираются в памяти.
	ListDetailsFetchJoin(ctx context.Context) ([]models.OrderDetail, error)
	// ListDetailsLazy - поиск заказов и по запросу позиций на каждый заказ (1+N).
	ListDetailsLazy(ctx context.Context) ([]models.OrderDetail, error)
	// ListDetailsPaged - окно заказов и один запрос позиций на всё окно.
	ListDetailsPaged(ctx context.Context, page models.Page) ([]models.OrderDetail, error)
	// ListDetailsDTO - сводки DTO и по запросу позиций на каждую (1+N).
	ListDetailsDTO(ctx context.Context) ([]models.OrderDetail, error)
	// ListDetailsFlat - одна плоская выборка, свёрнутая по заказам.
	ListDetailsFlat(ctx context.Context) ([]models.OrderDetail, error)
	// ListDetailsFlatBatched - сводки DTO и один запрос позиций по списку id.
	ListDetailsFlatBatched(ctx context.Context) ([]models.OrderDetail, error)
}

type orderQueryService struct {
	log       *slog.Logger
	scope     storage.ReadScope
	orderRepo storage.OrderStorage
	queryRepo storage.OrderQueryStorage
}

func NewOrderQueryService(
	log *slog.Logger,
	scope storage.ReadScope,
	orderRepo storage.OrderStorage,
	queryRepo storage.OrderQueryStorage,
) OrderQueryService {
	return &orderQueryService{
		log:       log,
		scope:     scope,
		orderRepo: orderRepo,
		queryRepo: queryRepo,
	}
}

// read выполняет fn в ReadScope, классифицирует и логирует ошибку
func (s *orderQueryService) read(ctx context.Context, op string, fn func(q storage.Querier) error) error {
	logger := s.log.With(slog.String("op", op))

	err := classify(s.scope.Run(ctx, op, func(q storage.Querier) error {
		err := fn(q)
		if n, ok := storage.Queries(q); ok {
			logger.Debug("orders read", slog.Int64("round_trips", n))
		}
		return err
	}))
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, projection.ErrContractViolation):
		logger.Error("data access returned incomplete order graph", slog.Any("error", err))
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidArgument):
		logger.Info("request rejected", slog.Any("error", err))
	default:
		attrs := []any{slog.Any("error", err)}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			attrs = append(attrs, slog.String("pg_code", string(pqErr.Code)))
		}
		logger.Error("failed to read orders", attrs...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *orderQueryService) FindOne(ctx context.Context, id int64) (models.OrderDetail, error) {
	const op = "service.OrderQueryService.FindOne"
	if id <= 0 {
		return models.OrderDetail{}, fmt.Errorf("%s: %w", op, invalidArgument("id", "must be a positive integer"))
	}

	var detail models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		order, err := s.orderRepo.FindOne(ctx, q, id)
		if err != nil {
			return err
		}
		order.OrderItems, err = s.orderRepo.LoadOrderItems(ctx, q, order.ID)
		if err != nil {
			return err
		}
		detail, err = projection.ToOrderDetail(order)
		return err
	})
	if err != nil {
		return models.OrderDetail{}, err
	}
	return detail, nil
}

func (s *orderQueryService) ListRaw(ctx context.Context, search models.OrderSearch) ([]*models.Order, error) {
	const op = "service.OrderQueryService.ListRaw"

	var orders []*models.Order
	err := s.read(ctx, op, func(q storage.Querier) error {
		var err error
		orders, err = s.orderRepo.ListOrders(ctx, q, search)
		if err != nil {
			return err
		}
		// граф отдаётся целиком, поэтому коллекции загружаются до закрытия scope
		for _, o := range orders {
			if o.OrderItems, err = s.orderRepo.LoadOrderItems(ctx, q, o.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderQueryService) ListSummaries(ctx context.Context, search models.OrderSearch) ([]models.OrderSummary, error) {
	const op = "service.OrderQueryService.ListSummaries"

	var summaries []models.OrderSummary
	err := s.read(ctx, op, func(q storage.Querier) error {
		orders, err := s.orderRepo.ListOrders(ctx, q, search)
		if err != nil {
			return err
		}
		summaries, err = projection.ToOrderSummaries(orders)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *orderQueryService) ListDetailsFetchJoin(ctx context.Context) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsFetchJoin"

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		rows, err := s.orderRepo.ListWithItemsDenormalized(ctx, q)
		if err != nil {
			return err
		}
		details, err = projection.ToOrderDetails(models.DistinctOrders(rows))
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *orderQueryService) ListDetailsLazy(ctx context.Context) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsLazy"

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		orders, err := s.orderRepo.ListOrders(ctx, q, models.OrderSearch{})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.OrderItems, err = s.orderRepo.LoadOrderItems(ctx, q, o.ID); err != nil {
				return err
			}
		}
		details, err = projection.ToOrderDetails(orders)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *orderQueryService) ListDetailsPaged(ctx context.Context, page models.Page) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsPaged"
	if err := ValidatePage(page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		orders, err := s.orderRepo.ListWithMemberDelivery(ctx, q, page.Offset, page.Limit)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		items, err := s.orderRepo.LoadOrderItemsBatch(ctx, q, ids)
		if err != nil {
			return err
		}
		for _, o := range orders {
			o.OrderItems = items[o.ID]
		}
		details, err = projection.ToOrderDetails(orders)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *orderQueryService) ListDetailsDTO(ctx context.Context) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsDTO"

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		summaries, err := s.queryRepo.FindOrderSummaries(ctx, q)
		if err != nil {
			return err
		}
		lines := make(map[int64][]models.ItemLine, len(summaries))
		for _, sum := range summaries {
			if lines[sum.OrderID], err = s.queryRepo.FindItemLines(ctx, q, sum.OrderID); err != nil {
				return err
			}
		}
		details, err = projection.AssembleOrderDetailsBatched(summaries, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *orderQueryService) ListDetailsFlat(ctx context.Context) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsFlat"

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		flats, err := s.queryRepo.FindOrderFlats(ctx, q)
		if err != nil {
			return err
		}
		details = projection.FoldOrderFlats(flats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *orderQueryService) ListDetailsFlatBatched(ctx context.Context) ([]models.OrderDetail, error) {
	const op = "service.OrderQueryService.ListDetailsFlatBatched"

	var details []models.OrderDetail
	err := s.read(ctx, op, func(q storage.Querier) error {
		summaries, err := s.queryRepo.FindOrderSummaries(ctx, q)
		if err != nil {
			return err
		}
		ids := projection.OrderIDs(summaries)
		lines, err := s.queryRepo.FindItemLinesByOrderIDs(ctx, q, ids)
		if err != nil {
			return err
		}
		details, err = projection.AssembleOrderDetailsBatched(summaries, projection.GroupItemLines(ids, lines))
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
