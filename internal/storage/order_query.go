package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/jpashop-orders/internal/domain/models"
)

// OrderQueryStorage выбирает данные сразу в плоские DTO, минуя граф сущностей.
type OrderQueryStorage interface {
	FindOrderSummaries(ctx context.Context, q Querier) ([]models.OrderSummary, error)
	FindItemLines(ctx context.Context, q Querier, orderID int64) ([]models.ItemLine, error)
	// FindItemLinesByOrderIDs загружает позиции для всех переданных заказов одним запросом.
	FindItemLinesByOrderIDs(ctx context.Context, q Querier, orderIDs []int64) ([]models.ItemLine, error)
	// FindOrderFlats возвращает полностью развёрнутый join, строка на каждую позицию.
	FindOrderFlats(ctx context.Context, q Querier) ([]models.OrderFlat, error)
}

type orderQueryRepository struct{}

func NewOrderQueryRepository() OrderQueryStorage {
	return &orderQueryRepository{}
}

// адрес в сводке берётся из доставки
const summaryColumns = `o.id, m.name, o.order_date, o.status, d.city, d.street, d.zipcode`

func summaryDest(s *models.OrderSummary) []any {
	return []any{
		&s.OrderID, &s.Name, &s.OrderDate, &s.OrderStatus,
		&s.Address.City, &s.Address.Street, &s.Address.Zipcode,
	}
}

func (r *orderQueryRepository) FindOrderSummaries(ctx context.Context, q Querier) ([]models.OrderSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM orders o
		JOIN members m ON m.id = o.member_id
		JOIN deliveries d ON d.id = o.delivery_id
		ORDER BY o.id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query order summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.OrderSummary{}
	for rows.Next() {
		var s models.OrderSummary
		if err := rows.Scan(summaryDest(&s)...); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *orderQueryRepository) FindItemLines(ctx context.Context, q Querier, orderID int64) ([]models.ItemLine, error) {
	query := `
		SELECT oi.order_id, i.name, oi.order_price, oi.count
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item lines: %w", err)
	}
	defer rows.Close()

	return scanItemLines(rows)
}

func (r *orderQueryRepository) FindItemLinesByOrderIDs(ctx context.Context, q Querier, orderIDs []int64) ([]models.ItemLine, error) {
	if len(orderIDs) == 0 {
		return []models.ItemLine{}, nil
	}

	query := `
		SELECT oi.order_id, i.name, oi.order_price, oi.count
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`
	rows, err := q.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query item lines batch: %w", err)
	}
	defer rows.Close()

	return scanItemLines(rows)
}

func scanItemLines(rows *sql.Rows) ([]models.ItemLine, error) {
	lines := []models.ItemLine{}
	for rows.Next() {
		var l models.ItemLine
		if err := rows.Scan(&l.OrderID, &l.ItemName, &l.OrderPrice, &l.Count); err != nil {
			return nil, fmt.Errorf("failed to scan item line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *orderQueryRepository) FindOrderFlats(ctx context.Context, q Querier) ([]models.OrderFlat, error) {
	query := `
		SELECT ` + summaryColumns + `,
			i.name, oi.order_price, oi.count
		FROM orders o
		JOIN members m ON m.id = o.member_id
		JOIN deliveries d ON d.id = o.delivery_id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN items i ON i.id = oi.item_id
		ORDER BY o.id, oi.id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query order flats: %w", err)
	}
	defer rows.Close()

	flats := []models.OrderFlat{}
	for rows.Next() {
		var (
			f                 models.OrderFlat
			itemName          sql.NullString
			orderPrice, count sql.NullInt64
		)
		dest := append(summaryDest(&f.OrderSummary), &itemName, &orderPrice, &count)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order flat: %w", err)
		}
		if orderPrice.Valid {
			f.HasItem = true
			f.ItemName = itemName.String
			f.OrderPrice = int(orderPrice.Int64)
			f.Count = int(count.Int64)
		}
		flats = append(flats, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flats, nil
}
