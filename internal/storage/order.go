package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/linemk/jpashop-orders/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает выборки заказов в виде графа сущностей.
// Связи xToOne (Member, Delivery) подтягиваются join'ом, коллекция позиций
// загружается только там, где это явно сказано.
type OrderStorage interface {
	// FindOne возвращает заказ с Member и Delivery, позиции не загружаются.
	FindOne(ctx context.Context, q Querier, id int64) (*models.Order, error)
	// ListOrders ищет заказы по необязательным условиям, не более MaxListOrders строк.
	ListOrders(ctx context.Context, q Querier, search models.OrderSearch) ([]*models.Order, error)
	// ListWithItemsDenormalized загружает весь граф одним запросом.
	// Возвращает по элементу на каждую строку join'а: заказ с N позициями встречается N раз,
	// все вхождения указывают на один и тот же *Order. Пагинация невозможна.
	ListWithItemsDenormalized(ctx context.Context, q Querier) ([]*models.Order, error)
	// ListWithMemberDelivery возвращает окно заказов по возрастанию id, позиции не загружаются.
	ListWithMemberDelivery(ctx context.Context, q Querier, offset, limit int) ([]*models.Order, error)
	// LoadOrderItems загружает позиции одного заказа вместе с товарами.
	LoadOrderItems(ctx context.Context, q Querier, orderID int64) ([]*models.OrderItem, error)
	// LoadOrderItemsBatch загружает позиции сразу для списка заказов одним запросом.
	// В результате есть ключ для каждого переданного id.
	LoadOrderItemsBatch(ctx context.Context, q Querier, orderIDs []int64) (map[int64][]*models.OrderItem, error)
}

// orderRepository - реализация OrderStorage для Postgres.
type orderRepository struct {
	sb sq.StatementBuilderType
}

// NewOrderRepository создаёт репозиторий заказов.
func NewOrderRepository() OrderStorage {
	return &orderRepository{sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// колонки заказа и его xToOne связей, порядок совпадает с orderHeaderDest
var orderHeaderColumns = []string{
	"o.id", "o.order_date", "o.status",
	"m.id", "m.name", "m.city", "m.street", "m.zipcode",
	"d.id", "d.city", "d.street", "d.zipcode", "d.status",
}

const orderHeaderJoins = `
		FROM orders o
		JOIN members m ON m.id = o.member_id
		JOIN deliveries d ON d.id = o.delivery_id`

func orderHeaderDest(o *models.Order, m *models.Member, d *models.Delivery) []any {
	return []any{
		&o.ID, &o.OrderDate, &o.Status,
		&m.ID, &m.Name, &m.Address.City, &m.Address.Street, &m.Address.Zipcode,
		&d.ID, &d.Address.City, &d.Address.Street, &d.Address.Zipcode, &d.Status,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrderHeader(row scanner) (*models.Order, error) {
	o, m, d := &models.Order{}, &models.Member{}, &models.Delivery{}
	if err := row.Scan(orderHeaderDest(o, m, d)...); err != nil {
		return nil, err
	}
	o.Member = m
	o.Delivery = d
	return o, nil
}

func (r *orderRepository) FindOne(ctx context.Context, q Querier, id int64) (*models.Order, error) {
	query := "SELECT " + strings.Join(orderHeaderColumns, ", ") + orderHeaderJoins + `
		WHERE o.id = $1`
	order, err := scanOrderHeader(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, q Querier, search models.OrderSearch) ([]*models.Order, error) {
	builder := r.sb.
		Select(orderHeaderColumns...).
		From("orders o").
		Join("members m ON m.id = o.member_id").
		Join("deliveries d ON d.id = o.delivery_id")

	// условия добавляются только если заданы, между собой через AND
	if search.Status != "" {
		builder = builder.Where(sq.Eq{"o.status": string(search.Status)})
	}
	if strings.TrimSpace(search.MemberName) != "" {
		builder = builder.Where(sq.Like{"m.name": "%" + escapeLike(search.MemberName) + "%"})
	}

	query, args, err := builder.OrderBy("o.id").Limit(models.MaxListOrders).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrderHeaders(rows)
}

func (r *orderRepository) ListWithMemberDelivery(ctx context.Context, q Querier, offset, limit int) ([]*models.Order, error) {
	query := "SELECT " + strings.Join(orderHeaderColumns, ", ") + orderHeaderJoins + `
		ORDER BY o.id
		LIMIT $1 OFFSET $2`
	rows, err := q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders page: %w", err)
	}
	defer rows.Close()

	return scanOrderHeaders(rows)
}

func scanOrderHeaders(rows *sql.Rows) ([]*models.Order, error) {
	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrderHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListWithItemsDenormalized(ctx context.Context, q Querier) ([]*models.Order, error) {
	// join с коллекцией размножает строки заказа по числу позиций,
	// поэтому LIMIT/OFFSET здесь дали бы неверное окно
	query := "SELECT " + strings.Join(orderHeaderColumns, ", ") + `,
		oi.id, oi.order_price, oi.count,
		i.id, i.name, i.price, i.stock_quantity` + orderHeaderJoins + `
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN items i ON i.id = oi.item_id
		ORDER BY o.id, oi.id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders with items: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Order)
	result := []*models.Order{}
	for rows.Next() {
		o, m, d := &models.Order{}, &models.Member{}, &models.Delivery{}
		var (
			orderItemID, orderPrice, count sql.NullInt64
			itemID, itemPrice, stock       sql.NullInt64
			itemName                       sql.NullString
		)
		dest := append(orderHeaderDest(o, m, d),
			&orderItemID, &orderPrice, &count,
			&itemID, &itemName, &itemPrice, &stock,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		order, ok := byID[o.ID]
		if !ok {
			o.Member = m
			o.Delivery = d
			o.OrderItems = []*models.OrderItem{}
			byID[o.ID] = o
			order = o
		}

		if orderItemID.Valid {
			oi := &models.OrderItem{
				ID:         orderItemID.Int64,
				OrderID:    order.ID,
				OrderPrice: int(orderPrice.Int64),
				Count:      int(count.Int64),
			}
			if itemID.Valid {
				oi.Item = &models.Item{
					ID:            itemID.Int64,
					Name:          itemName.String,
					Price:         int(itemPrice.Int64),
					StockQuantity: int(stock.Int64),
				}
			}
			order.OrderItems = append(order.OrderItems, oi)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const orderItemColumns = `oi.id, oi.order_id, oi.order_price, oi.count,
		i.id, i.name, i.price, i.stock_quantity`

func (r *orderRepository) LoadOrderItems(ctx context.Context, q Querier, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		oi, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, oi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) LoadOrderItemsBatch(ctx context.Context, q Querier, orderIDs []int64) (map[int64][]*models.OrderItem, error) {
	result := make(map[int64][]*models.OrderItem, len(orderIDs))
	for _, id := range orderIDs {
		result[id] = []*models.OrderItem{}
	}
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items oi
		JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`
	rows, err := q.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		oi, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		result[oi.OrderID] = append(result[oi.OrderID], oi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrderItem(row scanner) (*models.OrderItem, error) {
	oi := &models.OrderItem{Item: &models.Item{}}
	err := row.Scan(
		&oi.ID, &oi.OrderID, &oi.OrderPrice, &oi.Count,
		&oi.Item.ID, &oi.Item.Name, &oi.Item.Price, &oi.Item.StockQuantity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order item: %w", err)
	}
	return oi, nil
}

// escapeLike экранирует метасимволы LIKE, чтобы значение искалось как обычная подстрока
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
