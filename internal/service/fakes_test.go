package service_test

import (
	"context"
	"strings"
	"time"

	"github.com/linemk/jpashop-orders/internal/domain/models"
	"github.com/linemk/jpashop-orders/internal/storage"
)

// fakeOrder - строка "базы" для фиктивных репозиториев
type fakeOrder struct {
	id       int64
	member   models.Member
	delivery models.Delivery
	date     time.Time
	status   models.OrderStatus
	items    []models.OrderItem
}

// fakeDB хранит заказы по возрастанию id и считает обращения к хранилищу.
// Каждый вызов отдаёт свежие копии, как это делает настоящий драйвер.
type fakeDB struct {
	orders []fakeOrder
	calls  int
	err    error
	// dropDelivery имитирует репозиторий, который не загрузил Delivery
	dropDelivery bool
}

func (f *fakeDB) header(o fakeOrder) *models.Order {
	member := o.member
	delivery := o.delivery
	order := &models.Order{
		ID:        o.id,
		Member:    &member,
		Delivery:  &delivery,
		OrderDate: o.date,
		Status:    o.status,
	}
	if f.dropDelivery {
		order.Delivery = nil
	}
	return order
}

func (f *fakeDB) items(o fakeOrder) []*models.OrderItem {
	result := []*models.OrderItem{}
	for _, oi := range o.items {
		copied := oi
		item := *oi.Item
		copied.Item = &item
		result = append(result, &copied)
	}
	return result
}

func (f *fakeDB) find(id int64) (fakeOrder, bool) {
	for _, o := range f.orders {
		if o.id == id {
			return o, true
		}
	}
	return fakeOrder{}, false
}

func (f *fakeDB) hit() error {
	f.calls++
	return f.err
}

type fakeOrderRepo struct{ db *fakeDB }

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) FindOne(ctx context.Context, q storage.Querier, id int64) (*models.Order, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	o, ok := r.db.find(id)
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return r.db.header(o), nil
}

func (r *fakeOrderRepo) ListOrders(ctx context.Context, q storage.Querier, search models.OrderSearch) ([]*models.Order, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []*models.Order{}
	for _, o := range r.db.orders {
		if search.Status != "" && o.status != search.Status {
			continue
		}
		if name := strings.TrimSpace(search.MemberName); name != "" && !strings.Contains(o.member.Name, search.MemberName) {
			continue
		}
		if len(result) == models.MaxListOrders {
			break
		}
		result = append(result, r.db.header(o))
	}
	return result, nil
}

func (r *fakeOrderRepo) ListWithItemsDenormalized(ctx context.Context, q storage.Querier) ([]*models.Order, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []*models.Order{}
	for _, o := range r.db.orders {
		order := r.db.header(o)
		order.OrderItems = r.db.items(o)
		if len(o.items) == 0 {
			result = append(result, order)
			continue
		}
		for range o.items {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) ListWithMemberDelivery(ctx context.Context, q storage.Querier, offset, limit int) ([]*models.Order, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []*models.Order{}
	for i := offset; i < len(r.db.orders) && i < offset+limit; i++ {
		result = append(result, r.db.header(r.db.orders[i]))
	}
	return result, nil
}

func (r *fakeOrderRepo) LoadOrderItems(ctx context.Context, q storage.Querier, orderID int64) ([]*models.OrderItem, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	o, _ := r.db.find(orderID)
	return r.db.items(o), nil
}

func (r *fakeOrderRepo) LoadOrderItemsBatch(ctx context.Context, q storage.Querier, orderIDs []int64) (map[int64][]*models.OrderItem, error) {
	result := make(map[int64][]*models.OrderItem, len(orderIDs))
	for _, id := range orderIDs {
		result[id] = []*models.OrderItem{}
	}
	if len(orderIDs) == 0 {
		return result, nil
	}
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	for _, id := range orderIDs {
		o, _ := r.db.find(id)
		result[id] = r.db.items(o)
	}
	return result, nil
}

type fakeQueryRepo struct{ db *fakeDB }

var _ storage.OrderQueryStorage = (*fakeQueryRepo)(nil)

func summaryOf(o fakeOrder) models.OrderSummary {
	return models.OrderSummary{
		OrderID:     o.id,
		Name:        o.member.Name,
		OrderDate:   o.date,
		OrderStatus: o.status,
		Address:     o.delivery.Address,
	}
}

func lineOf(orderID int64, oi models.OrderItem) models.ItemLine {
	return models.ItemLine{OrderID: orderID, ItemName: oi.Item.Name, OrderPrice: oi.OrderPrice, Count: oi.Count}
}

func (r *fakeQueryRepo) FindOrderSummaries(ctx context.Context, q storage.Querier) ([]models.OrderSummary, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []models.OrderSummary{}
	for _, o := range r.db.orders {
		result = append(result, summaryOf(o))
	}
	return result, nil
}

func (r *fakeQueryRepo) FindItemLines(ctx context.Context, q storage.Querier, orderID int64) ([]models.ItemLine, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []models.ItemLine{}
	o, _ := r.db.find(orderID)
	for _, oi := range o.items {
		result = append(result, lineOf(o.id, oi))
	}
	return result, nil
}

func (r *fakeQueryRepo) FindItemLinesByOrderIDs(ctx context.Context, q storage.Querier, orderIDs []int64) ([]models.ItemLine, error) {
	if len(orderIDs) == 0 {
		return []models.ItemLine{}, nil
	}
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []models.ItemLine{}
	for _, id := range orderIDs {
		o, _ := r.db.find(id)
		for _, oi := range o.items {
			result = append(result, lineOf(o.id, oi))
		}
	}
	return result, nil
}

func (r *fakeQueryRepo) FindOrderFlats(ctx context.Context, q storage.Querier) ([]models.OrderFlat, error) {
	if err := r.db.hit(); err != nil {
		return nil, err
	}
	result := []models.OrderFlat{}
	for _, o := range r.db.orders {
		if len(o.items) == 0 {
			result = append(result, models.OrderFlat{OrderSummary: summaryOf(o)})
			continue
		}
		for _, oi := range o.items {
			result = append(result, models.OrderFlat{
				OrderSummary: summaryOf(o),
				HasItem:      true,
				ItemName:     oi.Item.Name,
				OrderPrice:   oi.OrderPrice,
				Count:        oi.Count,
			})
		}
	}
	return result, nil
}

// seedOrders строит n заказов; у заказа i ровно (i-1)%4 позиций, так что
// встречаются заказы и без позиций, и с несколькими
func seedOrders(n int) []fakeOrder {
	names := []string{"Joanna", "Anna", "Hanna", "ANN", "userA"}
	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	orders := make([]fakeOrder, 0, n)
	var itemID int64
	for i := 1; i <= n; i++ {
		id := int64(i)
		status := models.OrderStatusOrdered
		if i%3 == 0 {
			status = models.OrderStatusCanceled
		}
		o := fakeOrder{
			id:       id,
			member:   models.Member{ID: id, Name: names[(i-1)%len(names)], Address: models.Address{City: "Seoul"}},
			delivery: models.Delivery{ID: id, Status: models.DeliveryStatusReady, Address: models.Address{City: "Busan", Street: "st", Zipcode: "1000"}},
			date:     date.Add(time.Duration(i) * time.Hour),
			status:   status,
		}
		for j := 0; j < (i-1)%4; j++ {
			itemID++
			o.items = append(o.items, models.OrderItem{
				ID:         itemID,
				OrderID:    id,
				Item:       &models.Item{ID: itemID, Name: "BOOK-" + string(rune('A'+j)), Price: 1000 * (j + 1)},
				OrderPrice: 1000 * (j + 1),
				Count:      j + 1,
			})
		}
		orders = append(orders, o)
	}
	return orders
}
