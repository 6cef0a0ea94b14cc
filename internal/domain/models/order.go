package models

import "time"

// OrderStatus - статус заказа
type OrderStatus string

const (
	OrderStatusOrdered  OrderStatus = "ORDERED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Order представляет заказ вместе с графом связанных сущностей.
// Member и Delivery равны nil, если запрос, вернувший заказ, их не загрузил.
// OrderItems равен nil, пока коллекция не загружена отдельным запросом;
// в JSON это null, загруженная пустая коллекция - [].
type Order struct {
	ID         int64        `json:"id"`
	Member     *Member      `json:"member,omitempty"`
	Delivery   *Delivery    `json:"delivery,omitempty"`
	OrderItems []*OrderItem `json:"orderItems"`
	OrderDate  time.Time    `json:"orderDate"`
	Status     OrderStatus  `json:"status"`
}

// ItemsLoaded сообщает, была ли загружена коллекция позиций заказа
func (o *Order) ItemsLoaded() bool {
	return o.OrderItems != nil
}

// OrderItem - позиция заказа. Цена и количество фиксируются в момент оформления.
// Обратной ссылки на Order нет, только OrderID: граф сериализуется без циклов.
type OrderItem struct {
	ID         int64 `json:"id"`
	OrderID    int64 `json:"orderId"`
	Item       *Item `json:"item,omitempty"`
	OrderPrice int   `json:"orderPrice"`
	Count      int   `json:"count"`
}

// DistinctOrders убирает дубликаты, возникающие при join с коллекцией.
// Идентичность заказа определяется его ID, порядок первого появления сохраняется.
func DistinctOrders(orders []*Order) []*Order {
	seen := make(map[int64]struct{}, len(orders))
	result := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		result = append(result, o)
	}
	return result
}
