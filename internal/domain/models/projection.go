package models

import "time"

// OrderSummary - плоское представление заказа, одна строка на заказ
type OrderSummary struct {
	OrderID     int64       `json:"orderId"`
	Name        string      `json:"name"`
	OrderDate   time.Time   `json:"orderDate"`
	OrderStatus OrderStatus `json:"orderStatus"`
	Address     Address     `json:"address"`
}

// OrderDetail - OrderSummary вместе с позициями заказа
type OrderDetail struct {
	OrderSummary
	OrderItems []ItemLine `json:"orderItems"`
}

// ItemLine - позиция заказа в ответе API
type ItemLine struct {
	OrderID    int64  `json:"-"`
	ItemName   string `json:"itemName"`
	OrderPrice int    `json:"orderPrice"`
	Count      int    `json:"count"`
}

// OrderFlat - одна строка полностью развёрнутого join'а заказа с позициями.
// Поля позиции пустые, если у заказа нет позиций.
type OrderFlat struct {
	OrderSummary
	HasItem    bool
	ItemName   string
	OrderPrice int
	Count      int
}
