package models

type DeliveryStatus string

const (
	DeliveryStatusReady    DeliveryStatus = "READY"
	DeliveryStatusComplete DeliveryStatus = "COMP"
)

// Delivery - доставка заказа, у каждого заказа ровно одна
type Delivery struct {
	ID      int64          `json:"id"`
	Address Address        `json:"address"`
	Status  DeliveryStatus `json:"status"`
}
