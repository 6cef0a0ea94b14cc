package models

// Item - товар каталога. Цена здесь текущая, в заказе хранится своя копия.
type Item struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         int    `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
}
