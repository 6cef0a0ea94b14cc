package models

// MaxListOrders - верхняя граница числа строк в поиске заказов
const MaxListOrders = 1000

// Размеры страницы по умолчанию и максимальный
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// OrderSearch - необязательные условия поиска заказов.
// Пустое поле означает отсутствие условия.
type OrderSearch struct {
	Status     OrderStatus
	MemberName string
}

// Page - окно выборки offset/limit
type Page struct {
	Offset int
	Limit  int
}
