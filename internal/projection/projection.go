// Package projection переводит загруженные заказы в DTO ответов API.
// Все функции чистые: они не обращаются к хранилищу и не догружают связи.
package projection

import (
	"errors"
	"fmt"

	"github.com/linemk/jpashop-orders/internal/domain/models"
)

// ErrContractViolation означает, что слой доступа к данным вернул граф,
// в котором не загружено то, что требуется для проекции. Это ошибка программы.
var ErrContractViolation = errors.New("projection contract violation")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// ToOrderSummary строит сводку заказа. Member и Delivery должны быть загружены.
func ToOrderSummary(o *models.Order) (models.OrderSummary, error) {
	if o == nil {
		return models.OrderSummary{}, violation("order is nil")
	}
	if o.Member == nil {
		return models.OrderSummary{}, violation("order %d: member not loaded", o.ID)
	}
	if o.Delivery == nil {
		return models.OrderSummary{}, violation("order %d: delivery not loaded", o.ID)
	}
	return models.OrderSummary{
		OrderID:     o.ID,
		Name:        o.Member.Name,
		OrderDate:   o.OrderDate,
		OrderStatus: o.Status,
		Address:     o.Delivery.Address,
	}, nil
}

// ToOrderDetail строит сводку вместе с позициями. Кроме Member и Delivery
// должна быть загружена коллекция позиций и товар каждой позиции.
func ToOrderDetail(o *models.Order) (models.OrderDetail, error) {
	summary, err := ToOrderSummary(o)
	if err != nil {
		return models.OrderDetail{}, err
	}
	if !o.ItemsLoaded() {
		return models.OrderDetail{}, violation("order %d: items not loaded", o.ID)
	}

	lines := make([]models.ItemLine, 0, len(o.OrderItems))
	for _, oi := range o.OrderItems {
		if oi == nil || oi.Item == nil {
			return models.OrderDetail{}, violation("order %d: item of order line not loaded", o.ID)
		}
		lines = append(lines, models.ItemLine{
			OrderID:    o.ID,
			ItemName:   oi.Item.Name,
			OrderPrice: oi.OrderPrice,
			Count:      oi.Count,
		})
	}
	return models.OrderDetail{OrderSummary: summary, OrderItems: lines}, nil
}

// ToOrderDetails применяет ToOrderDetail к каждому заказу, сохраняя порядок.
func ToOrderDetails(orders []*models.Order) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		d, err := ToOrderDetail(o)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// ToOrderSummaries применяет ToOrderSummary к каждому заказу, сохраняя порядок.
func ToOrderSummaries(orders []*models.Order) ([]models.OrderSummary, error) {
	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		s, err := ToOrderSummary(o)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// AssembleOrderDetailsBatched соединяет сводки с позициями, загруженными пачкой.
// Для каждой сводки в linesByOrderID должен быть ключ, пустой срез допустим.
func AssembleOrderDetailsBatched(summaries []models.OrderSummary, linesByOrderID map[int64][]models.ItemLine) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, 0, len(summaries))
	for _, s := range summaries {
		lines, ok := linesByOrderID[s.OrderID]
		if !ok {
			return nil, violation("order %d: item lines missing from batch", s.OrderID)
		}
		if lines == nil {
			lines = []models.ItemLine{}
		}
		details = append(details, models.OrderDetail{OrderSummary: s, OrderItems: lines})
	}
	return details, nil
}

// GroupItemLines раскладывает позиции по заказам. Ключ есть для каждого orderID,
// порядок позиций внутри заказа совпадает с порядком во входном срезе.
func GroupItemLines(orderIDs []int64, lines []models.ItemLine) map[int64][]models.ItemLine {
	grouped := make(map[int64][]models.ItemLine, len(orderIDs))
	for _, id := range orderIDs {
		grouped[id] = []models.ItemLine{}
	}
	for _, l := range lines {
		if _, ok := grouped[l.OrderID]; !ok {
			continue
		}
		grouped[l.OrderID] = append(grouped[l.OrderID], l)
	}
	return grouped
}

// FoldOrderFlats сворачивает строки плоского join'а в детали заказов.
// Заказы идут в порядке первого появления, позиции в порядке строк.
func FoldOrderFlats(flats []models.OrderFlat) []models.OrderDetail {
	index := make(map[int64]int)
	details := []models.OrderDetail{}
	for _, f := range flats {
		i, ok := index[f.OrderID]
		if !ok {
			i = len(details)
			index[f.OrderID] = i
			details = append(details, models.OrderDetail{
				OrderSummary: f.OrderSummary,
				OrderItems:   []models.ItemLine{},
			})
		}
		if !f.HasItem {
			continue
		}
		details[i].OrderItems = append(details[i].OrderItems, models.ItemLine{
			OrderID:    f.OrderID,
			ItemName:   f.ItemName,
			OrderPrice: f.OrderPrice,
			Count:      f.Count,
		})
	}
	return details
}

// OrderIDs возвращает идентификаторы сводок в том же порядке.
func OrderIDs(summaries []models.OrderSummary) []int64 {
	ids := make([]int64, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.OrderID)
	}
	return ids
}
