package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/jpashop-orders/internal/domain/models"
)

func TestOrder_JSONKeepsItemsLoadedState(t *testing.T) {
	tests := []struct {
		name   string
		items  []*models.OrderItem
		loaded bool
		want   string
	}{
		{"not loaded", nil, false, "null"},
		{"loaded empty", []*models.OrderItem{}, true, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{ID: 2, Status: models.OrderStatusOrdered, OrderItems: tt.items}
			assert.Equal(t, tt.loaded, order.ItemsLoaded())

			b, err := json.Marshal(order)
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &fields))
			require.Contains(t, fields, "orderItems")
			assert.Equal(t, tt.want, string(fields["orderItems"]))
		})
	}
}

func TestDistinctOrders_KeepsFirstSeen(t *testing.T) {
	a := &models.Order{ID: 1}
	b := &models.Order{ID: 2}

	result := models.DistinctOrders([]*models.Order{a, a, b, a, b})
	require.Len(t, result, 2)
	assert.Same(t, a, result[0])
	assert.Same(t, b, result[1])
}
