package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	order, err := NewOrder(NewOrderParams{
		OrderNumber: " so-1001 ",
		Type:        OrderTypeSales,
		CustomerID:  "cust-1",
		Items: []OrderItem{
			{ItemID: uuid.New(), Quantity: 2, UnitPrice: 10.5},
			{ItemID: uuid.New(), Quantity: 1, UnitPrice: 4},
		},
		CreatedBy: "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "SO-1001", order.OrderNumber)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PriorityNormal, order.Priority)
	assert.Equal(t, 25.0, order.Subtotal())
	assert.Equal(t, 1, order.Version)
}

func TestNewOrder_GeneratesNumber(t *testing.T) {
	order, err := NewOrder(NewOrderParams{
		Type:  OrderTypeProduction,
		Items: []OrderItem{{ItemID: uuid.New(), Quantity: 1}},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
}

func TestNewOrder_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		params NewOrderParams
	}{
		{"no items", NewOrderParams{Type: OrderTypeSales}},
		{"zero quantity", NewOrderParams{Type: OrderTypeSales, Items: []OrderItem{{ItemID: uuid.New(), Quantity: 0}}}},
		{"negative price", NewOrderParams{Type: OrderTypeSales, Items: []OrderItem{{ItemID: uuid.New(), Quantity: 1, UnitPrice: -1}}}},
		{"unknown type", NewOrderParams{Type: "gift", Items: []OrderItem{{ItemID: uuid.New(), Quantity: 1}}}},
		{"unknown priority", NewOrderParams{Type: OrderTypeSales, Priority: "whenever", Items: []OrderItem{{ItemID: uuid.New(), Quantity: 1}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.params)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}
