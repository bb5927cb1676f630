package commands

import (
	"github.com/google/uuid"
)

// OrderLine is one requested line of a new order
type OrderLine struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice float64
}

// CreateOrderCommand represents a command to create a new order
type CreateOrderCommand struct {
	OrderNumber string
	Type        string
	Priority    string
	CustomerID  string
	SupplierID  string
	Items       []OrderLine
	Notes       string
	CreatedBy   string
}

// UpdateOrderStatusCommand requests a status transition
type UpdateOrderStatusCommand struct {
	ID     uuid.UUID
	Target string
	UserID string
}

// FulfillOrderCommand ships an approved order from stock
type FulfillOrderCommand struct {
	OrderID uuid.UUID
	UserID  string
}
