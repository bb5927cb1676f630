package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderType distinguishes sales, purchase, production and transfer orders
type OrderType string

const (
	OrderTypeSales      OrderType = "sales"
	OrderTypePurchase   OrderType = "purchase"
	OrderTypeProduction OrderType = "production"
	OrderTypeTransfer   OrderType = "transfer"
)

// OrderPriority is the scheduling priority of an order
type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityNormal OrderPriority = "normal"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

// OrderItem is one order line. ItemID references an inventory item.
type OrderItem struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice float64
}

// TotalPrice is quantity times unit price
func (l OrderItem) TotalPrice() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Order represents the aggregate root for orders
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	Type        OrderType
	Priority    OrderPriority
	CustomerID  string
	SupplierID  string
	Items       []OrderItem
	Status      OrderStatus
	Notes       string
	CreatedBy   string
	ApprovedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
}

// NewOrderParams holds the inputs for a new order
type NewOrderParams struct {
	OrderNumber string
	Type        OrderType
	Priority    OrderPriority
	CustomerID  string
	SupplierID  string
	Items       []OrderItem
	Notes       string
	CreatedBy   string
}

// NewOrder creates an order at pending, the first status with transition rules.
func NewOrder(p NewOrderParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, invalidArgument("order must contain at least one item")
	}
	for _, line := range p.Items {
		if line.Quantity < 1 {
			return nil, invalidArgument("item quantity must be >= 1, got %d", line.Quantity)
		}
		if line.UnitPrice < 0 {
			return nil, invalidArgument("unit price must be >= 0")
		}
	}
	switch p.Type {
	case OrderTypeSales, OrderTypePurchase, OrderTypeProduction, OrderTypeTransfer:
	default:
		return nil, invalidArgument("unknown order type %q", p.Type)
	}
	switch p.Priority {
	case "":
		p.Priority = PriorityNormal
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	default:
		return nil, invalidArgument("unknown order priority %q", p.Priority)
	}

	id := uuid.New()
	number := strings.ToUpper(strings.TrimSpace(p.OrderNumber))
	if number == "" {
		number = fmt.Sprintf("ORD-%s", strings.ToUpper(id.String()[:8]))
	}

	now := time.Now().UTC()
	items := make([]OrderItem, len(p.Items))
	copy(items, p.Items)
	return &Order{
		ID:          id,
		OrderNumber: number,
		Type:        p.Type,
		Priority:    p.Priority,
		CustomerID:  p.CustomerID,
		SupplierID:  p.SupplierID,
		Items:       items,
		Status:      StatusPending,
		Notes:       p.Notes,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}, nil
}

// Subtotal sums the line totals
func (o *Order) Subtotal() float64 {
	var total float64
	for _, line := range o.Items {
		total += line.TotalPrice()
	}
	return total
}
