package handlers

import (
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
)

// ErrorResponse represents an error response
// @Description Standard error envelope
type ErrorResponse struct {
	// Error code
	Error string `json:"error" example:"InvalidTransition"`
	// Human-readable message
	Message string `json:"message" example:"invalid status transition"`
	// Additional details
	Details string `json:"details" example:"Invalid transition from approved to delivered. Available transitions: in_progress, cancelled"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"factory-erp-api"`
}

// CreateItemRequest represents the request body for creating an item
// @Description Request to create a new inventory item
type CreateItemRequest struct {
	// SKU, unique and stored uppercase
	SKU         string `json:"sku" binding:"required" example:"BOLT-M8"`
	ProductName string `json:"product_name" binding:"required" example:"M8 hex bolt"`
	Warehouse   string `json:"warehouse" example:"WH-01"`
	// Initial stock quantity (must be >= 0)
	Quantity int `json:"quantity" binding:"min=0" example:"100"`
	Reserved int `json:"reserved" binding:"min=0" example:"0"`
	// Omitted reorder point falls back to the configured default
	ReorderPoint *int `json:"reorder_point" binding:"omitempty,min=0" example:"20"`
	MinimumStock int  `json:"minimum_stock" binding:"min=0" example:"10"`
	MaximumStock int  `json:"maximum_stock" binding:"min=0" example:"500"`
}

// ItemResponse represents an inventory item
// @Description Inventory item with its derived state
type ItemResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SKU          string    `json:"sku" example:"BOLT-M8"`
	ProductName  string    `json:"product_name" example:"M8 hex bolt"`
	Warehouse    string    `json:"warehouse" example:"WH-01"`
	Quantity     int       `json:"quantity" example:"100"`
	Reserved     int       `json:"reserved" example:"20"`
	Available    int       `json:"available" example:"80"`
	ReorderPoint int       `json:"reorder_point" example:"20"`
	MinimumStock int       `json:"minimum_stock" example:"10"`
	MaximumStock int       `json:"maximum_stock" example:"500"`
	Discontinued bool      `json:"discontinued" example:"false"`
	State        string    `json:"state" example:"available"`
	Version      int       `json:"version" example:"3"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-15T12:00:00Z"`
}

func newItemResponse(item *domain.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:           item.ID.String(),
		SKU:          item.SKU,
		ProductName:  item.ProductName,
		Warehouse:    item.Warehouse,
		Quantity:     item.Quantity,
		Reserved:     item.Reserved,
		Available:    item.AvailableQuantity(),
		ReorderPoint: item.ReorderPoint,
		MinimumStock: item.MinimumStock,
		MaximumStock: item.MaximumStock,
		Discontinued: item.Discontinued,
		State:        string(item.State),
		Version:      item.Version,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// ListItemsQuery are the query parameters of the item list
type ListItemsQuery struct {
	LowStock bool   `form:"low_stock"`
	SKU      string `form:"sku"`
}

// ListOrdersQuery are the query parameters of the order list
type ListOrdersQuery struct {
	Status string `form:"status"`
	Type   string `form:"type"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ItemListResponse wraps a list of items
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total" example:"1"`
}

// AdjustStockRequest represents the request body for adjusting stock
// @Description Signed stock adjustment, positive adds and negative removes
type AdjustStockRequest struct {
	Quantity int `json:"quantity" binding:"required" example:"-5"`
	// inbound, outbound, transfer, adjustment, production or return
	MovementType string `json:"movement_type" example:"adjustment"`
	Reason       string `json:"reason" example:"cycle count"`
	Reference    string `json:"reference" example:"CC-2024-01"`
}

// QuantityRequest is the body of reserve and release requests
// @Description Quantity to reserve or release (must be >= 1)
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"5"`
}

// MovementResponse is one entry of the stock movement log
type MovementResponse struct {
	ID          string    `json:"id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	Type        string    `json:"type" example:"outbound"`
	Quantity    int       `json:"quantity" example:"5"`
	Reference   string    `json:"reference" example:"ORD-1A2B3C4D"`
	Reason      string    `json:"reason" example:"Order fulfillment"`
	PerformedBy string    `json:"performed_by" example:"supervisor"`
	Timestamp   time.Time `json:"timestamp" example:"2024-01-15T12:00:00Z"`
}

// MovementListResponse wraps the movement log, newest first
type MovementListResponse struct {
	ItemID    string             `json:"item_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Movements []MovementResponse `json:"movements"`
}

func newMovementListResponse(itemID string, movements []domain.StockMovement) MovementListResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementResponse{
			ID:          m.ID.String(),
			Type:        string(m.Type),
			Quantity:    m.Quantity,
			Reference:   m.Reference,
			Reason:      m.Reason,
			PerformedBy: m.PerformedBy,
			Timestamp:   m.Timestamp,
		})
	}
	return MovementListResponse{ItemID: itemID, Movements: out}
}

// OrderLineRequest is one line of a new order
type OrderLineRequest struct {
	// Inventory item id
	ProductID string  `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity  int     `json:"quantity" binding:"required,min=1" example:"5"`
	UnitPrice float64 `json:"unit_price" binding:"min=0" example:"1.25"`
}

// CreateOrderRequest represents the request body for creating an order
// @Description New orders start in pending
type CreateOrderRequest struct {
	// Generated when empty
	OrderNumber string `json:"order_number" example:"SO-2024-0001"`
	// sales, purchase, production or transfer
	Type string `json:"type" binding:"required" example:"sales"`
	// low, normal, high or urgent; defaults to normal
	Priority   string             `json:"priority" example:"high"`
	CustomerID string             `json:"customer_id" example:"CUST-42"`
	SupplierID string             `json:"supplier_id" example:""`
	Items      []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string             `json:"notes" example:"deliver to dock 3"`
}

// UpdateStatusRequest requests a status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"approved"`
}

// OrderLineResponse is one line of an order
type OrderLineResponse struct {
	ProductID  string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity   int     `json:"quantity" example:"5"`
	UnitPrice  float64 `json:"unit_price" example:"1.25"`
	TotalPrice float64 `json:"total_price" example:"6.25"`
}

// OrderResponse represents an order
type OrderResponse struct {
	ID          string              `json:"id" example:"0b7a4c1e-1c4a-4f5e-9a49-7a1f6c1e2d3b"`
	OrderNumber string              `json:"order_number" example:"SO-2024-0001"`
	Type        string              `json:"type" example:"sales"`
	Priority    string              `json:"priority" example:"high"`
	Status      string              `json:"status" example:"pending"`
	CustomerID  string              `json:"customer_id,omitempty" example:"CUST-42"`
	SupplierID  string              `json:"supplier_id,omitempty"`
	Items       []OrderLineResponse `json:"items"`
	Subtotal    float64             `json:"subtotal" example:"6.25"`
	Notes       string              `json:"notes,omitempty"`
	CreatedBy   string              `json:"created_by" example:"manager"`
	ApprovedBy  string              `json:"approved_by,omitempty" example:"manager"`
	Version     int                 `json:"version" example:"2"`
	CreatedAt   time.Time           `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time           `json:"updated_at" example:"2024-01-15T11:00:00Z"`
}

func newOrderResponse(order *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, OrderLineResponse{
			ProductID:  line.ItemID.String(),
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice(),
		})
	}
	return OrderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Type:        string(order.Type),
		Priority:    string(order.Priority),
		Status:      string(order.Status),
		CustomerID:  order.CustomerID,
		SupplierID:  order.SupplierID,
		Items:       lines,
		Subtotal:    order.Subtotal(),
		Notes:       order.Notes,
		CreatedBy:   order.CreatedBy,
		ApprovedBy:  order.ApprovedBy,
		Version:     order.Version,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total" example:"42"`
	Page   int             `json:"page" example:"1"`
	Limit  int             `json:"limit" example:"20"`
}

// TransitionsResponse lists the legal next statuses of an order
type TransitionsResponse struct {
	OrderID              string   `json:"order_id" example:"0b7a4c1e-1c4a-4f5e-9a49-7a1f6c1e2d3b"`
	CurrentStatus        string   `json:"current_status" example:"approved"`
	AvailableTransitions []string `json:"available_transitions" example:"in_progress,cancelled"`
}
