package commands

import (
	"github.com/google/uuid"
)

// CreateItemCommand represents a command to create a new inventory item
type CreateItemCommand struct {
	SKU          string
	ProductName  string
	Warehouse    string
	Quantity     int
	Reserved     int
	ReorderPoint *int // nil falls back to the configured default
	MinimumStock int
	MaximumStock int
	PerformedBy  string
}

// AdjustStockCommand represents a command to adjust stock by a signed delta
type AdjustStockCommand struct {
	ID          uuid.UUID
	Quantity    int
	Movement    string
	Reason      string
	Reference   string
	PerformedBy string
}

// ReserveStockCommand represents a command to reserve stock
type ReserveStockCommand struct {
	ID       uuid.UUID
	Quantity int
}

// ReleaseStockCommand represents a command to release reserved stock
type ReleaseStockCommand struct {
	ID       uuid.UUID
	Quantity int
}

// DiscontinueItemCommand marks an item as discontinued
type DiscontinueItemCommand struct {
	ID          uuid.UUID
	PerformedBy string
}
