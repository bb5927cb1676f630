package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementInbound    MovementType = "inbound"
	MovementOutbound   MovementType = "outbound"
	MovementTransfer   MovementType = "transfer"
	MovementAdjustment MovementType = "adjustment"
	MovementProduction MovementType = "production"
	MovementReturn     MovementType = "return"
)

// ParseMovementType converts user input, defaulting to adjustment.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case "":
		return MovementAdjustment, nil
	case MovementInbound, MovementOutbound, MovementTransfer, MovementAdjustment, MovementProduction, MovementReturn:
		return MovementType(s), nil
	default:
		return "", invalidArgument("unknown movement type %q", s)
	}
}

// StockMovement is one entry of an item's stock ledger
type StockMovement struct {
	ID          uuid.UUID
	ItemID      uuid.UUID
	Type        MovementType
	Quantity    int
	Reference   string
	Reason      string
	PerformedBy string
	Timestamp   time.Time
}

// InventoryItem represents the aggregate root for inventory
type InventoryItem struct {
	ID           uuid.UUID
	SKU          string
	ProductName  string
	Warehouse    string
	Quantity     int
	Reserved     int
	ReorderPoint int
	MinimumStock int
	MaximumStock int
	Discontinued bool
	State        InventoryState
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int // For optimistic locking

	pending []StockMovement
}

// NewItemParams holds the inputs for a new inventory item
type NewItemParams struct {
	SKU          string
	ProductName  string
	Warehouse    string
	Quantity     int
	Reserved     int
	ReorderPoint int
	MinimumStock int
	MaximumStock int
}

// NewInventoryItem creates a new inventory item with its state derived
func NewInventoryItem(p NewItemParams) (*InventoryItem, error) {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if p.SKU == "" {
		return nil, invalidArgument("sku is required")
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return nil, invalidArgument("product name is required")
	}
	if p.MinimumStock < 0 || p.MaximumStock < 0 {
		return nil, invalidArgument("stock bounds must be >= 0")
	}
	now := time.Now().UTC()
	item := &InventoryItem{
		ID:           uuid.New(),
		SKU:          p.SKU,
		ProductName:  p.ProductName,
		Warehouse:    p.Warehouse,
		Quantity:     p.Quantity,
		Reserved:     p.Reserved,
		ReorderPoint: p.ReorderPoint,
		MinimumStock: p.MinimumStock,
		MaximumStock: p.MaximumStock,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
	if err := item.RefreshState(); err != nil {
		return nil, err
	}
	return item, nil
}

// Levels returns the numbers the state engine works on
func (i *InventoryItem) Levels() StockLevels {
	return StockLevels{Current: i.Quantity, Reserved: i.Reserved, ReorderPoint: i.ReorderPoint}
}

// AvailableQuantity returns the available quantity (total - reserved, floored at zero)
func (i *InventoryItem) AvailableQuantity() int {
	return i.Levels().NetAvailable()
}

// RefreshState re-derives State. A discontinued item stays discontinued.
func (i *InventoryItem) RefreshState() error {
	if i.Discontinued {
		i.State = StateDiscontinued
		return nil
	}
	state, err := DeriveState(i.Levels())
	if err != nil {
		return err
	}
	i.State = state
	return nil
}

// AdjustStock adjusts the stock quantity
func (i *InventoryItem) AdjustStock(delta int, movement MovementType, reason, reference, performedBy string) error {
	newQuantity := i.Quantity + delta
	if newQuantity < 0 {
		return ErrInsufficientStock
	}
	i.Quantity = newQuantity
	i.record(movement, delta, reason, reference, performedBy)
	return i.touch()
}

// ReserveStock reserves stock if the current state allows it
func (i *InventoryItem) ReserveStock(quantity int) error {
	if quantity <= 0 {
		return invalidArgument("reserve quantity must be > 0, got %d", quantity)
	}
	ok, err := CanReserve(i.State, i.Quantity, i.Reserved, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientStock
	}
	i.Reserved += quantity
	return i.touch()
}

// ReleaseStock releases reserved stock
func (i *InventoryItem) ReleaseStock(quantity int) error {
	if quantity <= 0 || i.Reserved < quantity {
		return ErrInvalidReleaseQuantity
	}
	i.Reserved -= quantity
	return i.touch()
}

// Dispatch removes quantity units for an order. Fulfilment checks gross
// stock, so reserved units may be shipped.
func (i *InventoryItem) Dispatch(quantity int, reference, performedBy string) error {
	if quantity <= 0 {
		return invalidArgument("dispatch quantity must be > 0, got %d", quantity)
	}
	ok, err := CanFulfill(i.State, i.Quantity, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientStock
	}
	i.Quantity -= quantity
	i.record(MovementOutbound, -quantity, "Order fulfillment - "+reference, reference, performedBy)
	return i.touch()
}

// MarkDiscontinued sets the sticky discontinued override
func (i *InventoryItem) MarkDiscontinued() {
	i.Discontinued = true
	i.State = StateDiscontinued
	i.UpdatedAt = time.Now().UTC()
	i.Version++
}

// TakeMovements returns movements recorded since the last call and clears them.
func (i *InventoryItem) TakeMovements() []StockMovement {
	out := i.pending
	i.pending = nil
	return out
}

func (i *InventoryItem) record(t MovementType, quantity int, reason, reference, performedBy string) {
	if reference == "" {
		reference = "ADJ-" + time.Now().UTC().Format("20060102150405")
	}
	i.pending = append(i.pending, StockMovement{
		ID:          uuid.New(),
		ItemID:      i.ID,
		Type:        t,
		Quantity:    quantity,
		Reference:   reference,
		Reason:      reason,
		PerformedBy: performedBy,
		Timestamp:   time.Now().UTC(),
	})
}

func (i *InventoryItem) touch() error {
	i.UpdatedAt = time.Now().UTC()
	i.Version++
	return i.RefreshState()
}

// StatusSnapshot is the derived, advisory view of an item
type StatusSnapshot struct {
	ItemID             uuid.UUID      `json:"item_id"`
	SKU                string         `json:"sku"`
	State              InventoryState `json:"state"`
	Message            string         `json:"message"`
	RecommendedActions []string       `json:"recommended_actions"`
	Quantity           int            `json:"quantity"`
	Reserved           int            `json:"reserved"`
	Available          int            `json:"available"`
	ReorderPoint       int            `json:"reorder_point"`
}

// Snapshot builds the advisory view from the current state
func (i *InventoryItem) Snapshot() (StatusSnapshot, error) {
	msg, err := StatusMessage(i.State, i.Quantity, i.Reserved)
	if err != nil {
		return StatusSnapshot{}, err
	}
	actions, err := RecommendedActions(i.State, i.Levels())
	if err != nil {
		return StatusSnapshot{}, err
	}
	return StatusSnapshot{
		ItemID:             i.ID,
		SKU:                i.SKU,
		State:              i.State,
		Message:            msg,
		RecommendedActions: actions,
		Quantity:           i.Quantity,
		Reserved:           i.Reserved,
		Available:          i.AvailableQuantity(),
		ReorderPoint:       i.ReorderPoint,
	}, nil
}
