package events

import (
	"context"
	"sync"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stream selects the topic family an event belongs to
type Stream string

const (
	StreamOrders    Stream = "orders"
	StreamInventory Stream = "inventory"
)

// Event is a domain event ready to be published
type Event interface {
	EventType() string
	Stream() Stream
	// PartitionKey keeps all events of one aggregate on one partition
	PartitionKey() string
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Order domain events
type OrderCreatedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Type        domain.OrderType   `json:"type"`
	Status      domain.OrderStatus `json:"status"`
	Total       float64            `json:"total"`
	CreatedBy   string             `json:"created_by"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func (e OrderCreatedEvent) EventType() string    { return "OrderCreated" }
func (e OrderCreatedEvent) Stream() Stream       { return StreamOrders }
func (e OrderCreatedEvent) PartitionKey() string { return e.OrderID.String() }

type OrderStatusChangedEvent struct {
	OrderID    string             `json:"order_id"`
	From       domain.OrderStatus `json:"from"`
	To         domain.OrderStatus `json:"to"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func (e OrderStatusChangedEvent) EventType() string    { return "OrderStatusChanged" }
func (e OrderStatusChangedEvent) Stream() Stream       { return StreamOrders }
func (e OrderStatusChangedEvent) PartitionKey() string { return e.OrderID }

type FulfilledLine struct {
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Remaining int       `json:"remaining"`
}

type OrderFulfilledEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Lines       []FulfilledLine `json:"lines"`
	FulfilledBy string          `json:"fulfilled_by"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (e OrderFulfilledEvent) EventType() string    { return "OrderFulfilled" }
func (e OrderFulfilledEvent) Stream() Stream       { return StreamOrders }
func (e OrderFulfilledEvent) PartitionKey() string { return e.OrderID.String() }

// Inventory domain events
type InventoryItemCreatedEvent struct {
	ItemID      uuid.UUID             `json:"item_id"`
	SKU         string                `json:"sku"`
	ProductName string                `json:"product_name"`
	Quantity    int                   `json:"quantity"`
	State       domain.InventoryState `json:"state"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

func (e InventoryItemCreatedEvent) EventType() string    { return "InventoryItemCreated" }
func (e InventoryItemCreatedEvent) Stream() Stream       { return StreamInventory }
func (e InventoryItemCreatedEvent) PartitionKey() string { return e.ItemID.String() }

type StockAdjustedEvent struct {
	ItemID     uuid.UUID           `json:"item_id"`
	SKU        string              `json:"sku"`
	Quantity   int                 `json:"quantity"`
	NewTotal   int                 `json:"new_total"`
	Movement   domain.MovementType `json:"movement"`
	Reason     string              `json:"reason,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func (e StockAdjustedEvent) EventType() string    { return "StockAdjusted" }
func (e StockAdjustedEvent) Stream() Stream       { return StreamInventory }
func (e StockAdjustedEvent) PartitionKey() string { return e.ItemID.String() }

type StockReservedEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	Reserved   int       `json:"reserved"`
	Available  int       `json:"available"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e StockReservedEvent) EventType() string    { return "StockReserved" }
func (e StockReservedEvent) Stream() Stream       { return StreamInventory }
func (e StockReservedEvent) PartitionKey() string { return e.ItemID.String() }

type StockReleasedEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	Reserved   int       `json:"reserved"`
	Available  int       `json:"available"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e StockReleasedEvent) EventType() string    { return "StockReleased" }
func (e StockReleasedEvent) Stream() Stream       { return StreamInventory }
func (e StockReleasedEvent) PartitionKey() string { return e.ItemID.String() }

type InventoryStateChangedEvent struct {
	ItemID     uuid.UUID             `json:"item_id"`
	SKU        string                `json:"sku"`
	From       domain.InventoryState `json:"from"`
	To         domain.InventoryState `json:"to"`
	OccurredAt time.Time             `json:"occurred_at"`
}

func (e InventoryStateChangedEvent) EventType() string    { return "InventoryStateChanged" }
func (e InventoryStateChangedEvent) Stream() Stream       { return StreamInventory }
func (e InventoryStateChangedEvent) PartitionKey() string { return e.ItemID.String() }

type InventoryDiscontinuedEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	SKU        string    `json:"sku"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e InventoryDiscontinuedEvent) EventType() string    { return "InventoryDiscontinued" }
func (e InventoryDiscontinuedEvent) Stream() Stream       { return StreamInventory }
func (e InventoryDiscontinuedEvent) PartitionKey() string { return e.ItemID.String() }

// InMemoryEventPublisher records events in process. Used when Kafka is
// disabled and in tests.
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	logger *zap.Logger
	events []Event
}

func NewEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventPublisher{
		logger: logger,
		events: make([]Event, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.logger.Debug("Event published (in-memory)",
		zap.String("event-type", event.EventType()),
		zap.String("key", event.PartitionKey()),
	)
	return nil
}

// Events returns a copy of everything published so far
func (p *InMemoryEventPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// EventTypes lists the type names of the published events in order
func (p *InMemoryEventPublisher) EventTypes() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}
