package handlers

import (
	"net/http"

	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/services"
	"github.com/TanakaNakamura/factory-erp-api/pkg/logger"
	"github.com/TanakaNakamura/factory-erp-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	logger  *zap.Logger
	service *services.InventoryService
}

func NewInventoryHandler(service *services.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		logger:  logger,
		service: service,
	}
}

// CreateItem handles POST /api/v1/inventory/items
// @Summary      Create an inventory item
// @Description  Creates an item with its initial stock. The SKU must be unique. The state is derived from the stock levels.
// @Description  **Idempotency**: repeat the same X-Request-ID to get the stored response back.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string             false  "Request ID for idempotency (UUID)"
// @Param        request       body      CreateItemRequest  true   "Item creation request"
// @Success      201           {object}  ItemResponse
// @Failure      400           {object}  ErrorResponse  "Invalid request"
// @Failure      401           {object}  ErrorResponse  "Missing or invalid JWT"
// @Failure      403           {object}  ErrorResponse  "Role not allowed"
// @Failure      409           {object}  ErrorResponse  "Duplicate SKU"
// @Router       /inventory/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if !bind(c, &req) {
		return
	}

	item, err := h.service.Create(c.Request.Context(), commands.CreateItemCommand{
		SKU:          req.SKU,
		ProductName:  req.ProductName,
		Warehouse:    req.Warehouse,
		Quantity:     req.Quantity,
		Reserved:     req.Reserved,
		ReorderPoint: req.ReorderPoint,
		MinimumStock: req.MinimumStock,
		MaximumStock: req.MaximumStock,
		PerformedBy:  middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.ForRequest(h.logger, c).Info("Item created", zap.String("item_id", item.ID.String()))
	c.JSON(http.StatusCreated, newItemResponse(item))
}

// ListItems handles GET /api/v1/inventory/items
// @Summary      List inventory items
// @Description  Lists items ordered by SKU. low_stock=true keeps items at or below their reorder point. sku looks up a single item.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        low_stock  query     bool    false  "Only items at or below their reorder point"
// @Param        sku        query     string  false  "Exact SKU lookup"
// @Success      200        {object}  ItemListResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse  "No item with that SKU"
// @Router       /inventory/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var query ListItemsQuery
	if !bindQuery(c, &query) {
		return
	}

	if query.SKU != "" {
		item, err := h.service.GetBySKU(c.Request.Context(), query.SKU)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, ItemListResponse{Items: []ItemResponse{newItemResponse(item)}, Total: 1})
		return
	}

	items, err := h.service.List(c.Request.Context(), query.LowStock)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	c.JSON(http.StatusOK, ItemListResponse{Items: out, Total: len(out)})
}

// GetItem handles GET /api/v1/inventory/items/:id
// @Summary      Get an inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID (UUID)"
// @Success      200  {object}  ItemResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemResponse(item))
}

// GetStatus handles GET /api/v1/inventory/items/:id/status
// @Summary      Inventory status report
// @Description  Returns the derived state with an advisory message and recommended actions.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID (UUID)"
// @Success      200  {object}  domain.StatusSnapshot
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/items/{id}/status [get]
func (h *InventoryHandler) GetStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	snapshot, err := h.service.Status(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListMovements handles GET /api/v1/inventory/items/:id/movements
// @Summary      Stock movement log
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID (UUID)"
// @Success      200  {object}  MovementListResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	movements, err := h.service.Movements(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newMovementListResponse(id.String(), movements))
}

// AdjustStock handles POST /api/v1/inventory/items/:id/adjust
// @Summary      Adjust stock
// @Description  Adds (positive) or removes (negative) stock and records a movement. A result below zero is rejected.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency (UUID)"
// @Param        id            path      string              true   "Item ID (UUID)"
// @Param        request       body      AdjustStockRequest  true   "Adjustment"
// @Success      200           {object}  ItemResponse
// @Failure      400           {object}  ErrorResponse  "Invalid request or insufficient stock"
// @Failure      404           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse  "Concurrent modification"
// @Router       /inventory/items/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if !bind(c, &req) {
		return
	}

	item, err := h.service.AdjustStock(c.Request.Context(), commands.AdjustStockCommand{
		ID:          id,
		Quantity:    req.Quantity,
		Movement:    req.MovementType,
		Reason:      req.Reason,
		Reference:   req.Reference,
		PerformedBy: middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemResponse(item))
}

// ReserveStock handles POST /api/v1/inventory/items/:id/reserve
// @Summary      Reserve stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string           false  "Request ID for idempotency (UUID)"
// @Param        id            path      string           true   "Item ID (UUID)"
// @Param        request       body      QuantityRequest  true   "Quantity to reserve"
// @Success      200           {object}  ItemResponse
// @Failure      400           {object}  ErrorResponse  "Invalid request or insufficient stock"
// @Failure      404           {object}  ErrorResponse
// @Router       /inventory/items/{id}/reserve [post]
func (h *InventoryHandler) ReserveStock(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	var req QuantityRequest
	if !bind(c, &req) {
		return
	}

	item, err := h.service.Reserve(c.Request.Context(), commands.ReserveStockCommand{ID: id, Quantity: req.Quantity})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemResponse(item))
}

// ReleaseStock handles POST /api/v1/inventory/items/:id/release
// @Summary      Release reserved stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string           false  "Request ID for idempotency (UUID)"
// @Param        id            path      string           true   "Item ID (UUID)"
// @Param        request       body      QuantityRequest  true   "Quantity to release"
// @Success      200           {object}  ItemResponse
// @Failure      400           {object}  ErrorResponse  "Invalid request or more than reserved"
// @Failure      404           {object}  ErrorResponse
// @Router       /inventory/items/{id}/release [post]
func (h *InventoryHandler) ReleaseStock(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	var req QuantityRequest
	if !bind(c, &req) {
		return
	}

	item, err := h.service.Release(c.Request.Context(), commands.ReleaseStockCommand{ID: id, Quantity: req.Quantity})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemResponse(item))
}

// Discontinue handles POST /api/v1/inventory/items/:id/discontinue
// @Summary      Discontinue an item
// @Description  Marks the item discontinued. The state stays discontinued whatever the stock does afterwards.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID (UUID)"
// @Success      200  {object}  ItemResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /inventory/items/{id}/discontinue [post]
func (h *InventoryHandler) Discontinue(c *gin.Context) {
	id, ok := parseID(c, "id", "item")
	if !ok {
		return
	}
	item, err := h.service.Discontinue(c.Request.Context(), commands.DiscontinueItemCommand{
		ID:          id,
		PerformedBy: middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newItemResponse(item))
}
