package handlers

import (
	"net/http"

	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"
	"github.com/TanakaNakamura/factory-erp-api/internal/services"
	"github.com/TanakaNakamura/factory-erp-api/pkg/errors"
	"github.com/TanakaNakamura/factory-erp-api/pkg/logger"
	"github.com/TanakaNakamura/factory-erp-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	logger      *zap.Logger
	orders      *services.OrderService
	fulfillment *services.FulfillmentService
}

func NewOrderHandler(orders *services.OrderService, fulfillment *services.FulfillmentService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		logger:      logger,
		orders:      orders,
		fulfillment: fulfillment,
	}
}

// CreateOrder handles POST /api/v1/orders
// @Summary      Create an order
// @Description  Creates an order in pending. Every line must reference an existing inventory item.
// @Description  **Idempotency**: repeat the same X-Request-ID to get the stored response back.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string              false  "Request ID for idempotency (UUID)"
// @Param        request       body      CreateOrderRequest  true   "Order creation request"
// @Success      201           {object}  OrderResponse
// @Failure      400           {object}  ErrorResponse  "Invalid request"
// @Failure      401           {object}  ErrorResponse
// @Failure      403           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse  "Unknown inventory item"
// @Failure      409           {object}  ErrorResponse  "Duplicate order number"
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bind(c, &req) {
		return
	}

	lines := make([]commands.OrderLine, 0, len(req.Items))
	for _, line := range req.Items {
		itemID, err := uuid.Parse(line.ProductID)
		if err != nil {
			_ = c.Error(errors.NewValidationError("invalid product id", "items.product_id"))
			return
		}
		lines = append(lines, commands.OrderLine{ItemID: itemID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}

	order, err := h.orders.Create(c.Request.Context(), commands.CreateOrderCommand{
		OrderNumber: req.OrderNumber,
		Type:        req.Type,
		Priority:    req.Priority,
		CustomerID:  req.CustomerID,
		SupplierID:  req.SupplierID,
		Items:       lines,
		Notes:       req.Notes,
		CreatedBy:   middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.ForRequest(h.logger, c).Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
	)
	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// ListOrders handles GET /api/v1/orders
// @Summary      List orders
// @Description  Newest first. Filters are optional; page defaults to 1 and limit to 20 (max 100).
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Order status"
// @Param        type    query     string  false  "Order type"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  OrderListResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if !bindQuery(c, &query) {
		return
	}
	window := repository.OrderFilter{Page: query.Page, Limit: query.Limit}.Normalize()

	orders, total, err := h.orders.List(c.Request.Context(), query.Status, query.Type, window.Page, window.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, newOrderResponse(order))
	}
	c.JSON(http.StatusOK, OrderListResponse{Orders: out, Total: total, Page: window.Page, Limit: window.Limit})
}

// GetOrder handles GET /api/v1/orders/:id
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID (UUID)"
// @Success      200  {object}  OrderResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// GetTransitions handles GET /api/v1/orders/:id/transitions
// @Summary      Available status transitions
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID (UUID)"
// @Success      200  {object}  TransitionsResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /orders/{id}/transitions [get]
func (h *OrderHandler) GetTransitions(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}
	order, targets, err := h.orders.AvailableTransitions(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, string(target))
	}
	c.JSON(http.StatusOK, TransitionsResponse{
		OrderID:              order.ID.String(),
		CurrentStatus:        string(order.Status),
		AvailableTransitions: names,
	})
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status
// @Summary      Change the order status
// @Description  Applies a whitelisted transition. A concurrent change of the same order yields 409.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string               false  "Request ID for idempotency (UUID)"
// @Param        id            path      string               true   "Order ID (UUID)"
// @Param        request       body      UpdateStatusRequest  true   "Target status"
// @Success      200           {object}  OrderResponse
// @Failure      400           {object}  ErrorResponse  "Invalid transition"
// @Failure      404           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse  "Status changed concurrently"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), commands.UpdateOrderStatusCommand{
		ID:     id,
		Target: req.Status,
		UserID: middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.ForRequest(h.logger, c).Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// FulfillOrder handles POST /api/v1/orders/:id/fulfill
// @Summary      Fulfill an approved order
// @Description  Takes every line out of stock and ships the order. Nothing is taken when any line is short.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string  false  "Request ID for idempotency (UUID)"
// @Param        id            path      string  true   "Order ID (UUID)"
// @Success      200           {object}  OrderResponse
// @Failure      400           {object}  ErrorResponse  "Order not approved or insufficient stock"
// @Failure      404           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse  "Order fulfilled concurrently"
// @Router       /orders/{id}/fulfill [post]
func (h *OrderHandler) FulfillOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.fulfillment.Fulfill(c.Request.Context(), commands.FulfillOrderCommand{
		OrderID: id,
		UserID:  middleware.CurrentUsername(c),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

