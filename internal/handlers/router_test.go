package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/auth"
	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"
	"github.com/TanakaNakamura/factory-erp-api/internal/services"
	"github.com/TanakaNakamura/factory-erp-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router    *gin.Engine
	jwt       *auth.JWTManager
	publisher *events.InMemoryEventPublisher
	tokens    map[auth.Role]string
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

func newTestServer(t *testing.T, pinger Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := cache.NewInMemoryCache()
	statuses := cache.NewStatusCache(store, time.Minute, logger)
	publisher := events.NewEventPublisher(logger)
	inventoryRepo := repository.NewInventoryRepository()
	orderRepo := repository.NewOrderRepository()

	engine := domain.NewStatusEngine(services.NewAuditHook(logger), logger)
	orderService := services.NewOrderService(orderRepo, inventoryRepo, engine, publisher, logger)
	inventoryService := services.NewInventoryService(inventoryRepo, statuses, publisher, logger, 20)
	fulfillment := services.NewFulfillmentService(orderService, inventoryRepo, statuses, publisher, logger)

	jwtManager := auth.NewJWTManager("handler-test-secret-with-32-characters", 10*time.Minute, logger)
	users, err := auth.NewUserDirectory(bcrypt.MinCost, auth.DemoCredentials...)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Inventory:      NewInventoryHandler(inventoryService, logger),
		Orders:         NewOrderHandler(orderService, fulfillment, logger),
		Auth:           auth.NewAuthHandler(jwtManager, users, logger),
		JWT:            jwtManager,
		RequestIDStore: middleware.NewCacheRequestIDStore(store),
		IdempotencyTTL: time.Minute,
		Pinger:         pinger,
		Logger:         logger,
	})

	s := &testServer{router: router, jwt: jwtManager, publisher: publisher, tokens: map[auth.Role]string{}}
	for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleSupervisor, auth.RoleOperator, auth.RoleViewer} {
		token, _, err := jwtManager.GenerateToken(auth.User{ID: "id-" + string(role), Username: string(role), Role: role})
		require.NoError(t, err)
		s.tokens[role] = token
	}
	return s
}

type call struct {
	method    string
	path      string
	body      interface{}
	role      auth.Role
	requestID string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.role != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[c.role])
	}
	if c.requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, c.requestID)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createItem(t *testing.T, sku string, quantity, reorderPoint int) ItemResponse {
	t.Helper()
	w := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/inventory/items",
		role:   auth.RoleManager,
		body: CreateItemRequest{
			SKU:          sku,
			ProductName:  "Part " + sku,
			Warehouse:    "WH-01",
			Quantity:     quantity,
			ReorderPoint: &reorderPoint,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[ItemResponse](t, w)
}

func (s *testServer) createOrder(t *testing.T, lines ...OrderLineRequest) OrderResponse {
	t.Helper()
	w := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/orders",
		role:   auth.RoleManager,
		body:   CreateOrderRequest{Type: "sales", Priority: "high", CustomerID: "CUST-1", Items: lines},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[OrderResponse](t, w)
}

func (s *testServer) setStatus(t *testing.T, orderID, status string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, call{
		method: http.MethodPatch,
		path:   "/api/v1/orders/" + orderID + "/status",
		role:   auth.RoleManager,
		body:   UpdateStatusRequest{Status: status},
	})
}
