package handlers

import (
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/auth"
	"github.com/TanakaNakamura/factory-erp-api/pkg/logger"
	"github.com/TanakaNakamura/factory-erp-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	Inventory      *InventoryHandler
	Orders         *OrderHandler
	Auth           *auth.AuthHandler
	JWT            *auth.JWTManager
	RequestIDStore middleware.RequestIDStore
	IdempotencyTTL time.Duration
	// Optional storage health probe
	Pinger Pinger
	Logger *zap.Logger
}

var (
	writers   = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleSupervisor}
	operators = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleSupervisor, auth.RoleOperator}
)

// NewRouter wires middleware and routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	router := gin.New()

	// CORS first so preflight requests never reach auth
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(log))
	router.Use(middleware.RequestIDMiddleware(log))
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", Health(cfg.Pinger))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", cfg.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.JWT, log))
		protected.Use(middleware.IdempotencyMiddleware(cfg.RequestIDStore, log, cfg.IdempotencyTTL))
		write := middleware.RequireRoles(log, writers...)
		operate := middleware.RequireRoles(log, operators...)

		orders := protected.Group("/orders")
		{
			orders.GET("", cfg.Orders.ListOrders)
			orders.GET("/:id", cfg.Orders.GetOrder)
			orders.GET("/:id/transitions", cfg.Orders.GetTransitions)
			orders.POST("", write, cfg.Orders.CreateOrder)
			orders.PATCH("/:id/status", write, cfg.Orders.UpdateStatus)
			orders.POST("/:id/fulfill", write, cfg.Orders.FulfillOrder)
		}

		inventory := protected.Group("/inventory/items")
		{
			inventory.GET("", cfg.Inventory.ListItems)
			inventory.GET("/:id", cfg.Inventory.GetItem)
			inventory.GET("/:id/status", cfg.Inventory.GetStatus)
			inventory.GET("/:id/movements", cfg.Inventory.ListMovements)
			inventory.POST("", write, cfg.Inventory.CreateItem)
			inventory.POST("/:id/discontinue", write, cfg.Inventory.Discontinue)
			inventory.POST("/:id/adjust", operate, cfg.Inventory.AdjustStock)
			inventory.POST("/:id/reserve", operate, cfg.Inventory.ReserveStock)
			inventory.POST("/:id/release", operate, cfg.Inventory.ReleaseStock)
		}
	}

	return router
}
