package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/auth"
	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/config"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/handlers"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"
	"github.com/TanakaNakamura/factory-erp-api/internal/services"
	"github.com/TanakaNakamura/factory-erp-api/pkg/logger"
	"github.com/TanakaNakamura/factory-erp-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/TanakaNakamura/factory-erp-api/docs" // Import docs for Swagger
)

// @title           Factory ERP API
// @version         1.0
// @description     Order status engine, inventory state engine and order fulfillment for a factory ERP

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("Starting Factory ERP API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Storage
	var (
		inventoryRepo repository.InventoryRepository
		orderRepo     repository.OrderRepository
		pinger        handlers.Pinger
	)
	if cfg.SQLitePath != "" {
		db, err := repository.OpenSQLite(cfg.SQLitePath, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to open database", zap.String("path", cfg.SQLitePath), zap.Error(err))
		}
		defer db.Close()
		inventoryRepo = repository.NewSQLiteInventoryRepository(db)
		orderRepo = repository.NewSQLiteOrderRepository(db)
		pinger = db
		appLogger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
	} else {
		inventoryRepo = repository.NewInventoryRepository()
		orderRepo = repository.NewOrderRepository()
		appLogger.Warn("SQLITE_PATH not set, using in-memory storage")
	}

	// Events
	var publisher events.EventPublisher = events.NewEventPublisher(appLogger)
	if cfg.KafkaEnabled {
		appLogger.Info("Kafka Configuration",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_orders", cfg.KafkaTopicOrders),
			zap.String("topic_inventory", cfg.KafkaTopicInventory),
			zap.String("acks", cfg.KafkaAcks),
			zap.Int("retries", cfg.KafkaRetries),
		)
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, using in-memory fallback", zap.Error(err))
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
		}
	}

	// Cache
	store := cache.NewCache(cfg, appLogger)
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	statuses := cache.NewStatusCache(store, cache.TTL(cfg.CacheTTLSeconds), appLogger)

	// Services
	engine := domain.NewStatusEngine(services.NewAuditHook(appLogger), appLogger)
	orderService := services.NewOrderService(orderRepo, inventoryRepo, engine, publisher, appLogger)
	inventoryService := services.NewInventoryService(inventoryRepo, statuses, publisher, appLogger, cfg.DefaultReorderPoint)
	fulfillmentService := services.NewFulfillmentService(orderService, inventoryRepo, statuses, publisher, appLogger)

	// Auth
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, appLogger)
	users, err := auth.NewUserDirectory(bcrypt.DefaultCost, auth.DemoCredentials...)
	if err != nil {
		appLogger.Fatal("Failed to build user directory", zap.Error(err))
	}
	appLogger.Info("JWT Configuration",
		zap.Int("secret_length", len(cfg.JWTSecret)),
		zap.Duration("ttl", cfg.JWTTTL),
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		Inventory:      handlers.NewInventoryHandler(inventoryService, appLogger),
		Orders:         handlers.NewOrderHandler(orderService, fulfillmentService, appLogger),
		Auth:           auth.NewAuthHandler(jwtManager, users, appLogger),
		JWT:            jwtManager,
		RequestIDStore: middleware.NewCacheRequestIDStore(store),
		IdempotencyTTL: cfg.IdempotencyTTL,
		Pinger:         pinger,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
