package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	// Empty path keeps repositories in memory
	SQLitePath string `env:"SQLITE_PATH"`
	// JWT Configuration
	JWTSecret string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production-min-32-chars"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"10m"`
	// Kafka Configuration
	KafkaEnabled        bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9093"`
	KafkaTopicOrders    string   `env:"KAFKA_TOPIC_ORDERS" envDefault:"erp.orders"`
	KafkaTopicInventory string   `env:"KAFKA_TOPIC_INVENTORY" envDefault:"erp.inventory"`
	KafkaClientID       string   `env:"KAFKA_CLIENT_ID" envDefault:"factory-erp-api"`
	KafkaAcks           string   `env:"KAFKA_ACKS" envDefault:"all"`
	KafkaRetries        int      `env:"KAFKA_RETRIES" envDefault:"3"`
	// Redis Configuration
	RedisEnabled    bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`
	// Idempotency window for X-Request-ID replays
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"5m"`
	// Inventory defaults
	DefaultReorderPoint int `env:"DEFAULT_REORDER_POINT" envDefault:"20"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for i, broker := range cfg.KafkaBrokers {
		cfg.KafkaBrokers[i] = strings.TrimSpace(broker)
	}

	if cfg.DefaultReorderPoint < 0 {
		return nil, fmt.Errorf("DEFAULT_REORDER_POINT must be >= 0, got %d", cfg.DefaultReorderPoint)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
