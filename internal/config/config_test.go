package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"localhost:9093"}, cfg.KafkaBrokers)
	assert.Equal(t, 20, cfg.DefaultReorderPoint)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("DEFAULT_REORDER_POINT", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.DefaultReorderPoint)
}

func TestLoad_RejectsNegativeReorderPoint(t *testing.T) {
	t.Setenv("DEFAULT_REORDER_POINT", "-1")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("KAFKA_RETRIES", "many")

	_, err := Load()

	assert.Error(t, err)
}
