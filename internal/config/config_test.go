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

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "postgres", cfg.OrderDBDriver)
	assert.Equal(t, "wa.me", cfg.WhatsAppHost)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("ORDER_DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/orders.db")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)

	creds := cfg.OrderDB()
	assert.Equal(t, "sqlite", creds.Driver)
	assert.Equal(t, "/tmp/orders.db", creds.SQLitePath)
	assert.Equal(t, 6543, creds.Port)
}

func TestLoad_MongoSettings(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://catalog:27017")
	t.Setenv("MONGO_MAX_POOL", "20")
	t.Setenv("MONGO_SELECTION_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	mongo := cfg.Mongo()
	assert.Equal(t, "mongodb://catalog:27017", mongo.URI)
	assert.Equal(t, "menu", mongo.Database)
	assert.Equal(t, uint64(20), mongo.MaxPoolSize)
	assert.Equal(t, uint64(10), mongo.MinPoolSize)
	assert.Equal(t, 10*time.Second, mongo.ConnectTimeout)
	assert.Equal(t, 2*time.Second, mongo.ServerSelectionTimeout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
