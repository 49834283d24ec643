package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.Server.Port)
	assert.InDelta(t, 0.0875, cfg.Checkout.TaxRate, 1e-9)
	assert.InDelta(t, 0.5, cfg.Checkout.MaxDiscountFraction, 1e-9)
	assert.Equal(t, int64(50), cfg.Checkout.MinOrderCents)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.Checkout.TaxRate, 1e-9)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_RejectsBadPolicy(t *testing.T) {
	t.Setenv("TAX_RATE", "1.5")

	_, err := Load()
	assert.ErrorContains(t, err, "TAX_RATE")
}

func TestLoad_RejectsInvertedOrderBounds(t *testing.T) {
	t.Setenv("MIN_ORDER_CENTS", "1000")
	t.Setenv("MAX_ORDER_CENTS", "500")

	_, err := Load()
	assert.ErrorContains(t, err, "order bounds")
}

func TestPostgresConfig_Pool(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	pool := cfg.Postgres.Pool()
	assert.Equal(t, "localhost", pool.Host)
	assert.Equal(t, int32(10), pool.MaxConns)
	assert.Contains(t, pool.DSN(), "sslmode=disable")
}
