// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/config"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/database"
)

// Config is the full service configuration.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"checkout"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Server    ServerConfig
	Checkout  CheckoutConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Payment   PaymentConfig
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8084"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// CheckoutConfig holds the pricing and discount policy knobs.
type CheckoutConfig struct {
	// TaxRate is the fraction applied to the discounted cart subtotal.
	TaxRate float64 `env:"TAX_RATE" envDefault:"0.0875"`

	// MaxDiscountFraction caps combined promo and credit discounts as a
	// fraction of the cart subtotal.
	MaxDiscountFraction float64 `env:"MAX_DISCOUNT_FRACTION" envDefault:"0.5"`

	// MinOrderCents and MaxOrderCents bound the accepted cart subtotal.
	MinOrderCents int64 `env:"MIN_ORDER_CENTS" envDefault:"50"`
	MaxOrderCents int64 `env:"MAX_ORDER_CENTS" envDefault:"500000"`

	// SessionTTL bounds how long an open checkout session stays redeemable.
	SessionTTL time.Duration `env:"CHECKOUT_SESSION_TTL" envDefault:"30m"`
}

// PostgresConfig holds database settings.
type PostgresConfig struct {
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User            string        `env:"POSTGRES_USER" envDefault:"checkout"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"checkout"`
	DBName          string        `env:"POSTGRES_DB" envDefault:"checkout"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"5m"`
}

// Pool converts to the shared database config.
func (c PostgresConfig) Pool() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.DBName,
		SSLMode:         c.SSLMode,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
	}
}

// RedisConfig holds Redis settings for rate limiting.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Client converts to the shared database config.
func (c RedisConfig) Client() database.RedisConfig {
	return database.RedisConfig{Host: c.Host, Port: c.Port, Password: c.Password, DB: c.DB}
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Topic   string   `env:"KAFKA_CHECKOUT_TOPIC" envDefault:"checkout.events"`
}

// RateLimitConfig holds the per-user checkout rate limit.
type RateLimitConfig struct {
	Enabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxAttempts   int           `env:"RATE_LIMIT_MAX_ATTEMPTS" envDefault:"10"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	BlockDuration time.Duration `env:"RATE_LIMIT_BLOCK_DURATION" envDefault:"5m"`
}

// PaymentConfig holds the external payment provider settings.
type PaymentConfig struct {
	// Provider selects the implementation: "hosted" or "mock".
	Provider   string        `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	BaseURL    string        `env:"PAYMENT_BASE_URL" envDefault:"http://localhost:9095"`
	APIKey     string        `env:"PAYMENT_API_KEY" envDefault:""`
	Timeout    time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"10s"`
	MaxRetries int           `env:"PAYMENT_MAX_RETRIES" envDefault:"2"`
}

// Load reads configuration from the environment and validates the policy
// knobs that would silently corrupt pricing if misconfigured.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		return fmt.Errorf("config: TAX_RATE must be in [0, 1), got %v", c.Checkout.TaxRate)
	}
	if c.Checkout.MaxDiscountFraction < 0 || c.Checkout.MaxDiscountFraction > 1 {
		return fmt.Errorf("config: MAX_DISCOUNT_FRACTION must be in [0, 1], got %v", c.Checkout.MaxDiscountFraction)
	}
	if c.Checkout.MinOrderCents < 0 || c.Checkout.MaxOrderCents <= c.Checkout.MinOrderCents {
		return fmt.Errorf("config: order bounds invalid: min=%d max=%d", c.Checkout.MinOrderCents, c.Checkout.MaxOrderCents)
	}
	return nil
}
