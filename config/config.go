package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Events   EventsConfig   `mapstructure:"events"`
}

// AppConfig identifies the application.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`  // requests per second
	Burst   int     `mapstructure:"burst"` // burst capacity
}

// LogConfig configures logging.
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig configures cross-origin access for the browser frontend.
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// UpstreamConfig holds the endpoints of the remote API this client consumes.
// All durable state lives behind them.
type UpstreamConfig struct {
	Session EndpointConfig `mapstructure:"session"`
	Catalog EndpointConfig `mapstructure:"catalog"`
	Orders  EndpointConfig `mapstructure:"orders"`
}

// EndpointConfig is one upstream endpoint.
type EndpointConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CheckoutConfig is the pricing policy and session behavior of the checkout
// flow. Amounts are in minor currency units.
type CheckoutConfig struct {
	Currency              string        `mapstructure:"currency"`
	FreeShippingThreshold int64         `mapstructure:"free_shipping_threshold"`
	ShippingFee           int64         `mapstructure:"shipping_fee"`
	TaxRatePercent        int64         `mapstructure:"tax_rate_percent"`
	ConfirmationTTL       time.Duration `mapstructure:"confirmation_ttl"`
}

// EventsConfig configures domain event publishing. With no brokers the
// service falls back to the log publisher.
type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Defaults apply when no config file exists.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	// CORS
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Session-Token"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)

	// Upstream API
	v.SetDefault("upstream.session.base_url", "http://localhost:8085")
	v.SetDefault("upstream.session.timeout", "5s")
	v.SetDefault("upstream.catalog.base_url", "http://localhost:8085")
	v.SetDefault("upstream.catalog.timeout", "5s")
	v.SetDefault("upstream.orders.base_url", "http://localhost:8085")
	v.SetDefault("upstream.orders.timeout", "10s")

	// Checkout pricing: flat 40.00 shipping below a 500.00 subtotal, free
	// at or above it, 18% tax. Confirmed sessions linger 5s before the
	// auto-teardown.
	v.SetDefault("checkout.currency", "INR")
	v.SetDefault("checkout.free_shipping_threshold", 50000)
	v.SetDefault("checkout.shipping_fee", 4000)
	v.SetDefault("checkout.tax_rate_percent", 18)
	v.SetDefault("checkout.confirmation_ttl", "5s")

	// Events: no brokers means the log publisher.
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "storefront.checkout")
}
