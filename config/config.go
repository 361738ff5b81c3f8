package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Stores    StoresConfig
	Cache     CacheConfig
	Session   SessionConfig
	Limits    LimitsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoresConfig bounds outbound store traffic.
type StoresConfig struct {
	MaxConcurrentPerStore int           `mapstructure:"max_concurrent_per_store"`
	MaxQueueSize          int           `mapstructure:"max_queue_size"`
	FetchTimeout          time.Duration `mapstructure:"fetch_timeout"`
}

// CacheConfig holds response-cache configuration.
type CacheConfig struct {
	ResultTTL  time.Duration `mapstructure:"result_ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// SessionConfig holds the Coles session configuration.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LimitsConfig bounds incoming shopping lists.
type LimitsConfig struct {
	MaxItems          int `mapstructure:"max_items"`
	MaxItemNameLength int `mapstructure:"max_item_name_length"`
	MaxQuantity       int `mapstructure:"max_quantity"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	PerClientRPS   float64 `mapstructure:"per_client_rps"`
	PerClientBurst int     `mapstructure:"per_client_burst"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cartcompare/")

	v.SetEnvPrefix("CARTCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("stores.max_concurrent_per_store", 2)
	v.SetDefault("stores.max_queue_size", 50)
	v.SetDefault("stores.fetch_timeout", "10s")

	v.SetDefault("cache.result_ttl", "30s")
	v.SetDefault("cache.max_entries", 1000)

	v.SetDefault("session.ttl", "5m")

	v.SetDefault("limits.max_items", 50)
	v.SetDefault("limits.max_item_name_length", 200)
	v.SetDefault("limits.max_quantity", 999)

	v.SetDefault("ratelimit.per_client_rps", 5)
	v.SetDefault("ratelimit.per_client_burst", 10)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Stores.MaxConcurrentPerStore < 1 {
		return fmt.Errorf("stores.max_concurrent_per_store must be at least 1")
	}
	if config.Stores.MaxQueueSize < 1 {
		return fmt.Errorf("stores.max_queue_size must be at least 1")
	}
	if config.Cache.ResultTTL <= 0 {
		return fmt.Errorf("cache.result_ttl must be positive")
	}
	if config.Limits.MaxItems < 1 {
		return fmt.Errorf("limits.max_items must be at least 1")
	}
	return nil
}
