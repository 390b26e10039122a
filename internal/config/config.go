package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of the storefront service.
type Config struct {
	Port            string
	Env             string
	DatabaseDSN     string
	SeedOnStart     bool
	ShutdownTimeout time.Duration

	Admin    AdminConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

// AdminConfig holds the shared admin credential. Exactly one of Token or
// TokenHash (a bcrypt hash of the token) is needed.
type AdminConfig struct {
	Token     string
	TokenHash string
}

// RedisConfig configures the page cache. An empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RabbitMQConfig configures product event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables take precedence.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("ADMIN_TOKEN_HASH", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_PREFIX", "storefront:")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("APP_PORT"),
		Env:             v.GetString("APP_ENV"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		SeedOnStart:     v.GetBool("SEED_ON_START"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Admin: AdminConfig{
			Token:     v.GetString("ADMIN_TOKEN"),
			TokenHash: v.GetString("ADMIN_TOKEN_HASH"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("CACHE_PREFIX"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Admin.Token == "" && c.Admin.TokenHash == "" {
		return errors.New("ADMIN_TOKEN or ADMIN_TOKEN_HASH must be set")
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
