package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	API   APIConfig
	Store StoreConfig
	Cart  CartConfig
	Redis RedisConfig
}

type APIConfig struct {
	BaseURL string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:4000/api"`
	Timeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
}

type StoreConfig struct {
	// Backend selects the durable client-local store: "file" or "redis".
	Backend    string `env:"STOREFRONT_STORE" envDefault:"file"`
	ProfileDir string `env:"STOREFRONT_PROFILE_DIR" envDefault:".storefront"`
}

type CartConfig struct {
	// Mode selects line persistence: "local" (client-local store) or
	// "remote" (backend cart endpoints).
	Mode string `env:"STOREFRONT_CART_MODE" envDefault:"local"`
}

type RedisConfig struct {
	Addr     string `env:"STOREFRONT_REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"STOREFRONT_REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"STOREFRONT_REDIS_DB" envDefault:"0"`
	// KeyPrefix scopes store keys so several profiles can share one server.
	KeyPrefix string `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Store.Backend != "file" && cfg.Store.Backend != "redis" {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Cart.Mode != "local" && cfg.Cart.Mode != "remote" {
		return nil, fmt.Errorf("unknown cart mode %q", cfg.Cart.Mode)
	}
	return cfg, nil
}
