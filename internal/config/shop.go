package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ShopConfig holds configuration for the storefront client (cmd/shop).
type ShopConfig struct {
	BaseURL               string        `yaml:"base_url"`
	SeasonTitle           string        `yaml:"season_title"`
	FreeDeliveryThreshold int64         `yaml:"free_delivery_threshold"`
	Store                 StoreConfig   `yaml:"store"`
	Cart                  CartConfig    `yaml:"cart"`
	Catalog               CatalogConfig `yaml:"catalog"`
	Logger                LoggerConfig  `yaml:"logger"`
}

// StoreConfig selects the persistent key-value backend.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // "file", "redis" or "memory"
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
}

// CartConfig holds cart limits.
type CartConfig struct {
	Expiry      time.Duration `yaml:"expiry"`
	MaxQuantity int           `yaml:"max_quantity"`
}

// CatalogConfig holds product cache lifetimes.
type CatalogConfig struct {
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	MaxAge            time.Duration `yaml:"max_age"`
	AutoRefresh       time.Duration `yaml:"auto_refresh"`
	VisibilityRefresh time.Duration `yaml:"visibility_refresh"`
}

// DefaultShopConfig returns the storefront defaults.
func DefaultShopConfig() *ShopConfig {
	return &ShopConfig{
		BaseURL:               "http://localhost:8000",
		SeasonTitle:           "Gift boxes with delivery",
		FreeDeliveryThreshold: 3000,
		Store: StoreConfig{
			Driver: "file",
			Path:   ".belekbox/storage.json",
			Prefix: "belekbox:",
		},
		Cart: CartConfig{
			Expiry:      7 * 24 * time.Hour,
			MaxQuantity: 99,
		},
		Catalog: CatalogConfig{
			CacheTTL:          5 * time.Minute,
			MaxAge:            24 * time.Hour,
			AutoRefresh:       5 * time.Minute,
			VisibilityRefresh: 10 * time.Minute,
		},
		Logger: LoggerConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadShop reads the optional YAML file at path over the defaults and then
// applies SHOP_* environment overrides. A missing file is not an error.
func LoadShop(path string) (*ShopConfig, error) {
	cfg := DefaultShopConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read shop config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse shop config %s: %w", path, err)
			}
		}
	}

	cfg.BaseURL = getEnv("SHOP_BASE_URL", cfg.BaseURL)
	cfg.Store.Driver = getEnv("SHOP_STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.Path = getEnv("SHOP_STORE_PATH", cfg.Store.Path)
	cfg.Store.RedisURL = getEnv("SHOP_REDIS_URL", cfg.Store.RedisURL)
	cfg.Logger.Level = getEnv("SHOP_LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnv("SHOP_LOG_FORMAT", cfg.Logger.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("shop configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the shop configuration.
func (c *ShopConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}

	switch c.Store.Driver {
	case "memory":
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for the file driver")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be file, redis, or memory)", c.Store.Driver)
	}

	if c.Cart.MaxQuantity < 1 {
		return fmt.Errorf("cart max quantity must be at least 1")
	}

	if c.Cart.Expiry <= 0 {
		return fmt.Errorf("cart expiry must be positive")
	}

	if c.Catalog.CacheTTL <= 0 || c.Catalog.MaxAge <= 0 {
		return fmt.Errorf("catalog cache lifetimes must be positive")
	}

	if c.Catalog.CacheTTL > c.Catalog.MaxAge {
		return fmt.Errorf("catalog cache TTL cannot exceed max age")
	}

	if c.FreeDeliveryThreshold < 0 {
		return fmt.Errorf("free delivery threshold cannot be negative")
	}

	return c.Logger.Validate()
}
