package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// Environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("database_url", "sqlite://./data/metabulk.db")
	v.SetDefault("shop_domain", "")
	v.SetDefault("shopify.api_version", "2024-10")
	v.SetDefault("shopify.timeout", "30s")
	v.SetDefault("shopify.catalog_page_size", 250)
	v.SetDefault("log.mode", "development")

	// Bind environment variables with MB_ prefix
	v.SetEnvPrefix("MB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets must be environment-only; reject them in config files
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("database_url"),
		ShopDomain:        v.GetString("shop_domain"),
		ShopifyAPIVersion: v.GetString("shopify.api_version"),
		ShopifyTimeout:    v.GetDuration("shopify.timeout"),
		CatalogPageSize:   v.GetInt("shopify.catalog_page_size"),
		LogMode:           v.GetString("log.mode"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the database URL, timeout, and page size bounds.
func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if cfg.ShopifyTimeout <= 0 {
		return fmt.Errorf("shopify.timeout must be positive, got %v", cfg.ShopifyTimeout)
	}
	if cfg.CatalogPageSize <= 0 || cfg.CatalogPageSize > 250 {
		return fmt.Errorf("shopify.catalog_page_size must be between 1 and 250, got %d", cfg.CatalogPageSize)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("shopify_token") || v.IsSet("shopify.token") {
		return fmt.Errorf("API tokens not allowed in config files (use MB_SHOPIFY_TOKEN environment variable)")
	}
	if v.IsSet("webhook_secret") || v.IsSet("shopify.webhook_secret") {
		return fmt.Errorf("webhook secrets not allowed in config files (use MB_WEBHOOK_SECRET environment variable)")
	}
	return nil
}
