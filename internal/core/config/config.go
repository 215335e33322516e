// Package config provides configuration management for the metafield
// assignment service.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the service configuration. Secrets (API token, webhook
// secret) are deliberately not part of this struct; they are read from
// the environment only.
type Config struct {
	DatabaseURL       string
	ShopDomain        string
	ShopifyAPIVersion string
	ShopifyTimeout    time.Duration
	CatalogPageSize   int
	LogMode           string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabaseURL:       "sqlite://./data/metabulk.db",
		ShopifyAPIVersion: "2024-10",
		ShopifyTimeout:    30 * time.Second,
		CatalogPageSize:   250,
		LogMode:           "development",
	}
}

// ShopifyToken returns the Admin API access token from the environment.
func ShopifyToken() (string, error) {
	token := os.Getenv("MB_SHOPIFY_TOKEN")
	if token == "" {
		return "", fmt.Errorf("MB_SHOPIFY_TOKEN environment variable not set")
	}
	return token, nil
}

// WebhookSecret returns the webhook signing secret from the environment.
func WebhookSecret() (string, error) {
	secret := os.Getenv("MB_WEBHOOK_SECRET")
	if secret == "" {
		return "", fmt.Errorf("MB_WEBHOOK_SECRET environment variable not set")
	}
	return secret, nil
}
