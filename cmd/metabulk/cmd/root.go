package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/core/config"
	"github.com/lazymak3r/meta-bulk-assign/internal/core/service"
	"github.com/lazymak3r/meta-bulk-assign/internal/core/store"
	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
)

var (
	configFile string
	dbURL      string
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:   "metabulk",
	Short: "Bulk metafield assignment for merchant catalogs",
	Long:  `metabulk manages metafield configurations with targeting rules and applies them to matching catalog items in bulk.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode (development, production)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges the config file with persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	return cfg, nil
}

// openStore opens the database and wraps it in the repository.
func openStore(cfg *config.Config) (*sqlx.DB, *store.Store, error) {
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	repo, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

// buildService wires the full stack: repository, catalog client (token from
// the environment), and orchestration service.
func buildService(cfg *config.Config, shop string, log *logger.Logger) (*sqlx.DB, *service.Service, error) {
	if shop == "" {
		shop = cfg.ShopDomain
	}
	if shop == "" {
		return nil, nil, fmt.Errorf("--shop required (or set shop_domain in config)")
	}

	token, err := config.ShopifyToken()
	if err != nil {
		return nil, nil, err
	}

	db, repo, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	client := catalog.NewShopifyClient(shop, token, cfg.ShopifyAPIVersion, cfg.ShopifyTimeout)

	svc, err := service.New(repo, client, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, svc, nil
}
