package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview <configuration-id>",
	Short: "List the catalog items a configuration targets",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("shop", "", "shop domain (example.myshopify.com)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	id, err := types.ParseConfigurationID(args[0])
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	shop, _ := cmd.Flags().GetString("shop")
	db, svc, err := buildService(cfg, shop, log)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := svc.MatchesForSaved(context.Background(), id)
	if err != nil {
		return err
	}

	for _, item := range items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.Vendor, item.Category.Name)
	}
	fmt.Printf("%d matching items\n", len(items))
	return nil
}
