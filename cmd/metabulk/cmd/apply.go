package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply <configuration-id>",
	Short: "Apply a configuration's metafields to every matching item",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().String("shop", "", "shop domain (example.myshopify.com)")
}

func runApply(cmd *cobra.Command, args []string) error {
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

	report, err := svc.ApplyConfiguration(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("total: %d, successful: %d, failed: %d\n", report.Total, report.Successful, report.Failed)
	for _, e := range report.Errors {
		fmt.Printf("  %s: %s\n", e.ItemID, e.Message)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d items failed", report.Failed)
	}
	return nil
}
