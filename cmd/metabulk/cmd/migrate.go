package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazymak3r/meta-bulk-assign/internal/core/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "show migration status instead of applying")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	status, _ := cmd.Flags().GetBool("status")
	if status {
		statuses, err := store.MigrateStatus(db)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%-40s %s\n", s.ID, state)
		}
		return nil
	}

	if err := store.MigrateUp(db); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}
