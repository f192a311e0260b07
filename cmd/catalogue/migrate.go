package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the Postgres schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

var migrateSteps int

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply (0 = all)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Store.Database.DSN == "" {
		return common.NewAppError("CONFIG_ERROR", "DB_URL is required for migrations", common.ErrInvalidInput)
	}
	if err := repository.Migrate(cfg.Store.Database.DSN, args[0], migrateSteps); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", args[0])
	return nil
}
