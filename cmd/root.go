package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guayas-agro/subsidy-etl/internal/config"
	"github.com/guayas-agro/subsidy-etl/internal/db"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "subsidy-etl",
	Short: "Agricultural subsidy normalization pipeline",
	Long:  "Loads spreadsheet-sourced subsidy staging rows and normalizes them into deduplicated beneficiaries, addresses, associations, crop types and typed benefit records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openPool connects to the configured PostgreSQL store.
func openPool(ctx context.Context) (db.Pool, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("no database_url configured (set store.database_url or SUBSIDY_STORE_DATABASE_URL)")
	}
	return db.NewPool(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
