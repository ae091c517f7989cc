package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staging row counts per benefit type",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		reader := staging.NewReader(pool)

		fmt.Printf("%-15s %10s %10s %10s\n", "TYPE", "PENDING", "SUCCEEDED", "FAILED")
		for _, t := range benefit.AllTypes {
			counts, err := reader.CountByState(ctx, t.Tag())
			if err != nil {
				return err
			}
			fmt.Printf("%-15s %10d %10d %10d\n", t, counts.Pending, counts.Succeeded, counts.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
