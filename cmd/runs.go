package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/guayas-agro/subsidy-etl/internal/etl"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := etl.NewRunLog(pool).Recent(ctx, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-36s %-15s %-10s %-20s %8s %8s %8s\n",
			"RUN", "TYPE", "STATUS", "STARTED", "ROWS", "OK", "FAILED")
		for _, e := range entries {
			fmt.Printf("%-36s %-15s %-10s %-20s %8d %8d %8d\n",
				e.ID, e.BenefitType, e.Status, e.StartedAt.Format(time.RFC3339),
				e.RowsSeen, e.Succeeded, e.Failed)
			if e.Error != "" {
				fmt.Printf("    error: %s\n", e.Error)
			}
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
