package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Clear error markers so failed staging rows are reprocessed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typeStr, _ := cmd.Flags().GetString("type")
		all, _ := cmd.Flags().GetBool("all")

		var types []benefit.Type
		switch {
		case all:
			types = benefit.AllTypes
		case typeStr != "":
			t, err := benefit.ParseType(typeStr)
			if err != nil {
				return err
			}
			types = []benefit.Type{t}
		default:
			return eris.New("retry: either --type or --all is required")
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		reader := staging.NewReader(pool)
		for _, t := range types {
			n, err := reader.ClearErrors(ctx, t.Tag())
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d rows queued for retry\n", t, n)
		}
		return nil
	},
}

func init() {
	retryCmd.Flags().String("type", "", "benefit type: seeds, fertilizer, plants, mechanization")
	retryCmd.Flags().Bool("all", false, "retry every benefit type")
	rootCmd.AddCommand(retryCmd)
}
