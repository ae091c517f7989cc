package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/guayas-agro/subsidy-etl/internal/etl"
	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

var stageCmd = &cobra.Command{
	Use:   "stage <workbook.xlsx>",
	Short: "Load a spreadsheet workbook into the staging table",
	Long: `Load a spreadsheet workbook into the staging table.

Rows are appended as-is with processed=false; normalization happens
later via the run command. The sheet and header handling are
configurable under stage.* in config.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typeStr, _ := cmd.Flags().GetString("type")
		sheetName, _ := cmd.Flags().GetString("sheet")
		typ, err := benefit.ParseType(typeStr)
		if err != nil {
			return err
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := etl.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "stage: migrate")
		}

		loader := staging.NewLoader(pool)
		n, err := loader.LoadWorkbook(ctx, args[0], typ.Tag(), staging.WorkbookOptions{
			SheetIndex: cfg.Stage.SheetIndex,
			SheetName:  sheetName,
			SkipRows:   cfg.Stage.SkipRows,
		})
		if err != nil {
			return eris.Wrap(err, "stage")
		}

		fmt.Printf("staged %d %s rows from %s\n", n, typ, args[0])
		return nil
	},
}

func init() {
	stageCmd.Flags().String("type", "", "benefit type: seeds, fertilizer, plants, mechanization")
	stageCmd.Flags().String("sheet", "", "sheet name (defaults to stage.sheet_index)")
	_ = stageCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(stageCmd)
}
