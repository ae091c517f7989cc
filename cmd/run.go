package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guayas-agro/subsidy-etl/internal/etl"
	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the operational normalization pipeline",
	Long: `Run the operational normalization pipeline over unprocessed staging rows.

Use --type to run a single benefit type, or --all to run every type.
Sibling benefit-type pipelines are safe to run concurrently: entity
uniqueness is enforced by the store, so --all runs all four in parallel.
Use --dry-run to execute resolution and validation without writing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typeStr, _ := cmd.Flags().GetString("type")
		all, _ := cmd.Flags().GetBool("all")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		batchSize, _ := cmd.Flags().GetInt("batch-size")

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
			return eris.New("run: either --type or --all is required")
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := etl.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "run: migrate")
		}

		dryRun = dryRun || cfg.Pipeline.DryRun
		runLog := etl.NewRunLog(pool)

		var mu sync.Mutex
		var summaries []pipeline.RunSummary
		var allFailures []pipeline.RowFailure

		g, gctx := errgroup.WithContext(ctx)
		for _, t := range types {
			g.Go(func() error {
				size := batchSize
				if size <= 0 {
					size = cfg.Pipeline.BatchSizeFor(t.String())
				}
				orch := pipeline.NewOrchestrator(pool, runLog, t, pipeline.Options{
					BatchSize:        size,
					DryRun:           dryRun,
					StrictNationalID: cfg.Validation.StrictNationalID,
				})
				summary, failures, err := orch.Run(gctx)

				mu.Lock()
				summaries = append(summaries, summary)
				allFailures = append(allFailures, failures...)
				mu.Unlock()

				return err
			})
		}

		runErr := g.Wait()

		for _, s := range summaries {
			printSummary(s)
		}
		printFailures(allFailures)

		if runErr != nil {
			zap.L().Error("pipeline run failed", zap.Error(runErr))
			return eris.Wrap(runErr, "run")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("type", "", "benefit type: seeds, fertilizer, plants, mechanization")
	runCmd.Flags().Bool("all", false, "run every benefit type concurrently")
	runCmd.Flags().Bool("dry-run", false, "resolve and validate without writing")
	runCmd.Flags().Int("batch-size", 0, "override the configured batch size")
	rootCmd.AddCommand(runCmd)
}

func printSummary(s pipeline.RunSummary) {
	mode := ""
	if s.DryRun {
		mode = " (dry run)"
	}
	fmt.Printf("%s%s: %d rows, %d succeeded, %d failed in %s\n",
		s.BenefitType, mode, s.RowsSeen, s.Succeeded, s.Failed, s.Duration.Round(time.Millisecond))
	fmt.Printf("  entities created: %d beneficiaries, %d addresses, %d associations, %d crop types\n",
		s.Entities.Beneficiaries, s.Entities.Addresses, s.Entities.Associations, s.Entities.CropTypes)
	for kind, n := range s.ErrorKinds {
		fmt.Printf("  errors[%s]: %d\n", kind, n)
	}
}

func printFailures(failures []pipeline.RowFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Printf("failed rows (%d):\n", len(failures))
	for _, f := range failures {
		fmt.Printf("  row %d [%s]: %s\n", f.RowID, f.Kind, f.Err)
	}
}
