package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/guayas-agro/subsidy-etl/internal/db"
	"github.com/guayas-agro/subsidy-etl/internal/etl"
	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

// Options configures one pipeline run.
type Options struct {
	BatchSize        int
	DryRun           bool
	StrictNationalID bool
}

// Orchestrator drives the staging cursor for one benefit type: fetch a
// page of unprocessed rows, hand it to the batch runner, record per-row
// outcomes, repeat until no rows remain. It is the only writer of the
// processed/error markers.
type Orchestrator struct {
	reader    *staging.Reader
	batch     *BatchRunner
	runLog    *etl.RunLog
	typ       benefit.Type
	batchSize int
	dryRun    bool
}

// NewOrchestrator creates an Orchestrator for one benefit type. runLog may
// be nil, in which case runs are not recorded.
func NewOrchestrator(pool db.Pool, runLog *etl.RunLog, typ benefit.Type, opts Options) *Orchestrator {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Orchestrator{
		reader:    staging.NewReader(pool),
		batch:     NewBatchRunner(pool, opts.StrictNationalID, opts.DryRun),
		runLog:    runLog,
		typ:       typ,
		batchSize: batchSize,
		dryRun:    opts.DryRun,
	}
}

// Run executes the pipeline to completion. Row-level failures are reported
// in the summary and the returned failure list; only a storage-fatal error
// yields a non-nil error, and the summary then reflects what was durably
// committed so a restart resumes from processed = false. Cancellation is
// honored between batches; a started batch always runs to row-level
// completion.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, []RowFailure, error) {
	log := zap.L().With(
		zap.String("component", "pipeline.orchestrator"),
		zap.String("benefit_type", o.typ.String()),
	)
	start := time.Now()

	summary := RunSummary{
		BenefitType: o.typ.String(),
		DryRun:      o.dryRun,
		ErrorKinds:  make(map[etlerr.Kind]int),
	}
	var failures []RowFailure

	// Dry runs leave no trace anywhere, the run log included.
	var runID string
	if o.runLog != nil && !o.dryRun {
		var err error
		runID, err = o.runLog.Start(ctx, o.typ.Tag(), o.dryRun)
		if err != nil {
			return summary, nil, err
		}
	}

	log.Info("pipeline run starting", zap.Int("batch_size", o.batchSize), zap.Bool("dry_run", o.dryRun))

	var cursor int64
	for {
		select {
		case <-ctx.Done():
			summary.Duration = time.Since(start)
			o.recordFailed(summary, runID, ctx.Err().Error())
			return summary, failures, eris.Wrap(ctx.Err(), "pipeline: run cancelled")
		default:
		}

		page, err := o.reader.FetchPage(ctx, o.typ.Tag(), cursor, o.batchSize)
		if err != nil {
			summary.Duration = time.Since(start)
			o.recordFailed(summary, runID, err.Error())
			return summary, failures, err
		}
		if len(page) == 0 {
			break
		}
		cursor = page[len(page)-1].ID

		res, batchErr := o.batch.RunBatch(ctx, page)

		if !o.dryRun {
			if err := o.recordOutcomes(ctx, res); err != nil {
				summary.Duration = time.Since(start)
				o.recordFailed(summary, runID, err.Error())
				return summary, failures, err
			}
		}

		summary.RowsSeen += len(res.Succeeded) + len(res.Failed)
		summary.Succeeded += len(res.Succeeded)
		summary.Failed += len(res.Failed)
		for _, s := range res.Succeeded {
			summary.Entities.Add(s.Created)
		}
		for _, f := range res.Failed {
			summary.ErrorKinds[f.Kind]++
		}
		failures = append(failures, res.Failed...)

		if batchErr != nil {
			summary.Duration = time.Since(start)
			log.Error("pipeline run aborted",
				zap.Int("rows_seen", summary.RowsSeen),
				zap.Int("succeeded", summary.Succeeded),
				zap.Error(batchErr),
			)
			o.recordFailed(summary, runID, batchErr.Error())
			return summary, failures, batchErr
		}

		log.Debug("batch complete",
			zap.Int("rows", len(page)),
			zap.Int("succeeded", len(res.Succeeded)),
			zap.Int("failed", len(res.Failed)),
		)
	}

	summary.Duration = time.Since(start)

	if o.runLog != nil && !o.dryRun {
		if err := o.runLog.Complete(ctx, runID,
			int64(summary.RowsSeen), int64(summary.Succeeded), int64(summary.Failed), summary.EntityMap(),
		); err != nil {
			log.Error("failed to record run completion", zap.Error(err))
		}
	}

	log.Info("pipeline run complete",
		zap.Int("rows_seen", summary.RowsSeen),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("entities_created", summary.Entities.Total()),
		zap.Duration("elapsed", summary.Duration),
	)
	return summary, failures, nil
}

// recordOutcomes writes the processed/error markers for one batch.
func (o *Orchestrator) recordOutcomes(ctx context.Context, res BatchResult) error {
	ids := make([]int64, 0, len(res.Succeeded))
	for _, s := range res.Succeeded {
		ids = append(ids, s.RowID)
	}
	if err := o.reader.MarkProcessed(ctx, ids); err != nil {
		return etlerr.NewStorageFatal(err)
	}
	for _, f := range res.Failed {
		if err := o.reader.MarkFailed(ctx, f.RowID, f.Err.Error()); err != nil {
			return etlerr.NewStorageFatal(err)
		}
	}
	return nil
}

// recordFailed marks the run log entry failed, best effort: the storage
// that just failed is likely the same one the run log lives in.
func (o *Orchestrator) recordFailed(summary RunSummary, runID, msg string) {
	if o.runLog == nil || runID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.runLog.Fail(ctx, runID,
		int64(summary.RowsSeen), int64(summary.Succeeded), int64(summary.Failed), msg,
	); err != nil {
		zap.L().Warn("failed to record run failure", zap.Error(err))
	}
}
