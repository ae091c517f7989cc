package etl

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/guayas-agro/subsidy-etl/internal/db"
)

// RunEntry represents a row in agro.pipeline_runs.
type RunEntry struct {
	ID          string
	BenefitType string
	Status      string
	DryRun      bool
	StartedAt   time.Time
	CompletedAt *time.Time
	RowsSeen    int64
	Succeeded   int64
	Failed      int64
	Entities    map[string]int
	Error       string
}

// RunLog provides read/write access to the pipeline run log.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a pipeline run and returns its ID.
func (l *RunLog) Start(ctx context.Context, benefitType string, dryRun bool) (string, error) {
	id := uuid.NewString()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO agro.pipeline_runs (id, benefit_type, status, dry_run, started_at)
		 VALUES ($1, $2, 'running', $3, now())`,
		id, benefitType, dryRun,
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start run for %s", benefitType)
	}
	return id, nil
}

// Complete marks a run as finished with its final counters.
func (l *RunLog) Complete(ctx context.Context, runID string, rowsSeen, succeeded, failed int64, entities map[string]int) error {
	var entJSON []byte
	if entities != nil {
		var err error
		entJSON, err = json.Marshal(entities)
		if err != nil {
			return eris.Wrap(err, "runlog: marshal entity counts")
		}
	}

	_, err := l.pool.Exec(ctx,
		`UPDATE agro.pipeline_runs
		 SET status = 'complete', completed_at = now(),
		     rows_seen = $1, succeeded = $2, failed = $3, entities = $4
		 WHERE id = $5`,
		rowsSeen, succeeded, failed, entJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message. Counters reflect what
// was durably committed before the failure.
func (l *RunLog) Fail(ctx context.Context, runID string, rowsSeen, succeeded, failed int64, msg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE agro.pipeline_runs
		 SET status = 'failed', completed_at = now(),
		     rows_seen = $1, succeeded = $2, failed = $3, error = $4
		 WHERE id = $5`,
		rowsSeen, succeeded, failed, msg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (l *RunLog) Recent(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, benefit_type, status, dry_run, started_at, completed_at,
		        rows_seen, succeeded, failed, entities, COALESCE(error, '')
		 FROM agro.pipeline_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: query recent runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var entJSON []byte
		if err := rows.Scan(&e.ID, &e.BenefitType, &e.Status, &e.DryRun, &e.StartedAt, &e.CompletedAt,
			&e.RowsSeen, &e.Succeeded, &e.Failed, &entJSON, &e.Error); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run row")
		}
		if len(entJSON) > 0 {
			if err := json.Unmarshal(entJSON, &e.Entities); err != nil {
				return nil, eris.Wrap(err, "runlog: unmarshal entity counts")
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
