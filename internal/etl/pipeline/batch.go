// Package pipeline drives the operational normalization run: the batch
// transaction controller and the orchestrator that pages staging rows,
// records outcomes, and accumulates run statistics.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/guayas-agro/subsidy-etl/internal/db"
	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/resolve"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

// RowOutcome is one successfully normalized staging row.
type RowOutcome struct {
	RowID   int64
	Record  benefit.Record
	Created resolve.CreatedCounts
}

// RowFailure is one skipped staging row with its classified error.
type RowFailure struct {
	RowID int64
	Kind  etlerr.Kind
	Err   error
}

// BatchResult separates row-level successes from failures within a batch.
// Failures are independent: a bad row never aborts its siblings.
type BatchResult struct {
	Succeeded []RowOutcome
	Failed    []RowFailure
}

// BatchRunner processes one page of staging rows. Each row runs in its own
// transaction: resolve referenced entities, build the typed benefit record,
// insert it, commit. A row-level failure rolls back only that row's
// transaction; a storage-fatal error aborts the batch and propagates.
type BatchRunner struct {
	pool     db.Pool
	strictID bool
	dryRun   bool
}

// NewBatchRunner creates a BatchRunner. With dryRun set, every row
// transaction is rolled back after resolve and build complete, so
// validation reporting works without writes.
func NewBatchRunner(pool db.Pool, strictID, dryRun bool) *BatchRunner {
	return &BatchRunner{pool: pool, strictID: strictID, dryRun: dryRun}
}

// RunBatch processes the rows in order. The returned error is non-nil only
// for storage-fatal conditions; the partial BatchResult is still valid then
// and reports what was durably committed before the failure.
func (b *BatchRunner) RunBatch(ctx context.Context, rows []staging.Row) (BatchResult, error) {
	log := zap.L().With(zap.String("component", "pipeline.batch"))

	var res BatchResult
	for _, row := range rows {
		outcome, err := b.processRow(ctx, row)
		if err != nil {
			if etlerr.IsFatal(err) {
				return res, err
			}
			log.Debug("row failed", zap.Int64("staging_id", row.ID), zap.Error(err))
			res.Failed = append(res.Failed, RowFailure{RowID: row.ID, Kind: etlerr.KindOf(err), Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, outcome)
	}
	return res, nil
}

func (b *BatchRunner) processRow(ctx context.Context, row staging.Row) (RowOutcome, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return RowOutcome{}, etlerr.NewStorageFatal(eris.Wrap(err, "pipeline: begin row transaction"))
	}
	defer tx.Rollback(ctx)

	resolver := resolve.New(tx, b.strictID)
	refs, created, err := resolver.ResolveRow(ctx, row)
	if err != nil {
		return RowOutcome{}, err
	}

	rec, err := benefit.Build(row, refs)
	if err != nil {
		return RowOutcome{}, err
	}

	if err := insertBenefit(ctx, tx, rec); err != nil {
		return RowOutcome{}, err
	}

	if b.dryRun {
		// Resolve and build ran for validation reporting; the deferred
		// rollback discards the writes.
		return RowOutcome{RowID: row.ID, Record: rec, Created: created}, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return RowOutcome{}, etlerr.NewStorageFatal(eris.Wrap(err, "pipeline: commit row transaction"))
	}
	return RowOutcome{RowID: row.ID, Record: rec, Created: created}, nil
}

// insertBenefit persists the common record and the variant payload into
// agro.benefits. The unique constraint on staging_id makes the insert
// idempotent across crash-replayed rows.
func insertBenefit(ctx context.Context, q db.Querier, rec benefit.Record) error {
	var (
		variety, certificate, agencyName, agencyID       *string
		contractor, contractorID, rubro, state, grouping *string
		quantity, nitrogenQty, npkQty, organicQty        *int
		unitPrice, kitPrice, costPerHectare, investment  *float64
	)

	switch rec.Type {
	case benefit.Seeds:
		p := rec.Seeds
		variety, quantity, unitPrice = p.Variety, p.Quantity, p.UnitPrice
		certificate, agencyName, agencyID = p.Certificate, p.AgencyName, p.AgencyID
	case benefit.Fertilizer:
		p := rec.Fertilizer
		kitPrice = p.KitPrice
		nitrogenQty, npkQty, organicQty = p.NitrogenQty, p.NPKQty, p.OrganicQty
	case benefit.Plants:
		p := rec.Plants
		quantity, unitPrice, certificate = p.Quantity, p.UnitPrice, p.Certificate
		contractor, contractorID, rubro = p.Contractor, p.ContractorID, p.Rubro
	case benefit.Mechanization:
		p := rec.Mechanization
		costPerHectare, investment = p.CostPerHectare, p.Investment
		state, grouping = p.State, p.Grouping
	}

	_, err := q.Exec(ctx,
		`INSERT INTO agro.benefits
		   (staging_id, benefit_type, beneficiary_id, address_id, crop_type_id, association_id,
		    delivery_date, delivery_place, hectares, amount, benefit_year, observations,
		    variety, quantity, unit_price, certificate, agency_name, agency_id,
		    kit_price, nitrogen_qty, npk_qty, organic_qty,
		    contractor, contractor_id, rubro,
		    cost_per_hectare, investment, mech_state, group_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		         $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
		 ON CONFLICT (staging_id) DO NOTHING`,
		rec.StagingID, rec.Type.Tag(), rec.Refs.BeneficiaryID, idRef(rec.Refs.AddressID), idRef(rec.Refs.CropTypeID), idRef(rec.Refs.AssociationID),
		rec.DeliveryDate, rec.DeliveryPlace, rec.Hectares, rec.Amount, rec.Year, rec.Observations,
		variety, quantity, unitPrice, certificate, agencyName, agencyID,
		kitPrice, nitrogenQty, npkQty, organicQty,
		contractor, contractorID, rubro,
		costPerHectare, investment, state, grouping,
	)
	if err != nil {
		return eris.Wrapf(err, "pipeline: insert benefit for staging row %d", rec.StagingID)
	}
	return nil
}

func idRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
