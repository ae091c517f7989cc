package staging

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/guayas-agro/subsidy-etl/internal/db"
)

// rowColumns is the staging column list in Row scan order.
const rowColumns = `id, benefit_type, full_name, national_id, phone, gender, age,
	canton, parish, locality, coord_x, coord_y,
	organization, crop, hectares_total, hectares, delivery_date, delivery_place, observations, benefit_year,
	certificate, variety, quantity, unit_price, agency_name, agency_id,
	kit_price, nitrogen_qty, npk_qty, organic_qty,
	contractor, contractor_id, rubro,
	cost_per_hectare, investment, mech_state, group_name,
	processed, error`

// Reader pages through unprocessed staging rows and writes their
// processed/error markers. Only the pipeline orchestrator calls the
// marker methods.
type Reader struct {
	pool db.Pool
}

// NewReader creates a Reader backed by the given pool.
func NewReader(pool db.Pool) *Reader {
	return &Reader{pool: pool}
}

// CountPending returns the number of unprocessed rows for a benefit tag.
func (r *Reader) CountPending(ctx context.Context, tag string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM agro.staging_benefits WHERE benefit_type = $1 AND processed = false`,
		tag,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "staging: count pending for %s", tag)
	}
	return n, nil
}

// FetchPage returns up to limit unprocessed rows for a benefit tag with
// id greater than afterID, ordered by id ascending. The cursor keeps
// dry runs from refetching the same page, since they never flip the
// processed flag.
func (r *Reader) FetchPage(ctx context.Context, tag string, afterID int64, limit int) ([]Row, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rowColumns+`
		 FROM agro.staging_benefits
		 WHERE benefit_type = $1 AND processed = false AND id > $2
		 ORDER BY id ASC
		 LIMIT $3`,
		tag, afterID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "staging: fetch page for %s", tag)
	}
	defer rows.Close()

	var page []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.BenefitTag, &row.FullName, &row.NationalID, &row.Phone, &row.Gender, &row.Age,
			&row.Canton, &row.Parish, &row.Locality, &row.CoordX, &row.CoordY,
			&row.Organization, &row.Crop, &row.HectaresTotal, &row.Hectares, &row.DeliveryDate, &row.DeliveryPlace, &row.Observations, &row.Year,
			&row.Certificate, &row.Variety, &row.Quantity, &row.UnitPrice, &row.AgencyName, &row.AgencyID,
			&row.KitPrice, &row.NitrogenQty, &row.NPKQty, &row.OrganicQty,
			&row.Contractor, &row.ContractorID, &row.Rubro,
			&row.CostPerHectare, &row.Investment, &row.State, &row.Grouping,
			&row.Processed, &row.Error,
		); err != nil {
			return nil, eris.Wrap(err, "staging: scan row")
		}
		page = append(page, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "staging: iterate rows")
	}
	return page, nil
}

// MarkProcessed flags the given rows as processed with no error.
func (r *Reader) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE agro.staging_benefits SET processed = true, error = NULL WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return eris.Wrap(err, "staging: mark processed")
	}
	return nil
}

// MarkFailed flags a row as processed with an error message. A failed row
// is still "processed" in the sense of "will not be retried automatically";
// reprocessing requires clearing the marker via ClearErrors.
func (r *Reader) MarkFailed(ctx context.Context, id int64, msg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE agro.staging_benefits SET processed = true, error = $1 WHERE id = $2`,
		msg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "staging: mark failed row %d", id)
	}
	return nil
}

// ClearErrors resets the markers on failed rows for a benefit tag so the
// next run picks them up again. Returns the number of rows cleared.
func (r *Reader) ClearErrors(ctx context.Context, tag string) (int64, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE agro.staging_benefits
		 SET processed = false, error = NULL
		 WHERE benefit_type = $1 AND error IS NOT NULL`,
		tag,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "staging: clear errors for %s", tag)
	}
	return res.RowsAffected(), nil
}

// Counts summarizes staging state for one benefit tag.
type Counts struct {
	Pending   int64
	Succeeded int64
	Failed    int64
}

// CountByState returns pending/succeeded/failed row counts for a tag.
func (r *Reader) CountByState(ctx context.Context, tag string) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx,
		`SELECT
		   count(*) FILTER (WHERE NOT processed),
		   count(*) FILTER (WHERE processed AND error IS NULL),
		   count(*) FILTER (WHERE processed AND error IS NOT NULL)
		 FROM agro.staging_benefits WHERE benefit_type = $1`,
		tag,
	).Scan(&c.Pending, &c.Succeeded, &c.Failed)
	if err != nil {
		return Counts{}, eris.Wrapf(err, "staging: count by state for %s", tag)
	}
	return c, nil
}
