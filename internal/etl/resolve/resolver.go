package resolve

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/guayas-agro/subsidy-etl/internal/db"
	"github.com/guayas-agro/subsidy-etl/internal/etl/benefit"
	"github.com/guayas-agro/subsidy-etl/internal/etl/catalog"
	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

// defaultProvince backs every address row; the source workbooks cover a
// single province and never carry the field.
const defaultProvince = "GUAYAS"

// Resolver deduplicates canonical entities inside one transaction scope.
// Uniqueness is enforced by the storage layer, so concurrent resolvers in
// sibling pipelines converge on the same canonical row: an insert that
// loses the race is treated as "entity already exists" and the lookup is
// retried instead of propagating the conflict.
type Resolver struct {
	q        db.Querier
	strictID bool
}

// New creates a Resolver bound to a transaction or pool scope.
func New(q db.Querier, strictID bool) *Resolver {
	return &Resolver{q: q, strictID: strictID}
}

// CreatedCounts tracks distinct entities created per kind.
type CreatedCounts struct {
	Beneficiaries int
	Addresses     int
	Associations  int
	CropTypes     int
}

// Add accumulates another count set into c.
func (c *CreatedCounts) Add(o CreatedCounts) {
	c.Beneficiaries += o.Beneficiaries
	c.Addresses += o.Addresses
	c.Associations += o.Associations
	c.CropTypes += o.CropTypes
}

// Total returns the number of entities created across all kinds.
func (c CreatedCounts) Total() int {
	return c.Beneficiaries + c.Addresses + c.Associations + c.CropTypes
}

// ResolveRow resolves every entity a staging row references and returns
// the reference set for the benefit builder. A ValidationError means the
// row must be skipped; entities already created for this row remain valid.
func (r *Resolver) ResolveRow(ctx context.Context, row staging.Row) (benefit.Refs, CreatedCounts, error) {
	var refs benefit.Refs
	var created CreatedCounts

	addrID, ok, err := r.ResolveAddress(ctx, row)
	if err != nil {
		return refs, created, err
	}
	if ok {
		created.Addresses++
	}
	refs.AddressID = addrID

	benID, ok, err := r.ResolveBeneficiary(ctx, row, addrID)
	if err != nil {
		return refs, created, err
	}
	if ok {
		created.Beneficiaries++
	}
	refs.BeneficiaryID = benID

	if org := strVal(row.Organization); org != "" {
		assocID, ok, err := r.ResolveAssociation(ctx, org)
		if err != nil {
			return refs, created, err
		}
		if ok {
			created.Associations++
		}
		refs.AssociationID = assocID
		if err := r.LinkAssociation(ctx, benID, assocID); err != nil {
			return refs, created, err
		}
	}

	if crop := strVal(row.Crop); crop != "" {
		cropID, ok, err := r.ResolveCropType(ctx, crop)
		if err != nil {
			return refs, created, err
		}
		if ok {
			created.CropTypes++
		}
		refs.CropTypeID = cropID
	}

	return refs, created, nil
}

// ResolveBeneficiary returns the canonical beneficiary for the row's
// national ID, creating it if needed. Existing rows get first-write-wins
// backfill: null optional fields are filled from the incoming row, but a
// stored non-null value is never overwritten.
func (r *Resolver) ResolveBeneficiary(ctx context.Context, row staging.Row, addressID int64) (int64, bool, error) {
	nationalID := strVal(row.NationalID)
	if nationalID == "" {
		return 0, false, etlerr.NewValidation("missing national id", "national_id")
	}
	if r.strictID {
		if err := ValidateCedula(nationalID); err != nil {
			return 0, false, err
		}
	}

	birthDate := BirthDateFrom(row.Age, row.Year)
	addrRef := idRef(addressID)

	const lookup = `SELECT id FROM agro.beneficiaries WHERE national_id = $1`
	id, createdNew, err := r.getOrCreate(ctx, "beneficiary",
		lookup, []any{nationalID},
		`INSERT INTO agro.beneficiaries (national_id, full_name, phone, gender, birth_date, address_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (national_id) DO NOTHING
		 RETURNING id`,
		[]any{nationalID, trimPtr(row.FullName), trimPtr(row.Phone), trimPtr(row.Gender), birthDate, addrRef},
	)
	if err != nil || createdNew {
		return id, createdNew, err
	}

	// First-write-wins backfill of previously-null optional fields.
	if trimPtr(row.FullName) != nil || trimPtr(row.Phone) != nil || trimPtr(row.Gender) != nil ||
		birthDate != nil || addrRef != nil {
		if _, err := r.q.Exec(ctx,
			`UPDATE agro.beneficiaries SET
			   full_name  = COALESCE(full_name, $1),
			   phone      = COALESCE(phone, $2),
			   gender     = COALESCE(gender, $3),
			   birth_date = COALESCE(birth_date, $4),
			   address_id = COALESCE(address_id, $5)
			 WHERE id = $6`,
			trimPtr(row.FullName), trimPtr(row.Phone), trimPtr(row.Gender), birthDate, addrRef, id,
		); err != nil {
			return 0, false, eris.Wrap(err, "resolve: backfill beneficiary")
		}
	}
	return id, false, nil
}

// ResolveAddress returns the canonical address for the row's location
// attributes, or (0, false, nil) when the row carries none. Coordinates
// are parsed to numeric values here and stored as NUMERIC columns; they
// are not part of the identity key, so formatting noise alone cannot
// produce duplicate locations.
func (r *Resolver) ResolveAddress(ctx context.Context, row staging.Row) (int64, bool, error) {
	canton := strVal(row.Canton)
	parish := strVal(row.Parish)
	locality := strVal(row.Locality)
	coordX := parseCoord(row.CoordX)
	coordY := parseCoord(row.CoordY)

	if canton == "" && parish == "" && locality == "" && coordX == nil && coordY == nil {
		return 0, false, nil
	}

	key := AddressKey(defaultProvince, canton, parish, locality)

	const lookup = `SELECT id FROM agro.addresses WHERE address_key = $1`
	id, createdNew, err := r.getOrCreate(ctx, "address",
		lookup, []any{key},
		`INSERT INTO agro.addresses (address_key, province, canton, parish, locality, coord_x, coord_y)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (address_key) DO NOTHING
		 RETURNING id`,
		[]any{key, defaultProvince, trimPtr(row.Canton), trimPtr(row.Parish), trimPtr(row.Locality), coordX, coordY},
	)
	if err != nil || createdNew {
		return id, createdNew, err
	}

	if coordX != nil || coordY != nil {
		if _, err := r.q.Exec(ctx,
			`UPDATE agro.addresses SET
			   coord_x = COALESCE(coord_x, $1),
			   coord_y = COALESCE(coord_y, $2)
			 WHERE id = $3`,
			coordX, coordY, id,
		); err != nil {
			return 0, false, eris.Wrap(err, "resolve: backfill address coordinates")
		}
	}
	return id, false, nil
}

// ResolveAssociation returns the canonical association for a raw name.
func (r *Resolver) ResolveAssociation(ctx context.Context, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, etlerr.NewValidation("missing association name", "organization")
	}
	key := Normalize(name)

	const lookup = `SELECT id FROM agro.associations WHERE name_key = $1`
	return r.getOrCreate(ctx, "association",
		lookup, []any{key},
		`INSERT INTO agro.associations (name_key, name)
		 VALUES ($1, $2)
		 ON CONFLICT (name_key) DO NOTHING
		 RETURNING id`,
		[]any{key, name},
	)
}

// ResolveCropType returns the canonical crop type for a raw crop name,
// denormalizing botanical metadata from the static catalog on creation.
// Crop types are immutable once created.
func (r *Resolver) ResolveCropType(ctx context.Context, name string) (int64, bool, error) {
	key := Normalize(name)
	if key == "" {
		return 0, false, etlerr.NewValidation("missing crop name", "crop")
	}

	var insertArgs []any
	if c, ok := catalog.Lookup(key); ok {
		insertArgs = []any{key, c.ScientificName, c.BotanicalFamily, c.Genus, c.Cycle, nilIfZero(c.CycleDays), c.EconomicClass, c.PrimaryUse, c.WaterRequirement}
	} else {
		zap.L().Debug("crop not in catalog, creating name-only record", zap.String("crop", key))
		insertArgs = []any{key, nil, nil, nil, nil, nil, nil, nil, nil}
	}

	const lookup = `SELECT id FROM agro.crop_types WHERE name = $1`
	return r.getOrCreate(ctx, "crop type",
		lookup, []any{key},
		`INSERT INTO agro.crop_types
		   (name, scientific_name, botanical_family, genus, cycle, cycle_days, economic_class, primary_use, water_requirement)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id`,
		insertArgs,
	)
}

// LinkAssociation records beneficiary membership. The join row has no
// independent lifecycle and the insert is idempotent.
func (r *Resolver) LinkAssociation(ctx context.Context, beneficiaryID, associationID int64) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO agro.beneficiary_associations (beneficiary_id, association_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		beneficiaryID, associationID,
	)
	if err != nil {
		return eris.Wrap(err, "resolve: link association")
	}
	return nil
}

// getOrCreate implements lookup, insert-or-conflict, re-lookup. The insert
// statements use ON CONFLICT DO NOTHING so a lost race inside an open
// transaction surfaces as "no rows" rather than aborting the transaction;
// a raw 23505 from other unique indexes is handled the same way.
func (r *Resolver) getOrCreate(ctx context.Context, kind, lookupSQL string, lookupArgs []any, insertSQL string, insertArgs []any) (int64, bool, error) {
	var id int64
	err := r.q.QueryRow(ctx, lookupSQL, lookupArgs...).Scan(&id)
	switch {
	case err == nil:
		return id, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, false, eris.Wrapf(err, "resolve: lookup %s", kind)
	}

	err = r.q.QueryRow(ctx, insertSQL, insertArgs...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) || etlerr.IsUniqueViolation(err) {
		if err := r.q.QueryRow(ctx, lookupSQL, lookupArgs...).Scan(&id); err != nil {
			return 0, false, eris.Wrapf(err, "resolve: re-lookup %s after conflict", kind)
		}
		return id, false, nil
	}
	return 0, false, eris.Wrapf(err, "resolve: insert %s", kind)
}

// BirthDateFrom derives an approximate birth date (January 1st) from the
// beneficiary's age and the benefit year.
func BirthDateFrom(age, benefitYear *int) *time.Time {
	if age == nil || benefitYear == nil || *age <= 0 || *benefitYear <= 0 {
		return nil
	}
	t := time.Date(*benefitYear-*age, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

// parseCoord converts raw spreadsheet coordinate text into a numeric
// value. Unparseable text is dropped rather than stored: coordinate
// columns hold numbers only.
func parseCoord(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(*raw, ",", "."))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		zap.L().Debug("dropping unparseable coordinate", zap.String("value", *raw))
		return nil
	}
	return &f
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func idRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func nilIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
