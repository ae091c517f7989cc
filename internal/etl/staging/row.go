// Package staging provides access to agro.staging_benefits: the raw
// spreadsheet-sourced rows, their processed/error markers, and the
// workbook loader that fills the table.
package staging

import "time"

// Row is one raw subsidy-delivery record prior to normalization. All four
// benefit variants share this table, discriminated by BenefitTag; fields
// that do not apply to a variant are simply null. Rows are never deleted,
// only flagged, so reprocessing is always possible.
type Row struct {
	ID         int64
	BenefitTag string

	// Beneficiary attributes, repeated across rows.
	FullName   *string
	NationalID *string
	Phone      *string
	Gender     *string
	Age        *int

	// Location attributes. Coordinates arrive as raw spreadsheet text and
	// are parsed to numeric values during resolution.
	Canton   *string
	Parish   *string
	Locality *string
	CoordX   *string
	CoordY   *string

	// Shared delivery attributes.
	Organization  *string
	Crop          *string
	HectaresTotal *float64
	Hectares      *float64
	DeliveryDate  *time.Time
	DeliveryPlace *string
	Observations  *string
	Year          *int

	// Seeds / plants.
	Certificate *string
	Variety     *string
	Quantity    *int
	UnitPrice   *float64
	AgencyName  *string
	AgencyID    *string

	// Fertilizer.
	KitPrice    *float64
	NitrogenQty *int
	NPKQty      *int
	OrganicQty  *int

	// Plants.
	Contractor   *string
	ContractorID *string
	Rubro        *string

	// Mechanization.
	CostPerHectare *float64
	Investment     *float64
	State          *string
	Grouping       *string

	// Processing markers, written only by the orchestrator.
	Processed bool
	Error     *string
}
