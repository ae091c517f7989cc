package benefit

import (
	"fmt"

	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

// Build assembles the typed benefit record for one staging row, dispatching
// on the row's tipo_beneficio tag. It validates subtype numeric fields and
// has no side effects; persistence belongs to the batch runner.
func Build(row staging.Row, refs Refs) (Record, error) {
	t, err := ParseType(row.BenefitTag)
	if err != nil {
		return Record{}, etlerr.NewValidation(err.Error(), "benefit_type")
	}

	rec := Record{
		Type:          t,
		StagingID:     row.ID,
		Refs:          refs,
		DeliveryDate:  row.DeliveryDate,
		DeliveryPlace: row.DeliveryPlace,
		Hectares:      row.Hectares,
		Year:          row.Year,
		Observations:  row.Observations,
	}

	v := newValidator()
	v.nonNegative("hectares", row.Hectares)

	switch t {
	case Seeds:
		rec.Amount = row.UnitPrice
		rec.Seeds = &SeedsPayload{
			Variety:     row.Variety,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Certificate: row.Certificate,
			AgencyName:  row.AgencyName,
			AgencyID:    row.AgencyID,
		}
		v.nonNegative("unit_price", row.UnitPrice)
		v.positiveInt("quantity", row.Quantity)

	case Fertilizer:
		rec.Amount = row.KitPrice
		rec.Fertilizer = &FertilizerPayload{
			KitPrice:    row.KitPrice,
			NitrogenQty: row.NitrogenQty,
			NPKQty:      row.NPKQty,
			OrganicQty:  row.OrganicQty,
		}
		v.nonNegative("kit_price", row.KitPrice)
		v.nonNegativeInt("nitrogen_qty", row.NitrogenQty)
		v.nonNegativeInt("npk_qty", row.NPKQty)
		v.nonNegativeInt("organic_qty", row.OrganicQty)

	case Plants:
		rec.Amount = row.UnitPrice
		rec.Plants = &PlantsPayload{
			Quantity:     row.Quantity,
			UnitPrice:    row.UnitPrice,
			Certificate:  row.Certificate,
			Contractor:   row.Contractor,
			ContractorID: row.ContractorID,
			Rubro:        row.Rubro,
		}
		v.nonNegative("unit_price", row.UnitPrice)
		v.positiveInt("quantity", row.Quantity)

	case Mechanization:
		// Mechanization rows carry no delivery date or place in the source.
		rec.DeliveryDate = nil
		rec.DeliveryPlace = nil
		rec.Amount = row.Investment
		rec.Mechanization = &MechanizationPayload{
			CostPerHectare: row.CostPerHectare,
			Investment:     row.Investment,
			State:          row.State,
			Grouping:       row.Grouping,
		}
		v.nonNegative("cost_per_hectare", row.CostPerHectare)
		v.nonNegative("investment", row.Investment)
	}

	if err := v.err(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// validator collects every offending numeric field before failing, so the
// error names all of them. Invalid values are never coerced to zero.
type validator struct {
	fields []string
}

func newValidator() *validator { return &validator{} }

func (v *validator) nonNegative(field string, val *float64) {
	if val != nil && *val < 0 {
		v.fields = append(v.fields, fmt.Sprintf("%s=%g", field, *val))
	}
}

func (v *validator) nonNegativeInt(field string, val *int) {
	if val != nil && *val < 0 {
		v.fields = append(v.fields, fmt.Sprintf("%s=%d", field, *val))
	}
}

func (v *validator) positiveInt(field string, val *int) {
	if val != nil && *val <= 0 {
		v.fields = append(v.fields, fmt.Sprintf("%s=%d", field, *val))
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &etlerr.ValidationError{Msg: "invalid numeric field(s)", Fields: v.fields}
}
