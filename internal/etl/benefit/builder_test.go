package benefit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/staging"
)

func strp(s string) *string     { return &s }
func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func TestBuild_Seeds(t *testing.T) {
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	row := staging.Row{
		ID:            101,
		BenefitTag:    "SEMILLAS",
		Hectares:      floatp(2.5),
		DeliveryDate:  &date,
		DeliveryPlace: strp("DAULE"),
		Variety:       strp("INIAP 14"),
		Quantity:      intp(3),
		UnitPrice:     floatp(45.50),
		Certificate:   strp("ACTA-001"),
		AgencyName:    strp("PEREZ J."),
		AgencyID:      strp("0912345678"),
		Year:          intp(2025),
	}

	rec, err := Build(row, Refs{BeneficiaryID: 7, AddressID: 3})
	require.NoError(t, err)

	assert.Equal(t, Seeds, rec.Type)
	assert.Equal(t, int64(101), rec.StagingID)
	assert.Equal(t, int64(7), rec.Refs.BeneficiaryID)
	require.NotNil(t, rec.Seeds)
	assert.Nil(t, rec.Fertilizer)
	assert.Nil(t, rec.Plants)
	assert.Nil(t, rec.Mechanization)

	assert.Equal(t, "INIAP 14", *rec.Seeds.Variety)
	assert.Equal(t, 3, *rec.Seeds.Quantity)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 45.50, *rec.Amount)
	assert.Equal(t, "DAULE", *rec.DeliveryPlace)
}

func TestBuild_Fertilizer(t *testing.T) {
	row := staging.Row{
		ID:          200,
		BenefitTag:  "FERTILIZANTES",
		KitPrice:    floatp(120),
		NitrogenQty: intp(2),
		NPKQty:      intp(1),
		OrganicQty:  intp(0),
	}

	rec, err := Build(row, Refs{BeneficiaryID: 1})
	require.NoError(t, err)

	assert.Equal(t, Fertilizer, rec.Type)
	require.NotNil(t, rec.Fertilizer)
	assert.Equal(t, 120.0, *rec.Fertilizer.KitPrice)
	assert.Equal(t, 0, *rec.Fertilizer.OrganicQty)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 120.0, *rec.Amount)
}

func TestBuild_Plants(t *testing.T) {
	row := staging.Row{
		ID:           300,
		BenefitTag:   "PLANTAS",
		Quantity:     intp(500),
		UnitPrice:    floatp(0.35),
		Contractor:   strp("VIVEROS DEL SUR"),
		ContractorID: strp("0998765432001"),
		Rubro:        strp("CACAO"),
	}

	rec, err := Build(row, Refs{BeneficiaryID: 2})
	require.NoError(t, err)

	assert.Equal(t, Plants, rec.Type)
	require.NotNil(t, rec.Plants)
	assert.Equal(t, 500, *rec.Plants.Quantity)
	assert.Equal(t, "VIVEROS DEL SUR", *rec.Plants.Contractor)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 0.35, *rec.Amount)
}

func TestBuild_MechanizationDropsDeliveryFields(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	row := staging.Row{
		ID:             400,
		BenefitTag:     "MECANIZACION",
		DeliveryDate:   &date,
		DeliveryPlace:  strp("SAMBORONDON"),
		Hectares:       floatp(4),
		CostPerHectare: floatp(80),
		Investment:     floatp(320),
		State:          strp("EJECUTADO"),
		Grouping:       strp("ZONA 5"),
	}

	rec, err := Build(row, Refs{BeneficiaryID: 3})
	require.NoError(t, err)

	assert.Equal(t, Mechanization, rec.Type)
	require.NotNil(t, rec.Mechanization)
	assert.Nil(t, rec.DeliveryDate)
	assert.Nil(t, rec.DeliveryPlace)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 320.0, *rec.Amount)
}

func TestBuild_UnknownTag(t *testing.T) {
	_, err := Build(staging.Row{ID: 1, BenefitTag: "BONOS"}, Refs{})
	require.Error(t, err)
	assert.True(t, etlerr.IsValidation(err))
}

func TestBuild_CollectsAllInvalidFields(t *testing.T) {
	row := staging.Row{
		ID:         5,
		BenefitTag: "SEMILLAS",
		Hectares:   floatp(-1),
		UnitPrice:  floatp(-45.5),
		Quantity:   intp(0),
	}

	_, err := Build(row, Refs{})
	require.Error(t, err)

	var verr *etlerr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, err.Error(), "hectares")
	assert.Contains(t, err.Error(), "unit_price")
	assert.Contains(t, err.Error(), "quantity")
}

func TestBuild_NilNumericsValid(t *testing.T) {
	rec, err := Build(staging.Row{ID: 6, BenefitTag: "FERTILIZANTES"}, Refs{})
	require.NoError(t, err)
	assert.Nil(t, rec.Amount)
	require.NotNil(t, rec.Fertilizer)
	assert.Nil(t, rec.Fertilizer.KitPrice)
}

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want Type
	}{
		{"seeds", Seeds},
		{"SEMILLAS", Seeds},
		{"fertilizer", Fertilizer},
		{"FERTILIZANTES", Fertilizer},
		{"plants", Plants},
		{"PLANTAS", Plants},
		{"mechanization", Mechanization},
		{"MECANIZACION", Mechanization},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseType("semillas")
	assert.Error(t, err)
	_, err = ParseType("")
	assert.Error(t, err)
}

func TestTypeRoundTrip(t *testing.T) {
	for _, typ := range AllTypes {
		fromName, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, fromName)

		fromTag, err := ParseType(typ.Tag())
		require.NoError(t, err)
		assert.Equal(t, typ, fromTag)
	}
}
