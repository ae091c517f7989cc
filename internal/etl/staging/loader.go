package staging

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/guayas-agro/subsidy-etl/internal/db"
)

// loadColumns is the column list for workbook imports, in mapped-value
// order. The database assigns id and the processing markers.
var loadColumns = []string{
	"benefit_type", "full_name", "national_id", "phone", "gender", "age",
	"canton", "parish", "locality", "coord_x", "coord_y",
	"organization", "crop", "hectares_total", "hectares", "delivery_date", "delivery_place", "observations", "benefit_year",
	"certificate", "variety", "quantity", "unit_price", "agency_name", "agency_id",
	"kit_price", "nitrogen_qty", "npk_qty", "organic_qty",
	"contractor", "contractor_id", "rubro",
	"cost_per_hectare", "investment", "mech_state", "group_name",
}

// headerFields maps source spreadsheet headers (accent-insensitive,
// upper-cased) onto Row fields. The layouts come from the provincial
// delivery workbooks; every benefit type shares one map because unknown
// headers are simply ignored.
var headerFields = map[string]func(*Row, string){
	"ACTAS":                    func(r *Row, v string) { r.Certificate = strPtr(v) },
	"NUMERO ACTA":              func(r *Row, v string) { r.Certificate = strPtr(v) },
	"ASOCIACIONES":             func(r *Row, v string) { r.Organization = strPtr(v) },
	"ORGANIZACION":             func(r *Row, v string) { r.Organization = strPtr(v) },
	"AGRUPACION":               func(r *Row, v string) { r.Grouping = strPtr(v) },
	"NOMBRES COMPLETOS":        func(r *Row, v string) { r.FullName = strPtr(v) },
	"NOMBRES Y APELLIDOS":      func(r *Row, v string) { r.FullName = strPtr(v) },
	"CEDULA":                   func(r *Row, v string) { r.NationalID = strPtr(v) },
	"TELEFONO":                 func(r *Row, v string) { r.Phone = strPtr(v) },
	"GENERO":                   func(r *Row, v string) { r.Gender = strPtr(v) },
	"EDAD":                     func(r *Row, v string) { r.Age = intPtr(v) },
	"CANTON":                   func(r *Row, v string) { r.Canton = strPtr(v) },
	"PARROQUIA":                func(r *Row, v string) { r.Parish = strPtr(v) },
	"RECINTO, COMUNA O SECTOR": func(r *Row, v string) { r.Locality = strPtr(v) },
	"LOCALIDAD":                func(r *Row, v string) { r.Locality = strPtr(v) },
	"X":                        func(r *Row, v string) { r.CoordX = strPtr(v) },
	"Y":                        func(r *Row, v string) { r.CoordY = strPtr(v) },
	"HECTAREAS":                func(r *Row, v string) { r.Hectares = floatPtr(v); r.HectaresTotal = floatPtr(v) },
	"HECTARIAS BENEFICIADAS":   func(r *Row, v string) { r.Hectares = floatPtr(v) },
	"ENTREGA":                  func(r *Row, v string) { r.Quantity = intPtr(v) },
	"VARIEDAD":                 func(r *Row, v string) { r.Variety = strPtr(v) },
	"CULTIVO":                  func(r *Row, v string) { r.Crop = strPtr(v) },
	"CULTIVO 1":                func(r *Row, v string) { r.Crop = strPtr(v) },
	"RUBRO":                    func(r *Row, v string) { r.Rubro = strPtr(v) },
	"FECHA DE ENTREGA":         func(r *Row, v string) { r.DeliveryDate = datePtr(v) },
	"LUGAR DE ENTREGA":         func(r *Row, v string) { r.DeliveryPlace = strPtr(v) },
	"RESPONSABLE DE AGRIPAC":   func(r *Row, v string) { r.AgencyName = strPtr(v) },
	"CEDULA2":                  func(r *Row, v string) { r.AgencyID = strPtr(v) },
	"CONTRATISTA":              func(r *Row, v string) { r.Contractor = strPtr(v) },
	"CEDULA CONTRATISTA":       func(r *Row, v string) { r.ContractorID = strPtr(v) },
	"PRECIO UNITARIO":          func(r *Row, v string) { r.UnitPrice = floatPtr(v) },
	"PRECIO KIT":               func(r *Row, v string) { r.KitPrice = floatPtr(v) },
	"FERTILIZANTE NITROGENADO": func(r *Row, v string) { r.NitrogenQty = intPtr(v) },
	"NPK + ELEMENTOS MENORES":  func(r *Row, v string) { r.NPKQty = intPtr(v) },
	"ORGANICO FOLIAR":          func(r *Row, v string) { r.OrganicQty = intPtr(v) },
	"CU/HA":                    func(r *Row, v string) { r.CostPerHectare = floatPtr(v) },
	"INVERSION":                func(r *Row, v string) { r.Investment = floatPtr(v) },
	"ESTADO":                   func(r *Row, v string) { r.State = strPtr(v) },
	"OBSERVACION":              func(r *Row, v string) { r.Observations = strPtr(v) },
	"ANO":                      func(r *Row, v string) { r.Year = intPtr(v) },
	"ANIO":                     func(r *Row, v string) { r.Year = intPtr(v) },
}

// Loader imports workbook rows into agro.staging_benefits via COPY.
type Loader struct {
	pool db.Pool
}

// NewLoader creates a Loader backed by the given pool.
func NewLoader(pool db.Pool) *Loader {
	return &Loader{pool: pool}
}

// LoadWorkbook reads one sheet and appends its rows to the staging table
// tagged with the given benefit type. Staging is append-only; re-running
// the pipeline is governed by the processed flag, not by the loader.
func (l *Loader) LoadWorkbook(ctx context.Context, path, benefitTag string, opts WorkbookOptions) (int64, error) {
	log := zap.L().With(zap.String("component", "staging.loader"), zap.String("benefit_type", benefitTag))

	header, dataRows, err := ReadWorkbook(path, opts)
	if err != nil {
		return 0, err
	}
	if len(header) == 0 {
		return 0, eris.Errorf("staging: workbook %s has no header row", path)
	}

	setters := make([]func(*Row, string), len(header))
	mapped := 0
	for i, h := range header {
		if fn, ok := headerFields[canonicalHeader(h)]; ok {
			setters[i] = fn
			mapped++
		}
	}
	if mapped == 0 {
		return 0, eris.Errorf("staging: workbook %s: no recognized columns in header", path)
	}
	log.Debug("header mapped", zap.Int("columns", len(header)), zap.Int("recognized", mapped))

	values := make([][]any, 0, len(dataRows))
	for _, cells := range dataRows {
		if blankRow(cells) {
			continue
		}
		var row Row
		row.BenefitTag = benefitTag
		for i, cell := range cells {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, cell)
			}
		}
		values = append(values, loadValues(row))
	}

	n, err := db.CopyInto(ctx, l.pool, "agro", "staging_benefits", loadColumns, values)
	if err != nil {
		return 0, err
	}
	log.Info("workbook loaded", zap.String("path", path), zap.Int64("rows", n))
	return n, nil
}

// loadValues flattens a Row into COPY values in loadColumns order.
func loadValues(r Row) []any {
	return []any{
		r.BenefitTag, r.FullName, r.NationalID, r.Phone, r.Gender, r.Age,
		r.Canton, r.Parish, r.Locality, r.CoordX, r.CoordY,
		r.Organization, r.Crop, r.HectaresTotal, r.Hectares, r.DeliveryDate, r.DeliveryPlace, r.Observations, r.Year,
		r.Certificate, r.Variety, r.Quantity, r.UnitPrice, r.AgencyName, r.AgencyID,
		r.KitPrice, r.NitrogenQty, r.NPKQty, r.OrganicQty,
		r.Contractor, r.ContractorID, r.Rubro,
		r.CostPerHectare, r.Investment, r.State, r.Grouping,
	}
}

// canonicalHeader upper-cases and squeezes a header cell, folding the few
// accented characters the workbooks use.
func canonicalHeader(h string) string {
	h = strings.ToUpper(strings.TrimSpace(h))
	h = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ñ", "N").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func strPtr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func intPtr(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Some sheets format integers as decimals ("3.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

func floatPtr(v string) *float64 {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "1/2/06", "01-02-06", "2006-01-02 15:04:05"}

func datePtr(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
