// Package catalog holds the static crop reference data used to denormalize
// botanical metadata onto crop types at creation time.
package catalog

// Crop describes one catalog entry. Fields mirror the provincial crop
// reference sheet; unknown crops fall back to a name-only record.
type Crop struct {
	Name             string
	ScientificName   string
	BotanicalFamily  string
	Genus            string
	Cycle            string // ANUAL or PERENNE
	CycleDays        int
	EconomicClass    string
	PrimaryUse       string
	WaterRequirement string
}

// crops is keyed by the normalized crop name as it appears in staging rows.
var crops = map[string]Crop{
	"ARROZ": {
		Name:             "ARROZ",
		ScientificName:   "Oryza sativa",
		BotanicalFamily:  "Poaceae",
		Genus:            "Oryza",
		Cycle:            "ANUAL",
		CycleDays:        120,
		EconomicClass:    "ALIMENTARIO",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "ALTO",
	},
	"MAIZ": {
		Name:             "MAIZ",
		ScientificName:   "Zea mays",
		BotanicalFamily:  "Poaceae",
		Genus:            "Zea",
		Cycle:            "ANUAL",
		CycleDays:        135,
		EconomicClass:    "ALIMENTARIO",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "MEDIO",
	},
	"CACAO": {
		Name:             "CACAO",
		ScientificName:   "Theobroma cacao",
		BotanicalFamily:  "Malvaceae",
		Genus:            "Theobroma",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "EXPORTACION",
		PrimaryUse:       "INDUSTRIAL",
		WaterRequirement: "MEDIO",
	},
	"BANANO": {
		Name:             "BANANO",
		ScientificName:   "Musa paradisiaca",
		BotanicalFamily:  "Musaceae",
		Genus:            "Musa",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "EXPORTACION",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "ALTO",
	},
	"PLATANO": {
		Name:             "PLATANO",
		ScientificName:   "Musa balbisiana",
		BotanicalFamily:  "Musaceae",
		Genus:            "Musa",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "ALIMENTARIO",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "ALTO",
	},
	"CAFE": {
		Name:             "CAFE",
		ScientificName:   "Coffea arabica",
		BotanicalFamily:  "Rubiaceae",
		Genus:            "Coffea",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "EXPORTACION",
		PrimaryUse:       "INDUSTRIAL",
		WaterRequirement: "MEDIO",
	},
	"SOYA": {
		Name:             "SOYA",
		ScientificName:   "Glycine max",
		BotanicalFamily:  "Fabaceae",
		Genus:            "Glycine",
		Cycle:            "ANUAL",
		CycleDays:        110,
		EconomicClass:    "ALIMENTARIO",
		PrimaryUse:       "INDUSTRIAL",
		WaterRequirement: "MEDIO",
	},
	"LIMON": {
		Name:             "LIMON",
		ScientificName:   "Citrus limon",
		BotanicalFamily:  "Rutaceae",
		Genus:            "Citrus",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "ALIMENTARIO",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "MEDIO",
	},
	"MANGO": {
		Name:             "MANGO",
		ScientificName:   "Mangifera indica",
		BotanicalFamily:  "Anacardiaceae",
		Genus:            "Mangifera",
		Cycle:            "PERENNE",
		CycleDays:        0,
		EconomicClass:    "EXPORTACION",
		PrimaryUse:       "CONSUMO_HUMANO",
		WaterRequirement: "MEDIO",
	},
}

// Lookup returns the catalog entry for a normalized crop name.
func Lookup(name string) (Crop, bool) {
	c, ok := crops[name]
	return c, ok
}
