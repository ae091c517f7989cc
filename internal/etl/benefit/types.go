// Package benefit defines the typed benefit record and the builder that
// assembles one record per staging row. Benefits form a closed variant set
// (seeds, fertilizer, plants, mechanization); adding a variant is a code
// change, not configuration.
package benefit

import (
	"time"

	"github.com/rotisserie/eris"
)

// Type identifies a benefit variant.
type Type int

const (
	Seeds Type = iota + 1
	Fertilizer
	Plants
	Mechanization
)

// AllTypes lists every benefit variant, in pipeline order.
var AllTypes = []Type{Seeds, Fertilizer, Plants, Mechanization}

// String returns the CLI-facing name.
func (t Type) String() string {
	switch t {
	case Seeds:
		return "seeds"
	case Fertilizer:
		return "fertilizer"
	case Plants:
		return "plants"
	case Mechanization:
		return "mechanization"
	default:
		return "unknown"
	}
}

// Tag returns the tipo_beneficio discriminator stored with each staging
// and benefit row. Values match the source spreadsheets.
func (t Type) Tag() string {
	switch t {
	case Seeds:
		return "SEMILLAS"
	case Fertilizer:
		return "FERTILIZANTES"
	case Plants:
		return "PLANTAS"
	case Mechanization:
		return "MECANIZACION"
	default:
		return ""
	}
}

// ParseType converts a CLI name or tipo_beneficio tag into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "seeds", "SEMILLAS":
		return Seeds, nil
	case "fertilizer", "FERTILIZANTES":
		return Fertilizer, nil
	case "plants", "PLANTAS":
		return Plants, nil
	case "mechanization", "MECANIZACION":
		return Mechanization, nil
	default:
		return 0, eris.Errorf("unknown benefit type: %q (valid: seeds, fertilizer, plants, mechanization)", s)
	}
}

// Refs carries the canonical entity IDs a benefit record links to.
// AddressID, CropTypeID and AssociationID are zero when the staging row
// carried no corresponding attributes.
type Refs struct {
	BeneficiaryID int64
	AddressID     int64
	CropTypeID    int64
	AssociationID int64
}

// Record is one typed subsidy delivery: the common fields shared by every
// variant plus exactly one populated payload selected by Type.
type Record struct {
	Type          Type
	StagingID     int64
	Refs          Refs
	DeliveryDate  *time.Time
	DeliveryPlace *string
	Hectares      *float64
	Amount        *float64
	Year          *int
	Observations  *string

	Seeds         *SeedsPayload
	Fertilizer    *FertilizerPayload
	Plants        *PlantsPayload
	Mechanization *MechanizationPayload
}

// SeedsPayload holds the seed-delivery fields.
type SeedsPayload struct {
	Variety     *string
	Quantity    *int
	UnitPrice   *float64
	Certificate *string
	AgencyName  *string
	AgencyID    *string
}

// FertilizerPayload holds the fertilizer-kit fields.
type FertilizerPayload struct {
	KitPrice    *float64
	NitrogenQty *int
	NPKQty      *int
	OrganicQty  *int
}

// PlantsPayload holds the plant-delivery fields.
type PlantsPayload struct {
	Quantity     *int
	UnitPrice    *float64
	Certificate  *string
	Contractor   *string
	ContractorID *string
	Rubro        *string
}

// MechanizationPayload holds the field-mechanization fields.
type MechanizationPayload struct {
	CostPerHectare *float64
	Investment     *float64
	State          *string
	Grouping       *string
}
