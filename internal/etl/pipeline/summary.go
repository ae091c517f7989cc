package pipeline

import (
	"time"

	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
	"github.com/guayas-agro/subsidy-etl/internal/etl/resolve"
)

// RunSummary is the operational surface of one pipeline run, suitable for
// a calling CLI to print and for the run log to persist. Counts are always
// populated, including on partial failure.
type RunSummary struct {
	BenefitType string
	DryRun      bool
	RowsSeen    int
	Succeeded   int
	Failed      int
	ErrorKinds  map[etlerr.Kind]int
	Entities    resolve.CreatedCounts
	Duration    time.Duration
}

// EntityMap flattens the per-kind creation counts for the run log.
func (s RunSummary) EntityMap() map[string]int {
	return map[string]int{
		"beneficiaries": s.Entities.Beneficiaries,
		"addresses":     s.Entities.Addresses,
		"associations":  s.Entities.Associations,
		"crop_types":    s.Entities.CropTypes,
	}
}
