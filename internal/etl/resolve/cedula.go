package resolve

import (
	"strconv"
	"strings"

	"github.com/guayas-agro/subsidy-etl/internal/etl/etlerr"
)

// ValidateCedula checks an Ecuadorian national ID: ten digits, a valid
// province prefix (01-24), third digit below 6, and the module-10 check
// digit over the first nine digits.
func ValidateCedula(cedula string) error {
	cedula = strings.TrimSpace(cedula)
	if len(cedula) != 10 {
		return etlerr.NewValidation("national id must have 10 digits", "national_id")
	}
	for _, r := range cedula {
		if r < '0' || r > '9' {
			return etlerr.NewValidation("national id must be numeric", "national_id")
		}
	}

	province, _ := strconv.Atoi(cedula[:2])
	if province < 1 || province > 24 {
		return etlerr.NewValidation("national id has invalid province code", "national_id")
	}
	if cedula[2]-'0' >= 6 {
		return etlerr.NewValidation("national id has invalid third digit", "national_id")
	}

	coefficients := [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}
	sum := 0
	for i, c := range coefficients {
		d := int(cedula[i]-'0') * c
		if d > 9 {
			d -= 9
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	if check != int(cedula[9]-'0') {
		return etlerr.NewValidation("national id check digit mismatch", "national_id")
	}
	return nil
}
