// Package resolve owns canonical-entity lookup and creation: beneficiaries,
// addresses, associations and crop types are deduplicated here against
// storage-level unique keys built from normalized attributes.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFold decomposes and strips combining marks, so "JOSÉ" and "JOSE"
// produce the same key.
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize standardizes a text identity key: trim, accent-fold, uppercase,
// collapse internal whitespace. Formatting noise in the source sheets must
// never produce a second canonical row.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(accentFold, s); err == nil {
		s = folded
	}
	s = strings.ToUpper(s)
	return strings.Join(strings.Fields(s), " ")
}

// AddressKey builds the address identity key from its normalized text
// parts. Coordinates are deliberately excluded.
func AddressKey(province, canton, parish, locality string) string {
	return strings.Join([]string{
		Normalize(province),
		Normalize(canton),
		Normalize(parish),
		Normalize(locality),
	}, "|")
}
