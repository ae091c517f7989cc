package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"arroz", "ARROZ"},
		{"  Maíz   duro  ", "MAIZ DURO"},
		{"JOSÉ PÉREZ", "JOSE PEREZ"},
		{"ASOC.\tDE   PRODUCTORES", "ASOC. DE PRODUCTORES"},
		{"Ñausa", "NAUSA"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Maíz  Duro", "JOSÉ", "  x  y  "} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestAddressKey(t *testing.T) {
	key := AddressKey("Guayas", " Daule ", "daule", "El  Recinto")
	assert.Equal(t, "GUAYAS|DAULE|DAULE|EL RECINTO", key)

	// Missing parts keep their position so distinct locations never collide.
	assert.Equal(t, "GUAYAS|DAULE||", AddressKey("GUAYAS", "DAULE", "", ""))
	assert.NotEqual(t,
		AddressKey("GUAYAS", "DAULE", "", "X"),
		AddressKey("GUAYAS", "DAULE", "X", ""))
}
