// internal/geo/address.go
package geo

import "strings"

// Address holds the postal address fields of a business location. Every field
// is optional; at least a city or postal code is needed to resolve a
// coordinate.
type Address struct {
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

// QueryString builds the free-text query sent to the geocoding service:
// non-empty fields joined with ", ", postal code reduced to its digits.
func (a Address) QueryString() string {
	parts := make([]string, 0, 5)
	for _, field := range []string{a.Street, a.Neighborhood, a.City, a.State} {
		if s := strings.TrimSpace(field); s != "" {
			parts = append(parts, s)
		}
	}
	if cep := DigitsOnly(a.PostalCode); cep != "" {
		parts = append(parts, cep)
	}
	return strings.Join(parts, ", ")
}

// HasGeocodableData reports whether the address carries enough information to
// attempt any coordinate resolution.
func (a Address) HasGeocodableData() bool {
	return strings.TrimSpace(a.City) != "" || DigitsOnly(a.PostalCode) != ""
}

// DigitsOnly strips everything but decimal digits from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
