// internal/geo/geo_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPointValid(t *testing.T) {
	tests := []struct {
		name  string
		point GeoPoint
		want  bool
	}{
		{"sao paulo", GeoPoint{Latitude: -23.5505, Longitude: -46.6333}, true},
		{"origin", GeoPoint{}, true},
		{"lat too high", GeoPoint{Latitude: 90.1, Longitude: 0}, false},
		{"lat too low", GeoPoint{Latitude: -90.1, Longitude: 0}, false},
		{"lng too high", GeoPoint{Latitude: 0, Longitude: 180.1}, false},
		{"lng too low", GeoPoint{Latitude: 0, Longitude: -180.1}, false},
		{"boundary", GeoPoint{Latitude: -90, Longitude: 180}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.point.Valid())
		})
	}
}

func TestAddressQueryString(t *testing.T) {
	addr := Address{
		Street:     "Av. Paulista, 1000",
		City:       "São Paulo",
		State:      "SP",
		PostalCode: "01310-100",
	}
	assert.Equal(t, "Av. Paulista, 1000, São Paulo, SP, 01310100", addr.QueryString())

	empty := Address{}
	assert.Equal(t, "", empty.QueryString())

	cepOnly := Address{PostalCode: "18030-310"}
	assert.Equal(t, "18030310", cepOnly.QueryString())
}

func TestAddressHasGeocodableData(t *testing.T) {
	assert.True(t, Address{City: "Sorocaba"}.HasGeocodableData())
	assert.True(t, Address{PostalCode: "18030-310"}.HasGeocodableData())
	assert.False(t, Address{Street: "Rua X"}.HasGeocodableData())
	assert.False(t, Address{PostalCode: "---"}.HasGeocodableData())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo", "sao paulo"},
		{"  SAO PAULO ", "sao paulo"},
		{"Brasília", "brasilia"},
		{"Florianópolis", "florianopolis"},
		{"goiânia", "goiania"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "18030310", DigitsOnly("18030-310"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "123", DigitsOnly(" 1a2b3 "))
}
