// internal/geo/geocode/fallback_test.go
package geocode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/geo"
)

func TestFromCEPSorocabaRange(t *testing.T) {
	est := NewStaticEstimator()

	point := est.FromCEP("18030-310")
	require.NotNil(t, point)

	// Must land near the Sorocaba city center.
	assert.InDelta(t, -23.5015, point.Latitude, 0.5)
	assert.InDelta(t, -47.4526, point.Longitude, 0.5)
}

func TestFromCEPDeterministic(t *testing.T) {
	est := NewStaticEstimator()

	a := est.FromCEP("18030-310")
	b := est.FromCEP("18030-310")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}

func TestFromCEPDistinctSuffixesSpread(t *testing.T) {
	est := NewStaticEstimator()

	a := est.FromCEP("18030-310")
	b := est.FromCEP("18030-521")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, *a, *b)

	// Both stay within the city's neighborhood of the center.
	assert.Less(t, math.Abs(a.Latitude-b.Latitude), 0.1)
	assert.Less(t, math.Abs(a.Longitude-b.Longitude), 0.1)
}

func TestFromCEPUnknownPrefix(t *testing.T) {
	est := NewStaticEstimator()

	assert.Nil(t, est.FromCEP("99990-000"))
	assert.Nil(t, est.FromCEP("123"))
	assert.Nil(t, est.FromCEP(""))
	assert.Nil(t, est.FromCEP("abcde-fgh"))
}

func TestFromCityNormalizedLookup(t *testing.T) {
	est := NewStaticEstimator()

	tests := []struct {
		city string
		lat  float64
		lng  float64
	}{
		{"Sorocaba", -23.5015, -47.4526},
		{"são paulo", -23.5505, -46.6333},
		{"  CURITIBA  ", -25.4284, -49.2733},
		{"Brasília", -15.7939, -47.8828},
	}

	for _, tt := range tests {
		point := est.FromCity(tt.city)
		require.NotNil(t, point, tt.city)
		assert.Equal(t, tt.lat, point.Latitude)
		assert.Equal(t, tt.lng, point.Longitude)
	}

	assert.Nil(t, est.FromCity("Atlantis"))
	assert.Nil(t, est.FromCity(""))
}

func TestEstimatePrefersCEPOverCity(t *testing.T) {
	est := NewStaticEstimator()

	// CEP is in the Sorocaba range even though the city field says otherwise.
	point := est.Estimate(geo.Address{City: "São Paulo", PostalCode: "18030-310"})
	require.NotNil(t, point)
	assert.InDelta(t, -23.5015, point.Latitude, 0.5)
	assert.InDelta(t, -47.4526, point.Longitude, 0.5)
}

func TestEstimateFallsBackToCity(t *testing.T) {
	est := NewStaticEstimator()

	point := est.Estimate(geo.Address{City: "Campinas", PostalCode: "99999-999"})
	require.NotNil(t, point)
	assert.Equal(t, -22.9099, point.Latitude)

	assert.Nil(t, est.Estimate(geo.Address{Street: "Rua X"}))
}
