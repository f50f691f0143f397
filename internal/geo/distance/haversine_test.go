// internal/geo/distance/haversine_test.go
package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"territory-workers/internal/geo"
)

var (
	paulista  = geo.GeoPoint{Latitude: -23.5619, Longitude: -46.6563}
	seCenter  = geo.GeoPoint{Latitude: -23.5505, Longitude: -46.6333}
	sorocaba  = geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}
	rioCentro = geo.GeoPoint{Latitude: -22.9068, Longitude: -43.1729}
)

func TestHaversineKmKnownDistance(t *testing.T) {
	// Paulista to the São Paulo city center is roughly 2.5 km.
	d := HaversineKm(paulista, seCenter)
	assert.InDelta(t, 2.5, d, 0.3)
}

func TestHaversineKmIdentity(t *testing.T) {
	assert.Equal(t, 0.0, HaversineKm(paulista, paulista))
	assert.Equal(t, 0.0, HaversineKm(geo.GeoPoint{}, geo.GeoPoint{}))
}

func TestHaversineKmSymmetry(t *testing.T) {
	assert.Equal(t, HaversineKm(seCenter, rioCentro), HaversineKm(rioCentro, seCenter))
	assert.Equal(t, HaversineKm(seCenter, sorocaba), HaversineKm(sorocaba, seCenter))
}

func TestHaversineKmTriangleInequality(t *testing.T) {
	direct := HaversineKm(seCenter, rioCentro)
	viaSorocaba := HaversineKm(seCenter, sorocaba) + HaversineKm(sorocaba, rioCentro)
	assert.LessOrEqual(t, direct, viaSorocaba+0.01)
}

func TestHaversineKmRoundsToTwoDecimals(t *testing.T) {
	d := HaversineKm(paulista, seCenter)
	assert.Equal(t, math.Round(d*100)/100, d)
}

func TestHaversineKmLongRange(t *testing.T) {
	// São Paulo to Rio is about 360 km great-circle.
	d := HaversineKm(seCenter, rioCentro)
	assert.InDelta(t, 360, d, 10)
}
