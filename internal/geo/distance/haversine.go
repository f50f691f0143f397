// internal/geo/distance/haversine.go
package distance

import (
	"math"

	"territory-workers/internal/geo"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometers, rounded to two decimal places. This is the only distance used
// for territory matching; road-network estimates are informational.
func HaversineKm(a, b geo.GeoPoint) float64 {
	lat1 := degToRad(a.Latitude)
	lon1 := degToRad(a.Longitude)
	lat2 := degToRad(b.Latitude)
	lon2 := degToRad(b.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(EarthRadiusKm * c)
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
