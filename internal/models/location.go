// internal/models/location.go
package models

import (
	"time"

	"territory-workers/internal/geo"
)

// BusinessLocation is a prospect's establishment to be assigned to a
// representative. Coordinate is nil until geocoding resolves it.
type BusinessLocation struct {
	ID                       string        `json:"id"`
	Name                     string        `json:"name"`
	Address                  geo.Address   `json:"address"`
	Coordinate               *geo.GeoPoint `json:"coordinate,omitempty"`
	CoordinateSource         string        `json:"coordinateSource,omitempty"`
	AssignedRepresentativeID string        `json:"assignedRepresentativeId,omitempty"`
	AssignedAt               *time.Time    `json:"assignedAt,omitempty"`
}

// Coordinate sources recorded with a resolved location.
const (
	CoordinateSourceGeocoder = "geocoder"
	CoordinateSourceCEP      = "cep_fallback"
	CoordinateSourceCity     = "city_fallback"
	CoordinateSourceCached   = "cache"
)
