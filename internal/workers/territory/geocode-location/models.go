// internal/workers/territory/geocode-location/models.go
package geocodelocation

import "territory-workers/internal/geo"

type Input struct {
	LocationID string `json:"locationId"`
}

type Output struct {
	Success          bool          `json:"success"`
	LocationID       string        `json:"locationId"`
	Coordinate       *geo.GeoPoint `json:"coordinate,omitempty"`
	CoordinateSource string        `json:"coordinateSource,omitempty"`
	ErrorCode        string        `json:"errorCode,omitempty"`
	Error            string        `json:"error,omitempty"`
}
