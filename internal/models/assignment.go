// internal/models/assignment.go
package models

import "territory-workers/internal/geo"

// Candidate is a representative whose territory contains the location,
// carrying the distance used for ranking.
type Candidate struct {
	RepresentativeID string  `json:"representativeId"`
	Name             string  `json:"name"`
	DistanceKm       float64 `json:"distanceKm"`
	Method           string  `json:"method"`
	Label            string  `json:"label,omitempty"`

	// Reference anchors the distance measurement; route enrichment uses it
	// as the origin. Not serialized into process variables.
	Reference geo.GeoPoint `json:"-"`
}

// AssignmentResult is the outcome of one assignment attempt. On failure,
// ErrorCode and Error describe why and nothing was persisted.
type AssignmentResult struct {
	Success          bool          `json:"success"`
	LocationID       string        `json:"locationId"`
	RepresentativeID string        `json:"representativeId,omitempty"`
	DistanceKm       float64       `json:"distanceKm,omitempty"`
	Method           string        `json:"method,omitempty"`
	Label            string        `json:"label,omitempty"`
	Coordinate       *geo.GeoPoint `json:"coordinate,omitempty"`
	CoordinateSource string        `json:"coordinateSource,omitempty"`
	Alternates       []Candidate   `json:"alternates,omitempty"`
	ErrorCode        string        `json:"errorCode,omitempty"`
	Error            string        `json:"error,omitempty"`

	// Route fields are set only when the distance-matrix service is enabled
	// and answered; straight-line DistanceKm always remains the ranking key.
	RouteKm              *float64 `json:"routeKm,omitempty"`
	RouteDurationMinutes *float64 `json:"routeDurationMinutes,omitempty"`
}

// ResyncSummary reports the outcome of a territory re-sync run.
type ResyncSummary struct {
	RepresentativeID string `json:"representativeId"`
	Scanned          int    `json:"scanned"`
	Assigned         int    `json:"assigned"`
	Reassigned       int    `json:"reassigned"`
	Skipped          int    `json:"skipped"`
	Failed           int    `json:"failed"`
}
