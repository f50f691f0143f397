// internal/models/representative.go
package models

// Representative is a salesperson with a coverage territory. Territory holds
// the raw JSON definition from storage; the engine parses and validates it
// per match and skips misconfigured definitions.
type Representative struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Territory       []byte `json:"-"`
	TerritoryActive bool   `json:"territoryActive"`
	Active          bool   `json:"active"`
}
