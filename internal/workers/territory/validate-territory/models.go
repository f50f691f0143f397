// internal/workers/territory/validate-territory/models.go
package validateterritory

import "encoding/json"

// Input carries either an inline territory definition or a representative id
// whose stored definition should be checked.
type Input struct {
	Territory        json.RawMessage `json:"territory,omitempty"`
	RepresentativeID string          `json:"representativeId,omitempty"`
}

type Output struct {
	Valid  bool   `json:"valid"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}
