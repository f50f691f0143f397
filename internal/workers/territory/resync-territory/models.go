// internal/workers/territory/resync-territory/models.go
package resyncterritory

import "territory-workers/internal/models"

type Input struct {
	RepresentativeID string `json:"representativeId"`
	Reassign         bool   `json:"reassign"`
	DelayMs          int    `json:"delayMs,omitempty"`
}

type Output struct {
	Success bool                  `json:"success"`
	Summary *models.ResyncSummary `json:"summary,omitempty"`
}
