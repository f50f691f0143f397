// internal/workers/territory/assign-representative/models.go
package assignrepresentative

import "territory-workers/internal/models"

type Input struct {
	LocationID string `json:"locationId"`
}

// Output is the assignment result published back to the process. Failed
// matches complete the job with success=false so the process can branch;
// only infrastructure errors throw BPMN errors.
type Output struct {
	models.AssignmentResult
}
