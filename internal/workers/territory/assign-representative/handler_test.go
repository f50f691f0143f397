// internal/workers/territory/assign-representative/handler_test.go
package assignrepresentative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo"
	"territory-workers/internal/models"
)

type stubEngine struct {
	result *models.AssignmentResult
	err    error
	calls  int
	lastID string
}

func (s *stubEngine) Assign(ctx context.Context, locationID string) (*models.AssignmentResult, error) {
	s.calls++
	s.lastID = locationID
	return s.result, s.err
}

func TestExecuteSuccessfulAssignment(t *testing.T) {
	engine := &stubEngine{
		result: &models.AssignmentResult{
			Success:          true,
			LocationID:       "loc-1",
			RepresentativeID: "rep-1",
			DistanceKm:       2.5,
			Method:           "radius",
			Coordinate:       &geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526},
		},
	}
	handler := NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{LocationID: "loc-1"})
	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "rep-1", output.RepresentativeID)
	assert.Equal(t, 2.5, output.DistanceKm)
	assert.Equal(t, "loc-1", engine.lastID)
}

func TestExecuteNoCoverageCompletesWithFailureResult(t *testing.T) {
	engine := &stubEngine{
		result: &models.AssignmentResult{
			Success:    false,
			LocationID: "loc-1",
			ErrorCode:  "NO_COVERAGE",
			Error:      "outside all coverage areas",
		},
	}
	handler := NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{LocationID: "loc-1"})
	require.NoError(t, err)
	assert.False(t, output.Success)
	assert.Equal(t, "NO_COVERAGE", output.ErrorCode)
}

func TestExecuteMissingLocationID(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubEngine{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrAssignmentFailed)
}

func TestExecutePropagatesEngineError(t *testing.T) {
	engine := &stubEngine{err: assert.AnError}
	handler := NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{LocationID: "loc-1"})
	require.Error(t, err)
	assert.Nil(t, output)
}
