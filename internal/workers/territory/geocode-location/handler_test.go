// internal/workers/territory/geocode-location/handler_test.go
package geocodelocation

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
}

func (s *stubEngine) Locate(ctx context.Context, locationID string) (*models.AssignmentResult, error) {
	return s.result, s.err
}

func TestExecuteResolvedCoordinate(t *testing.T) {
	engine := &stubEngine{
		result: &models.AssignmentResult{
			Success:          true,
			LocationID:       "loc-1",
			Coordinate:       &geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526},
			CoordinateSource: models.CoordinateSourceCEP,
		},
	}
	handler := NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{LocationID: "loc-1"})
	require.NoError(t, err)
	assert.True(t, output.Success)
	require.NotNil(t, output.Coordinate)
	assert.Equal(t, models.CoordinateSourceCEP, output.CoordinateSource)
}

func TestExecuteUnresolvableAddress(t *testing.T) {
	engine := &stubEngine{
		result: &models.AssignmentResult{
			Success:    false,
			LocationID: "loc-1",
			ErrorCode:  "GEOCODING_UNAVAILABLE",
			Error:      "could not resolve a coordinate for the address",
		},
	}
	handler := NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{LocationID: "loc-1"})
	require.NoError(t, err)
	assert.False(t, output.Success)
	assert.Equal(t, "GEOCODING_UNAVAILABLE", output.ErrorCode)
	assert.Nil(t, output.Coordinate)
}

func TestExecuteMissingLocationID(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubEngine{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}
