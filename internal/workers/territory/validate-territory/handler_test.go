// internal/workers/territory/validate-territory/handler_test.go
package validateterritory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/models"
)

type stubStore struct {
	rep *models.Representative
}

func (s *stubStore) GetRepresentative(ctx context.Context, id string) (*models.Representative, error) {
	return s.rep, nil
}

func TestExecuteValidInlineTerritory(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Territory: json.RawMessage(`{"kind": "radius", "center": {"latitude": -23.5, "longitude": -47.45}, "radiusKm": 30}`),
	})
	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Equal(t, "radius", output.Kind)
}

func TestExecuteInvalidInlineTerritory(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Territory: json.RawMessage(`{"kind": "radius", "radiusKm": 30}`),
	})
	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.NotEmpty(t, output.Reason)
}

func TestExecuteStoredTerritory(t *testing.T) {
	store := &stubStore{
		rep: &models.Representative{
			ID:        "rep-1",
			Territory: []byte(`{"kind": "multiArea", "areas": [{"center": {"latitude": -23.5, "longitude": -46.6}, "radiusKm": 20, "label": "capital"}]}`),
		},
	}
	handler := NewHandler(LoadConfig(), store, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{RepresentativeID: "rep-1"})
	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Equal(t, "multiArea", output.Kind)
}

func TestExecuteRepresentativeNotFound(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{RepresentativeID: "ghost"})
	require.Error(t, err)
	assert.Nil(t, output)
}

func TestExecuteMissingInput(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}
