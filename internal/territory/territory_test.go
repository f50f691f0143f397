// internal/territory/territory_test.go
package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/geo"
)

func TestParseRadius(t *testing.T) {
	raw := []byte(`{"kind": "radius", "center": {"latitude": -23.5015, "longitude": -47.4526}, "radiusKm": 30}`)

	territory, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, KindRadius, territory.Kind)
	assert.Equal(t, 30.0, territory.RadiusKm)
	require.NotNil(t, territory.Center)
	assert.Equal(t, -23.5015, territory.Center.Latitude)
}

func TestParsePolygon(t *testing.T) {
	raw := []byte(`{"kind": "polygon", "vertices": [
		{"latitude": -23.5, "longitude": -46.7},
		{"latitude": -23.5, "longitude": -46.5},
		{"latitude": -23.7, "longitude": -46.6}
	]}`)

	territory, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, territory.Kind)
	assert.Len(t, territory.Vertices, 3)
}

func TestParseMultiArea(t *testing.T) {
	raw := []byte(`{"kind": "multiArea", "areas": [
		{"center": {"latitude": -23.5505, "longitude": -46.6333}, "radiusKm": 20, "label": "capital"},
		{"center": {"latitude": -23.5015, "longitude": -47.4526}, "radiusKm": 25, "label": "sorocaba"}
	]}`)

	territory, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, KindMultiArea, territory.Kind)
	require.Len(t, territory.Areas, 2)
	assert.Equal(t, "capital", territory.Areas[0].Label)
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown kind", `{"kind": "square", "center": {"latitude": 0, "longitude": 0}, "radiusKm": 1}`},
		{"missing kind", `{"center": {"latitude": 0, "longitude": 0}, "radiusKm": 1}`},
		{"radius without center", `{"kind": "radius", "radiusKm": 10}`},
		{"zero radius", `{"kind": "radius", "center": {"latitude": 0, "longitude": 0}, "radiusKm": 0}`},
		{"negative radius", `{"kind": "radius", "center": {"latitude": 0, "longitude": 0}, "radiusKm": -5}`},
		{"polygon with 2 vertices", `{"kind": "polygon", "vertices": [{"latitude": 0, "longitude": 0}, {"latitude": 1, "longitude": 1}]}`},
		{"multi-area without areas", `{"kind": "multiArea", "areas": []}`},
		{"latitude out of range", `{"kind": "radius", "center": {"latitude": 95, "longitude": 0}, "radiusKm": 10}`},
		{"not json", `radius 30km around downtown`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			territory, err := Parse([]byte(tt.raw))
			assert.Error(t, err)
			assert.Nil(t, territory)
		})
	}
}

func TestValidateMultiAreaBadArea(t *testing.T) {
	bad := &Territory{
		Kind: KindMultiArea,
		Areas: []Area{
			{Center: geo.GeoPoint{Latitude: -23.5, Longitude: -46.6}, RadiusKm: 10},
			{Center: geo.GeoPoint{Latitude: -23.5, Longitude: -46.6}, RadiusKm: 0},
		},
	}
	assert.Error(t, bad.Validate())
}
