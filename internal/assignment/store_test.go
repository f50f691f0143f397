// internal/assignment/store_test.go
package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo"
	"territory-workers/internal/models"
)

func probeEnabled(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT to_regclass`).
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow("assignment_events"))
}

func probeDisabled(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT to_regclass`).
		WillReturnRows(sqlmock.NewRows([]string{"to_regclass"}).AddRow(nil))
}

func TestProbeAssignmentEvents(t *testing.T) {
	t.Run("table present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		probeEnabled(mock)
		store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))
		assert.True(t, store.EventsEnabled())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("table absent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		probeDisabled(mock)
		store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))
		assert.False(t, store.EventsEnabled())
	})

	t.Run("probe error disables events", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT to_regclass`).WillReturnError(assert.AnError)
		store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))
		assert.False(t, store.EventsEnabled())
	})
}

func TestListActiveRepresentatives(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	probeDisabled(mock)
	store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

	territoryJSON := []byte(`{"kind": "radius", "center": {"latitude": -23.5, "longitude": -47.45}, "radiusKm": 30}`)
	mock.ExpectQuery(`SELECT id, name, email, phone, territory, territory_active, active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "territory", "territory_active", "active"}).
			AddRow("rep-1", "Ana", "ana@example.com", "+5511999990000", territoryJSON, true, true).
			AddRow("rep-2", "Bruno", "bruno@example.com", nil, territoryJSON, true, true))

	reps, err := store.ListActiveRepresentatives(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Equal(t, "rep-1", reps[0].ID)
	assert.Equal(t, "+5511999990000", reps[0].Phone)
	assert.Empty(t, reps[1].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	probeDisabled(mock)
	store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

	columns := []string{"id", "name", "street", "neighborhood", "city", "state", "postal_code",
		"latitude", "longitude", "coordinate_source", "assigned_representative_id", "assigned_at"}

	t.Run("with coordinate", func(t *testing.T) {
		assignedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT id, name, street`).WithArgs("loc-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("loc-1", "Padaria Central", "Rua A", "Centro", "Sorocaba", "SP", "18030-310",
					-23.5015, -47.4526, "geocoder", "rep-1", assignedAt))

		loc, err := store.GetLocation(context.Background(), "loc-1")
		require.NoError(t, err)
		require.NotNil(t, loc)
		require.NotNil(t, loc.Coordinate)
		assert.Equal(t, -23.5015, loc.Coordinate.Latitude)
		assert.Equal(t, "rep-1", loc.AssignedRepresentativeID)
		require.NotNil(t, loc.AssignedAt)
		assert.Equal(t, assignedAt, *loc.AssignedAt)
	})

	t.Run("without coordinate", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, street`).WithArgs("loc-2").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("loc-2", "Nova Loja", "", "", "Campinas", "SP", "",
					nil, nil, nil, nil, nil))

		loc, err := store.GetLocation(context.Background(), "loc-2")
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Nil(t, loc.Coordinate)
		assert.Empty(t, loc.AssignedRepresentativeID)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, street`).WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(columns))

		loc, err := store.GetLocation(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, loc)
	})
}

func TestAssignRepresentativePersists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	probeDisabled(mock)
	store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

	assignedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE business_locations`).
		WithArgs("loc-1", "rep-1", assignedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.AssignRepresentative(context.Background(), "loc-1", "rep-1", assignedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocationCoordinate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	probeDisabled(mock)
	store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

	mock.ExpectExec(`UPDATE business_locations`).
		WithArgs("loc-1", -23.5015, -47.4526, "cep_fallback").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.UpdateLocationCoordinate(context.Background(), "loc-1",
		geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}, "cep_fallback")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAssignmentEvent(t *testing.T) {
	t.Run("enabled inserts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		probeEnabled(mock)
		store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

		mock.ExpectExec(`INSERT INTO assignment_events`).
			WithArgs(sqlmock.AnyArg(), "loc-1", "rep-1", 2.5, "radius", "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		store.RecordAssignmentEvent(context.Background(), &models.AssignmentResult{
			LocationID:       "loc-1",
			RepresentativeID: "rep-1",
			DistanceKm:       2.5,
			Method:           "radius",
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("disabled skips insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		probeDisabled(mock)
		store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

		store.RecordAssignmentEvent(context.Background(), &models.AssignmentResult{LocationID: "loc-1"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListUnassignedLocations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	probeDisabled(mock)
	store := NewPostgresStore(context.Background(), db, logger.NewTestLogger(t))

	mock.ExpectQuery(`SELECT id FROM business_locations`).WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("loc-1").AddRow("loc-2"))

	ids, err := store.ListUnassignedLocations(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"loc-1", "loc-2"}, ids)
}
