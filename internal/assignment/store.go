// internal/assignment/store.go
package assignment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo"
	"territory-workers/internal/models"
)

// PostgresStore persists representatives, locations and assignments.
type PostgresStore struct {
	db            *sql.DB
	logger        logger.Logger
	eventsEnabled bool
}

// NewPostgresStore builds the store and probes once for the optional
// assignment_events table. Deployments without the table simply skip event
// recording; the probe is never repeated per operation.
func NewPostgresStore(ctx context.Context, db *sql.DB, log logger.Logger) *PostgresStore {
	s := &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "assignment-store"}),
	}
	s.eventsEnabled = s.probeAssignmentEvents(ctx)
	return s
}

func (s *PostgresStore) probeAssignmentEvents(ctx context.Context) bool {
	var regclass sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT to_regclass('public.assignment_events')`).Scan(&regclass)
	if err != nil {
		s.logger.Warn("assignment_events probe failed, event recording disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	enabled := regclass.Valid && regclass.String != ""
	s.logger.Info("assignment_events capability probed", map[string]interface{}{"enabled": enabled})
	return enabled
}

// EventsEnabled reports whether assignment events are recorded.
func (s *PostgresStore) EventsEnabled() bool {
	return s.eventsEnabled
}

// ListActiveRepresentatives returns all representatives eligible for matching
// before territory validation: active, with an active territory definition.
func (s *PostgresStore) ListActiveRepresentatives(ctx context.Context) ([]*models.Representative, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, territory, territory_active, active
		FROM representatives
		WHERE active = true AND territory_active = true
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list representatives: %w", err)
	}
	defer rows.Close()

	var reps []*models.Representative
	for rows.Next() {
		var rep models.Representative
		var phone sql.NullString
		if err := rows.Scan(&rep.ID, &rep.Name, &rep.Email, &phone, &rep.Territory, &rep.TerritoryActive, &rep.Active); err != nil {
			return nil, fmt.Errorf("scan representative: %w", err)
		}
		rep.Phone = phone.String
		reps = append(reps, &rep)
	}
	return reps, rows.Err()
}

// GetRepresentative fetches one representative by id. Returns nil when absent.
func (s *PostgresStore) GetRepresentative(ctx context.Context, id string) (*models.Representative, error) {
	var rep models.Representative
	var phone sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, territory, territory_active, active
		FROM representatives
		WHERE id = $1`, id).
		Scan(&rep.ID, &rep.Name, &rep.Email, &phone, &rep.Territory, &rep.TerritoryActive, &rep.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get representative: %w", err)
	}
	rep.Phone = phone.String
	return &rep, nil
}

// GetLocation fetches one business location by id. Returns nil when absent.
func (s *PostgresStore) GetLocation(ctx context.Context, id string) (*models.BusinessLocation, error) {
	var loc models.BusinessLocation
	var lat, lng sql.NullFloat64
	var source, assignedTo sql.NullString
	var assignedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, street, neighborhood, city, state, postal_code,
		       latitude, longitude, coordinate_source, assigned_representative_id, assigned_at
		FROM business_locations
		WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name,
			&loc.Address.Street, &loc.Address.Neighborhood, &loc.Address.City, &loc.Address.State, &loc.Address.PostalCode,
			&lat, &lng, &source, &assignedTo, &assignedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}

	if lat.Valid && lng.Valid {
		loc.Coordinate = &geo.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	loc.CoordinateSource = source.String
	loc.AssignedRepresentativeID = assignedTo.String
	if assignedAt.Valid {
		t := assignedAt.Time
		loc.AssignedAt = &t
	}
	return &loc, nil
}

// UpdateLocationCoordinate stores a resolved coordinate and its source.
func (s *PostgresStore) UpdateLocationCoordinate(ctx context.Context, locationID string, point geo.GeoPoint, source string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE business_locations
		SET latitude = $2, longitude = $3, coordinate_source = $4, updated_at = NOW()
		WHERE id = $1`,
		locationID, point.Latitude, point.Longitude, source)
	if err != nil {
		return fmt.Errorf("update location coordinate: %w", err)
	}
	return nil
}

// AssignRepresentative persists the winning representative on the location.
func (s *PostgresStore) AssignRepresentative(ctx context.Context, locationID, repID string, assignedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE business_locations
		SET assigned_representative_id = $2, assigned_at = $3, updated_at = NOW()
		WHERE id = $1`,
		locationID, repID, assignedAt)
	if err != nil {
		return fmt.Errorf("assign representative: %w", err)
	}
	return nil
}

// ListUnassignedLocations returns locations without a representative, capped
// at limit for batch processing.
func (s *PostgresStore) ListUnassignedLocations(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM business_locations
		WHERE assigned_representative_id IS NULL OR assigned_representative_id = ''
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unassigned locations: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// ListLocationsAssignedTo returns the ids of locations currently held by the
// given representative.
func (s *PostgresStore) ListLocationsAssignedTo(ctx context.Context, repID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM business_locations
		WHERE assigned_representative_id = $1
		ORDER BY id`, repID)
	if err != nil {
		return nil, fmt.Errorf("list assigned locations: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan location id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordAssignmentEvent appends an audit row when the capability is present.
// Failures are logged and swallowed; event recording never blocks assignment.
func (s *PostgresStore) RecordAssignmentEvent(ctx context.Context, result *models.AssignmentResult) {
	if !s.eventsEnabled {
		return
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignment_events (id, location_id, representative_id, distance_km, method, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		uuid.NewString(), result.LocationID, result.RepresentativeID, result.DistanceKm, result.Method, result.Label)
	if err != nil {
		s.logger.Warn("assignment event insert failed", map[string]interface{}{
			"locationId": result.LocationID,
			"error":      err.Error(),
		})
	}
}
