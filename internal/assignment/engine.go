// internal/assignment/engine.go
package assignment

import (
	"context"
	"sort"
	"time"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/geo"
	"territory-workers/internal/geo/distance"
	"territory-workers/internal/geo/geocode"
	"territory-workers/internal/models"
	"territory-workers/internal/territory"
)

// Store is the persistence surface the engine needs. *PostgresStore satisfies
// it; tests substitute fakes.
type Store interface {
	ListActiveRepresentatives(ctx context.Context) ([]*models.Representative, error)
	GetRepresentative(ctx context.Context, id string) (*models.Representative, error)
	GetLocation(ctx context.Context, id string) (*models.BusinessLocation, error)
	UpdateLocationCoordinate(ctx context.Context, locationID string, point geo.GeoPoint, source string) error
	AssignRepresentative(ctx context.Context, locationID, repID string, assignedAt time.Time) error
	ListUnassignedLocations(ctx context.Context, limit int) ([]string, error)
	ListLocationsAssignedTo(ctx context.Context, repID string) ([]string, error)
	RecordAssignmentEvent(ctx context.Context, result *models.AssignmentResult)
}

// Geocoder resolves an address via the external service. A nil point with nil
// error is a resolvable miss, not a failure.
type Geocoder interface {
	Geocode(ctx context.Context, addr geo.Address) (*geo.GeoPoint, error)
}

// Cache is the coordinate cache surface. *CoordinateCache satisfies it.
type Cache interface {
	Get(ctx context.Context, addr geo.Address) *CachedCoordinate
	Set(ctx context.Context, addr geo.Address, point geo.GeoPoint, source string)
}

// Router estimates real route distance between two points.
// *distance.MatrixClient satisfies it.
type Router interface {
	RealRouteKm(ctx context.Context, origin, dest geo.GeoPoint, mode string) (*distance.RouteEstimate, error)
}

// Options tunes engine behavior.
type Options struct {
	MaxAlternates   int
	ResyncBatchSize int
}

// Engine runs the assignment flow: resolve a coordinate, match territories,
// rank candidates, persist the winner. All external collaborators are
// injected; the engine holds no globals.
type Engine struct {
	store     Store
	geocoder  Geocoder
	estimator *geocode.StaticEstimator
	cache     Cache
	indexer   *Indexer
	router    Router
	routeMode string
	logger    logger.Logger
	opts      Options
}

func NewEngine(store Store, geocoder Geocoder, cache Cache, indexer *Indexer, log logger.Logger, opts Options) *Engine {
	if opts.MaxAlternates == 0 {
		opts.MaxAlternates = 3
	}
	if opts.ResyncBatchSize == 0 {
		opts.ResyncBatchSize = 100
	}
	return &Engine{
		store:     store,
		geocoder:  geocoder,
		estimator: geocode.NewStaticEstimator(),
		cache:     cache,
		indexer:   indexer,
		logger:    log.WithFields(map[string]interface{}{"component": "assignment-engine"}),
		opts:      opts,
	}
}

// WithRouter enables route enrichment through a distance-matrix service.
// Route lookups are best-effort; failures never affect the assignment.
func (e *Engine) WithRouter(router Router, mode string) *Engine {
	if mode == "" {
		mode = "driving"
	}
	e.router = router
	e.routeMode = mode
	return e
}

// Assign resolves the location's coordinate, matches it against every
// eligible representative's territory and persists the closest match. On any
// failure it returns a structured result with nothing persisted.
func (e *Engine) Assign(ctx context.Context, locationID string) (*models.AssignmentResult, error) {
	loc, err := e.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return failure(locationID, "LOCATION_NOT_FOUND", "business location not found"), nil
	}

	point, source, res := e.resolveCoordinate(ctx, loc)
	if res != nil {
		metrics.AssignmentsFailed.WithLabelValues(res.ErrorCode).Inc()
		return res, nil
	}

	if loc.Coordinate == nil || *loc.Coordinate != *point {
		if err := e.store.UpdateLocationCoordinate(ctx, loc.ID, *point, source); err != nil {
			e.logger.Warn("coordinate persistence failed", map[string]interface{}{
				"locationId": loc.ID,
				"error":      err.Error(),
			})
		}
	}

	candidates, err := e.matchCandidates(ctx, *point)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		metrics.AssignmentsFailed.WithLabelValues("NO_COVERAGE").Inc()
		res := failure(locationID, "NO_COVERAGE", "outside all coverage areas")
		res.Coordinate = point
		res.CoordinateSource = source
		return res, nil
	}

	rank(candidates)
	winner := candidates[0]

	assignedAt := time.Now().UTC()
	if err := e.store.AssignRepresentative(ctx, loc.ID, winner.RepresentativeID, assignedAt); err != nil {
		return nil, err
	}

	result := &models.AssignmentResult{
		Success:          true,
		LocationID:       loc.ID,
		RepresentativeID: winner.RepresentativeID,
		DistanceKm:       winner.DistanceKm,
		Method:           winner.Method,
		Label:            winner.Label,
		Coordinate:       point,
		CoordinateSource: source,
		Alternates:       alternates(candidates, e.opts.MaxAlternates),
	}
	e.enrichRoute(ctx, winner, *point, result)

	e.store.RecordAssignmentEvent(ctx, result)
	e.indexer.Index(ctx, result)
	metrics.AssignmentsTotal.WithLabelValues(winner.Method).Inc()

	e.logger.Info("location assigned", map[string]interface{}{
		"locationId":       loc.ID,
		"representativeId": winner.RepresentativeID,
		"distanceKm":       winner.DistanceKm,
		"method":           winner.Method,
	})

	return result, nil
}

// Locate resolves and persists a location's coordinate without assigning a
// representative. Used by the standalone geocoding step.
func (e *Engine) Locate(ctx context.Context, locationID string) (*models.AssignmentResult, error) {
	loc, err := e.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return failure(locationID, "LOCATION_NOT_FOUND", "business location not found"), nil
	}

	point, source, res := e.resolveCoordinate(ctx, loc)
	if res != nil {
		return res, nil
	}

	if loc.Coordinate == nil || *loc.Coordinate != *point {
		if err := e.store.UpdateLocationCoordinate(ctx, loc.ID, *point, source); err != nil {
			e.logger.Warn("coordinate persistence failed", map[string]interface{}{
				"locationId": loc.ID,
				"error":      err.Error(),
			})
		}
	}

	return &models.AssignmentResult{
		Success:          true,
		LocationID:       loc.ID,
		Coordinate:       point,
		CoordinateSource: source,
	}, nil
}

// resolveCoordinate finds a coordinate for the location: stored value, cache,
// external geocoder, then the static CEP/city estimator. A non-nil result
// means resolution failed and carries the error code.
func (e *Engine) resolveCoordinate(ctx context.Context, loc *models.BusinessLocation) (*geo.GeoPoint, string, *models.AssignmentResult) {
	if loc.Coordinate != nil && loc.Coordinate.Valid() {
		return loc.Coordinate, loc.CoordinateSource, nil
	}

	if !loc.Address.HasGeocodableData() {
		return nil, "", failure(loc.ID, "NO_ADDRESS_DATA", "location has no city or postal code to resolve")
	}

	if e.cache != nil {
		if cached := e.cache.Get(ctx, loc.Address); cached != nil {
			metrics.GeocodeRequests.WithLabelValues(models.CoordinateSourceCached).Inc()
			return &cached.Point, cached.Source, nil
		}
	}

	if e.geocoder != nil {
		point, err := e.geocoder.Geocode(ctx, loc.Address)
		if err != nil {
			e.logger.Warn("geocoder error", map[string]interface{}{
				"locationId": loc.ID,
				"error":      err.Error(),
			})
		}
		if point != nil {
			metrics.GeocodeRequests.WithLabelValues(models.CoordinateSourceGeocoder).Inc()
			e.cacheCoordinate(ctx, loc.Address, *point, models.CoordinateSourceGeocoder)
			return point, models.CoordinateSourceGeocoder, nil
		}
	}

	if point := e.estimator.FromCEP(loc.Address.PostalCode); point != nil {
		metrics.GeocodeRequests.WithLabelValues(models.CoordinateSourceCEP).Inc()
		e.cacheCoordinate(ctx, loc.Address, *point, models.CoordinateSourceCEP)
		return point, models.CoordinateSourceCEP, nil
	}
	if point := e.estimator.FromCity(loc.Address.City); point != nil {
		metrics.GeocodeRequests.WithLabelValues(models.CoordinateSourceCity).Inc()
		e.cacheCoordinate(ctx, loc.Address, *point, models.CoordinateSourceCity)
		return point, models.CoordinateSourceCity, nil
	}

	return nil, "", failure(loc.ID, "GEOCODING_UNAVAILABLE", "could not resolve a coordinate for the address")
}

func (e *Engine) cacheCoordinate(ctx context.Context, addr geo.Address, point geo.GeoPoint, source string) {
	if e.cache != nil {
		e.cache.Set(ctx, addr, point, source)
	}
}

// enrichRoute asks the distance-matrix service for the road distance between
// the winning territory's anchor and the location. A nil estimate leaves the
// result untouched.
func (e *Engine) enrichRoute(ctx context.Context, winner models.Candidate, point geo.GeoPoint, result *models.AssignmentResult) {
	if e.router == nil {
		return
	}
	est, err := e.router.RealRouteKm(ctx, winner.Reference, point, e.routeMode)
	if err != nil {
		e.logger.Warn("route estimate failed", map[string]interface{}{
			"locationId": result.LocationID,
			"error":      err.Error(),
		})
		return
	}
	if est == nil {
		return
	}
	result.RouteKm = &est.DistanceKm
	result.RouteDurationMinutes = &est.DurationMinutes
}

// matchCandidates evaluates every eligible representative's territory.
// Invalid territory definitions are skipped with a warning; one bad
// definition never aborts the whole match.
func (e *Engine) matchCandidates(ctx context.Context, point geo.GeoPoint) ([]models.Candidate, error) {
	reps, err := e.store.ListActiveRepresentatives(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, rep := range reps {
		parsed, err := territory.Parse(rep.Territory)
		if err != nil {
			metrics.TerritoriesSkipped.Inc()
			e.logger.Warn("skipping representative with invalid territory", map[string]interface{}{
				"representativeId": rep.ID,
				"error":            err.Error(),
			})
			continue
		}

		match := territory.Match(parsed, point)
		if !match.Inside {
			continue
		}
		candidates = append(candidates, models.Candidate{
			RepresentativeID: rep.ID,
			Name:             rep.Name,
			DistanceKm:       match.DistanceKm,
			Method:           match.Method,
			Label:            match.Label,
			Reference:        match.Reference,
		})
	}
	return candidates, nil
}

// rank orders candidates by ascending distance, ties broken by representative
// id so the result is deterministic across runs.
func rank(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].RepresentativeID < candidates[j].RepresentativeID
	})
}

func alternates(candidates []models.Candidate, max int) []models.Candidate {
	if len(candidates) <= 1 {
		return nil
	}
	rest := candidates[1:]
	if len(rest) > max {
		rest = rest[:max]
	}
	out := make([]models.Candidate, len(rest))
	copy(out, rest)
	return out
}

func failure(locationID, code, msg string) *models.AssignmentResult {
	return &models.AssignmentResult{
		Success:    false,
		LocationID: locationID,
		ErrorCode:  code,
		Error:      msg,
	}
}

// ResyncOptions controls a territory re-sync run.
type ResyncOptions struct {
	// Reassign re-evaluates locations already held by the representative;
	// without it only unassigned locations are considered.
	Reassign bool
	// Delay paces assignment attempts to avoid hammering the geocoder.
	Delay time.Duration
}

// Resync re-evaluates locations after a representative's territory changed.
// Unassigned locations inside the new territory are assigned; with Reassign,
// the representative's current locations are re-run through the full flow and
// may move to a closer colleague.
func (e *Engine) Resync(ctx context.Context, repID string, opts ResyncOptions) (*models.ResyncSummary, error) {
	rep, err := e.store.GetRepresentative(ctx, repID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, &notFoundError{repID: repID}
	}
	// Deactivation never unwinds held assignments, so a resync against an
	// inactive representative must not run: with Reassign it would hand
	// their locations to active colleagues.
	if !rep.Active || !rep.TerritoryActive {
		return nil, &inactiveError{repID: repID}
	}

	ids, err := e.store.ListUnassignedLocations(ctx, e.opts.ResyncBatchSize)
	if err != nil {
		return nil, err
	}
	if opts.Reassign {
		assigned, err := e.store.ListLocationsAssignedTo(ctx, repID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, assigned...)
	}

	summary := &models.ResyncSummary{RepresentativeID: repID, Scanned: len(ids)}
	for i, id := range ids {
		if i > 0 && opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}

		result, err := e.Assign(ctx, id)
		if err != nil {
			summary.Failed++
			e.logger.Warn("resync assignment failed", map[string]interface{}{
				"locationId": id,
				"error":      err.Error(),
			})
			continue
		}
		switch {
		case !result.Success:
			summary.Skipped++
		case result.RepresentativeID == repID:
			summary.Assigned++
		default:
			summary.Reassigned++
		}
	}

	e.logger.Info("territory resync complete", map[string]interface{}{
		"representativeId": repID,
		"scanned":          summary.Scanned,
		"assigned":         summary.Assigned,
		"reassigned":       summary.Reassigned,
		"skipped":          summary.Skipped,
		"failed":           summary.Failed,
	})
	return summary, nil
}

type notFoundError struct {
	repID string
}

func (e *notFoundError) Error() string {
	return "representative not found: " + e.repID
}

// IsRepresentativeNotFound reports whether err came from a resync against a
// missing representative.
func IsRepresentativeNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

type inactiveError struct {
	repID string
}

func (e *inactiveError) Error() string {
	return "representative inactive: " + e.repID
}

// IsRepresentativeInactive reports whether err came from a resync against a
// deactivated representative or territory.
func IsRepresentativeInactive(err error) bool {
	_, ok := err.(*inactiveError)
	return ok
}
