// internal/territory/matcher.go
package territory

import (
	"territory-workers/internal/geo"
	"territory-workers/internal/geo/distance"
)

// Match method names recorded on assignment results. These are part of the
// process-variable and search-document contract and differ from the stored
// territory kind spelling ("multiArea" in JSONB, "multi-area" on the wire).
const (
	MethodRadius    = "radius"
	MethodPolygon   = "polygon"
	MethodMultiArea = "multi-area"
)

// MatchResult reports whether a point falls inside a territory and the
// distance used to rank the candidate. For polygons the distance is measured
// to the vertex centroid and is meaningful for ranking only, not as a
// road or boundary distance.
type MatchResult struct {
	Inside     bool
	DistanceKm float64
	Method     string
	Label      string
	// Reference is the anchor the distance was measured from: the radius
	// center, the polygon centroid, or the matched (or nearest) area center.
	Reference geo.GeoPoint
}

// Match evaluates a point against a territory. The territory is assumed to
// have passed Validate; callers holding unvalidated definitions must skip them
// instead of matching.
func Match(t *Territory, p geo.GeoPoint) MatchResult {
	switch t.Kind {
	case KindRadius:
		return matchRadius(t, p)
	case KindPolygon:
		return matchPolygon(t, p)
	case KindMultiArea:
		return matchMultiArea(t, p)
	}
	return MatchResult{}
}

func matchRadius(t *Territory, p geo.GeoPoint) MatchResult {
	d := distance.HaversineKm(*t.Center, p)
	return MatchResult{
		Inside:     d <= t.RadiusKm,
		DistanceKm: d,
		Method:     MethodRadius,
		Reference:  *t.Center,
	}
}

func matchPolygon(t *Territory, p geo.GeoPoint) MatchResult {
	centroid := Centroid(t.Vertices)
	return MatchResult{
		Inside:     pointInPolygon(t.Vertices, p),
		DistanceKm: distance.HaversineKm(centroid, p),
		Method:     MethodPolygon,
		Reference:  centroid,
	}
}

// matchMultiArea checks areas in declaration order and the first containing
// area wins, even when a later area's center is closer. When no area
// contains the point, the nearest area supplies the distance and label so the
// caller can still report how far off the point was.
func matchMultiArea(t *Territory, p geo.GeoPoint) MatchResult {
	best := MatchResult{Method: MethodMultiArea, DistanceKm: -1}
	for _, area := range t.Areas {
		d := distance.HaversineKm(area.Center, p)
		if d <= area.RadiusKm {
			return MatchResult{
				Inside:     true,
				DistanceKm: d,
				Method:     MethodMultiArea,
				Label:      area.Label,
				Reference:  area.Center,
			}
		}
		if best.DistanceKm < 0 || d < best.DistanceKm {
			best.DistanceKm = d
			best.Label = area.Label
			best.Reference = area.Center
		}
	}
	return best
}

// pointInPolygon runs a standard ray cast over the vertex list treated as a
// closed ring. Points exactly on an edge may land on either side; territory
// boundaries are approximate enough that this does not matter in practice.
func pointInPolygon(vertices []geo.GeoPoint, p geo.GeoPoint) bool {
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Latitude > p.Latitude) != (vj.Latitude > p.Latitude) {
			x := (vj.Longitude-vi.Longitude)*(p.Latitude-vi.Latitude)/(vj.Latitude-vi.Latitude) + vi.Longitude
			if p.Longitude < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Centroid is the arithmetic mean of the vertices. It is not the geometric
// center of irregular polygons, which is acceptable for ranking.
func Centroid(vertices []geo.GeoPoint) geo.GeoPoint {
	var lat, lng float64
	for _, v := range vertices {
		lat += v.Latitude
		lng += v.Longitude
	}
	n := float64(len(vertices))
	return geo.GeoPoint{Latitude: lat / n, Longitude: lng / n}
}
