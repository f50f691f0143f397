// internal/geo/geocode/fallback.go
package geocode

import (
	"strconv"

	"territory-workers/internal/geo"
)

// StaticEstimator resolves a coordinate without the external service, first by
// CEP prefix range, then by normalized city name. Estimates are approximate
// city centers with a deterministic sub-degree offset so that distinct CEPs in
// the same city do not collapse onto one point.
type StaticEstimator struct{}

func NewStaticEstimator() *StaticEstimator {
	return &StaticEstimator{}
}

type cepRange struct {
	lo, hi int // inclusive 5-digit CEP prefixes
	center geo.GeoPoint
}

// Prefix ranges follow the Correios regional allocation. Coverage is the
// cities the sales operation actually serves; unknown prefixes fall through to
// the city table.
var cepRanges = []cepRange{
	{1000, 5999, geo.GeoPoint{Latitude: -23.5505, Longitude: -46.6333}},   // São Paulo
	{8000, 8499, geo.GeoPoint{Latitude: -23.5505, Longitude: -46.6333}},   // São Paulo (east zone)
	{11000, 11099, geo.GeoPoint{Latitude: -23.9608, Longitude: -46.3336}}, // Santos
	{12200, 12249, geo.GeoPoint{Latitude: -23.2237, Longitude: -45.9009}}, // São José dos Campos
	{13000, 13139, geo.GeoPoint{Latitude: -22.9099, Longitude: -47.0626}}, // Campinas
	{14000, 14109, geo.GeoPoint{Latitude: -21.1775, Longitude: -47.8103}}, // Ribeirão Preto
	{18000, 18109, geo.GeoPoint{Latitude: -23.5015, Longitude: -47.4526}}, // Sorocaba
	{20000, 23799, geo.GeoPoint{Latitude: -22.9068, Longitude: -43.1729}}, // Rio de Janeiro
	{30000, 31999, geo.GeoPoint{Latitude: -19.9167, Longitude: -43.9345}}, // Belo Horizonte
	{40000, 42599, geo.GeoPoint{Latitude: -12.9777, Longitude: -38.5016}}, // Salvador
	{50000, 52999, geo.GeoPoint{Latitude: -8.0476, Longitude: -34.8770}},  // Recife
	{60000, 61599, geo.GeoPoint{Latitude: -3.7319, Longitude: -38.5267}},  // Fortaleza
	{70000, 70999, geo.GeoPoint{Latitude: -15.7939, Longitude: -47.8828}}, // Brasília
	{74000, 74899, geo.GeoPoint{Latitude: -16.6869, Longitude: -49.2648}}, // Goiânia
	{80000, 82999, geo.GeoPoint{Latitude: -25.4284, Longitude: -49.2733}}, // Curitiba
	{88000, 88099, geo.GeoPoint{Latitude: -27.5954, Longitude: -48.5480}}, // Florianópolis
	{90000, 91999, geo.GeoPoint{Latitude: -30.0346, Longitude: -51.2177}}, // Porto Alegre
}

// Keys are geo.Normalize output.
var cityCenters = map[string]geo.GeoPoint{
	"sao paulo":            {Latitude: -23.5505, Longitude: -46.6333},
	"santos":               {Latitude: -23.9608, Longitude: -46.3336},
	"sao jose dos campos":  {Latitude: -23.2237, Longitude: -45.9009},
	"campinas":             {Latitude: -22.9099, Longitude: -47.0626},
	"ribeirao preto":       {Latitude: -21.1775, Longitude: -47.8103},
	"sorocaba":             {Latitude: -23.5015, Longitude: -47.4526},
	"rio de janeiro":       {Latitude: -22.9068, Longitude: -43.1729},
	"belo horizonte":       {Latitude: -19.9167, Longitude: -43.9345},
	"salvador":             {Latitude: -12.9777, Longitude: -38.5016},
	"recife":               {Latitude: -8.0476, Longitude: -34.8770},
	"fortaleza":            {Latitude: -3.7319, Longitude: -38.5267},
	"brasilia":             {Latitude: -15.7939, Longitude: -47.8828},
	"goiania":              {Latitude: -16.6869, Longitude: -49.2648},
	"curitiba":             {Latitude: -25.4284, Longitude: -49.2733},
	"florianopolis":        {Latitude: -27.5954, Longitude: -48.5480},
	"porto alegre":         {Latitude: -30.0346, Longitude: -51.2177},
}

// Estimate resolves addr from the static tables: CEP prefix range first, then
// normalized city name. Returns nil when neither table matches.
func (e *StaticEstimator) Estimate(addr geo.Address) *geo.GeoPoint {
	if p := e.FromCEP(addr.PostalCode); p != nil {
		return p
	}
	return e.FromCity(addr.City)
}

// FromCEP maps a CEP to an approximate coordinate by its 5-digit prefix. The
// trailing suffix digits produce a deterministic offset under half a degree,
// so the same CEP always resolves to the same point.
func (e *StaticEstimator) FromCEP(cep string) *geo.GeoPoint {
	digits := geo.DigitsOnly(cep)
	if len(digits) < 5 {
		return nil
	}

	prefix, err := strconv.Atoi(digits[:5])
	if err != nil {
		return nil
	}

	for _, r := range cepRanges {
		if prefix >= r.lo && prefix <= r.hi {
			latOff, lngOff := suffixOffset(digits[5:])
			return &geo.GeoPoint{
				Latitude:  r.center.Latitude + latOff,
				Longitude: r.center.Longitude + lngOff,
			}
		}
	}
	return nil
}

// FromCity maps a city name to its approximate center through the normalized
// lookup table.
func (e *StaticEstimator) FromCity(city string) *geo.GeoPoint {
	center, ok := cityCenters[geo.Normalize(city)]
	if !ok {
		return nil
	}
	p := center
	return &p
}

// suffixOffset derives a stable offset in (-0.02, 0.02) degrees per axis from
// the CEP suffix digits. Coprime moduli keep the two axes from moving in
// lockstep.
func suffixOffset(suffix string) (lat, lng float64) {
	n, err := strconv.Atoi(suffix)
	if err != nil || suffix == "" {
		return 0, 0
	}
	lat = (float64(n%97)/97.0 - 0.5) * 0.04
	lng = (float64(n%89)/89.0 - 0.5) * 0.04
	return lat, lng
}
