// internal/geo/geocode/client.go
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	internalhttp "territory-workers/internal/common/http"
	"territory-workers/internal/common/logger"

	"territory-workers/internal/geo"
)

// Config configures the external geocoding service client.
type Config struct {
	BaseURL string
	APIKey  string
	Region  string // country hint, e.g. "br"
	Timeout time.Duration
}

// Client resolves free-form addresses to coordinates through an external
// geocoding service. Failures degrade to a nil point; the client never
// returns an error that should abort the caller's transaction.
type Client struct {
	cfg        Config
	httpClient *internalhttp.Client
	logger     logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Region == "" {
		cfg.Region = "br"
	}
	return &Client{
		cfg:        cfg,
		httpClient: internalhttp.NewClient(cfg.Timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "geocoder"}),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves addr to a coordinate. A nil point with nil error means the
// address could not be resolved; the caller decides whether to fall back to
// the static estimator.
func (c *Client) Geocode(ctx context.Context, addr geo.Address) (*geo.GeoPoint, error) {
	query := addr.QueryString()
	if query == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("address", query)
	q.Set("region", c.cfg.Region)
	q.Set("key", c.cfg.APIKey)

	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		c.logger.Warn("geocoding request failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("geocoding service non-2xx response", map[string]interface{}{
			"query":  query,
			"status": resp.StatusCode,
		})
		return nil, nil
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("geocoding response decode failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		c.logger.Warn("geocoding returned no result", map[string]interface{}{
			"query":  query,
			"status": body.Status,
		})
		return nil, nil
	}

	loc := body.Results[0].Geometry.Location
	point := geo.GeoPoint{Latitude: loc.Lat, Longitude: loc.Lng}
	if !point.Valid() {
		c.logger.Warn("geocoding returned out-of-range coordinate", map[string]interface{}{
			"lat": loc.Lat,
			"lng": loc.Lng,
		})
		return nil, nil
	}

	return &point, nil
}
