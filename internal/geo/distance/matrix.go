// internal/geo/distance/matrix.go
package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	internalhttp "territory-workers/internal/common/http"
	"territory-workers/internal/common/logger"

	"territory-workers/internal/geo"
)

// MaxPairsPerRequest caps origin/destination pairs per distance-matrix call.
// Larger batches must be split by the caller with inter-batch pacing.
const MaxPairsPerRequest = 25

// RouteEstimate is a road-network distance/duration estimate for one pair.
type RouteEstimate struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// MatrixConfig configures the distance-matrix service client.
type MatrixConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MatrixClient calls an external distance-matrix service for real route
// distances. Results are informational only and never feed territory matching.
type MatrixClient struct {
	cfg        MatrixConfig
	httpClient *internalhttp.Client
	logger     logger.Logger
}

func NewMatrixClient(cfg MatrixConfig, log logger.Logger) *MatrixClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &MatrixClient{
		cfg:        cfg,
		httpClient: internalhttp.NewClient(cfg.Timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "distance-matrix"}),
	}
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// RealRouteKm asks the external service for the road distance between origin
// and destination. Any transport error, non-2xx response or non-OK element
// status degrades to a nil estimate; the caller falls back to haversine.
func (c *MatrixClient) RealRouteKm(ctx context.Context, origin, dest geo.GeoPoint, mode string) (*RouteEstimate, error) {
	if mode == "" {
		mode = "driving"
	}

	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	q.Set("destinations", fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude))
	q.Set("mode", mode)
	q.Set("key", c.cfg.APIKey)

	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		c.logger.Warn("distance matrix request failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("distance matrix non-2xx response", map[string]interface{}{"status": resp.StatusCode})
		return nil, nil
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("distance matrix decode failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	if body.Status != "OK" || len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		c.logger.Warn("distance matrix returned no usable rows", map[string]interface{}{"status": body.Status})
		return nil, nil
	}

	elem := body.Rows[0].Elements[0]
	if elem.Status != "OK" {
		c.logger.Warn("distance matrix element not OK", map[string]interface{}{"elementStatus": elem.Status})
		return nil, nil
	}

	return &RouteEstimate{
		DistanceKm:      round2(float64(elem.Distance.Value) / 1000.0),
		DurationMinutes: round2(float64(elem.Duration.Value) / 60.0),
	}, nil
}
