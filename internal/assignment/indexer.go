// internal/assignment/indexer.go
package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/models"
)

const assignmentsIndex = "assignments"

// Indexer mirrors successful assignments into Elasticsearch for ad-hoc
// reporting. Indexing is strictly best-effort: the source of truth stays in
// Postgres and any indexing error is logged and dropped.
type Indexer struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "assignment-indexer"}),
	}
}

type assignmentDocument struct {
	LocationID       string    `json:"locationId"`
	RepresentativeID string    `json:"representativeId"`
	DistanceKm       float64   `json:"distanceKm"`
	Method           string    `json:"method"`
	Label            string    `json:"label,omitempty"`
	CoordinateSource string    `json:"coordinateSource,omitempty"`
	AssignedAt       time.Time `json:"assignedAt"`
}

// Index writes one assignment document keyed by location id.
func (i *Indexer) Index(ctx context.Context, result *models.AssignmentResult) {
	if i == nil || i.client == nil {
		return
	}

	doc := assignmentDocument{
		LocationID:       result.LocationID,
		RepresentativeID: result.RepresentativeID,
		DistanceKm:       result.DistanceKm,
		Method:           result.Method,
		Label:            result.Label,
		CoordinateSource: result.CoordinateSource,
		AssignedAt:       time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return
	}

	res, err := i.client.Index(
		assignmentsIndex,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(result.LocationID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		i.logger.Warn("assignment indexing failed", map[string]interface{}{
			"locationId": result.LocationID,
			"error":      err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Warn("assignment indexing rejected", map[string]interface{}{
			"locationId": result.LocationID,
			"status":     res.Status(),
		})
	}
}
