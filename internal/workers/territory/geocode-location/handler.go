// internal/workers/territory/geocode-location/handler.go
package geocodelocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "geocode-location"
)

var (
	ErrGeocodeFailed = errors.New("GEOCODE_FAILED")
)

// LocateEngine is the slice of the assignment engine this worker needs.
type LocateEngine interface {
	Locate(ctx context.Context, locationID string) (*models.AssignmentResult, error)
}

type Handler struct {
	config *Config
	engine LocateEngine
	logger logger.Logger
}

func NewHandler(config *Config, engine LocateEngine, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: engine,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "GEOCODE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LocationID == "" {
		return nil, fmt.Errorf("%w: locationId is required", ErrGeocodeFailed)
	}

	result, err := h.engine.Locate(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	return &Output{
		Success:          result.Success,
		LocationID:       result.LocationID,
		Coordinate:       result.Coordinate,
		CoordinateSource: result.CoordinateSource,
		ErrorCode:        result.ErrorCode,
		Error:            result.Error,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
