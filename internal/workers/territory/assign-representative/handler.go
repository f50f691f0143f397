// internal/workers/territory/assign-representative/handler.go
package assignrepresentative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonerrors "territory-workers/internal/common/errors"
	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assign-representative"
)

var (
	ErrAssignmentFailed = errors.New("ASSIGNMENT_FAILED")
)

// AssignEngine is the slice of the assignment engine this worker needs.
type AssignEngine interface {
	Assign(ctx context.Context, locationID string) (*models.AssignmentResult, error)
}

type Handler struct {
	config *Config
	engine AssignEngine
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine AssignEngine, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: engine,
		errs:   commonerrors.NewErrorHandler(scoped),
		logger: scoped,
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
		if errors.Is(err, ErrAssignmentFailed) {
			h.failJob(client, job, "ASSIGNMENT_FAILED", err.Error())
			return
		}
		// Store/engine infrastructure fault: let the retry table decide.
		h.errs.HandleJobError(ctx, client, job, commonerrors.NewQueryExecutionFailedError("assign", err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LocationID == "" {
		return nil, fmt.Errorf("%w: locationId is required", ErrAssignmentFailed)
	}

	result, err := h.engine.Assign(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		h.logger.Warn("assignment did not match", map[string]interface{}{
			"locationId": input.LocationID,
			"errorCode":  result.ErrorCode,
		})
	}

	return &Output{AssignmentResult: *result}, nil
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
