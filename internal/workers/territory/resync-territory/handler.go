// internal/workers/territory/resync-territory/handler.go
package resyncterritory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"territory-workers/internal/assignment"
	commonerrors "territory-workers/internal/common/errors"
	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "resync-territory"
)

var (
	ErrResyncFailed = errors.New("RESYNC_FAILED")
)

// ResyncEngine is the slice of the assignment engine this worker needs.
type ResyncEngine interface {
	Resync(ctx context.Context, repID string, opts assignment.ResyncOptions) (*models.ResyncSummary, error)
}

type Handler struct {
	config *Config
	engine ResyncEngine
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine ResyncEngine, log logger.Logger) *Handler {
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
		switch {
		case assignment.IsRepresentativeNotFound(err):
			h.failJob(client, job, "REPRESENTATIVE_NOT_FOUND", err.Error())
		case assignment.IsRepresentativeInactive(err):
			h.failJob(client, job, "REPRESENTATIVE_INACTIVE", err.Error())
		case errors.Is(err, ErrResyncFailed):
			h.failJob(client, job, "RESYNC_FAILED", err.Error())
		default:
			// Batch aborted on an infrastructure fault; retryable.
			h.errs.HandleJobError(ctx, client, job, commonerrors.NewResyncFailedError(input.RepresentativeID, err))
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RepresentativeID == "" {
		return nil, fmt.Errorf("%w: representativeId is required", ErrResyncFailed)
	}

	delay := h.config.DefaultDelay
	if input.DelayMs > 0 {
		delay = time.Duration(input.DelayMs) * time.Millisecond
	}

	summary, err := h.engine.Resync(ctx, input.RepresentativeID, assignment.ResyncOptions{
		Reassign: input.Reassign,
		Delay:    delay,
	})
	if err != nil {
		return nil, err
	}

	return &Output{Success: true, Summary: summary}, nil
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
