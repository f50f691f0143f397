// internal/workers/territory/validate-territory/handler.go
package validateterritory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/models"
	"territory-workers/internal/territory"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-territory"
)

var (
	ErrValidationFailed = errors.New("TERRITORY_VALIDATION_FAILED")
)

// RepresentativeReader loads a stored representative for inline-less inputs.
type RepresentativeReader interface {
	GetRepresentative(ctx context.Context, id string) (*models.Representative, error)
}

type Handler struct {
	config *Config
	store  RepresentativeReader
	logger logger.Logger
}

func NewHandler(config *Config, store RepresentativeReader, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
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
		h.failJob(client, job, "TERRITORY_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute validates a definition without ever throwing for a merely invalid
// territory: the verdict goes back as output so the process can route it to a
// correction step.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	raw := []byte(input.Territory)
	if len(raw) == 0 {
		if input.RepresentativeID == "" {
			return nil, fmt.Errorf("%w: territory or representativeId is required", ErrValidationFailed)
		}
		rep, err := h.store.GetRepresentative(ctx, input.RepresentativeID)
		if err != nil {
			return nil, err
		}
		if rep == nil {
			return nil, fmt.Errorf("%w: representative %s not found", ErrValidationFailed, input.RepresentativeID)
		}
		raw = rep.Territory
	}

	parsed, err := territory.Parse(raw)
	if err != nil {
		return &Output{Valid: false, Reason: err.Error()}, nil
	}

	return &Output{Valid: true, Kind: string(parsed.Kind)}, nil
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
