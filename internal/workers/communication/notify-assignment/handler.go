// internal/workers/communication/notify-assignment/handler.go
package notifyassignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"territory-workers/internal/common/logger"
	"territory-workers/internal/common/metrics"
	"territory-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-assignment"
)

var (
	ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// EmailSender matches the SES wrapper surface.
type EmailSender interface {
	SendPlainText(ctx context.Context, from, to, subject, body string) error
}

// SMSSender matches the SNS wrapper surface.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
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
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RepresentativeEmail == "" && input.RepresentativePhone == "" {
		return nil, fmt.Errorf("%w: no email or phone to notify", ErrNotificationFailed)
	}
	if input.RepresentativeEmail != "" && !validation.ValidateEmail(input.RepresentativeEmail) {
		return nil, fmt.Errorf("%w: malformed email address", ErrNotificationFailed)
	}
	if input.RepresentativePhone != "" && !validation.ValidatePhone(input.RepresentativePhone) {
		h.logger.Warn("malformed phone number, sms skipped", map[string]interface{}{
			"representativeId": input.RepresentativeID,
		})
		input.RepresentativePhone = ""
	}

	output := &Output{}

	if h.config.EmailEnabled && h.email != nil && input.RepresentativeEmail != "" {
		if err := h.sendEmail(ctx, input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
		}
		output.EmailSent = true
	}

	if h.config.SMSEnabled && h.sms != nil && input.RepresentativePhone != "" {
		if err := h.sendSMS(ctx, input); err != nil {
			// SMS is a secondary channel; a failure after a successful
			// email downgrades to a warning.
			if !output.EmailSent {
				return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
			}
			h.logger.Warn("sms delivery failed after successful email", map[string]interface{}{
				"representativeId": input.RepresentativeID,
				"error":            err.Error(),
			})
		} else {
			output.SMSSent = true
		}
	}

	output.Success = output.EmailSent || output.SMSSent
	if !output.Success {
		output.Message = "no enabled channel matched the representative's contact data"
	}

	h.logger.Info("assignment notification processed", map[string]interface{}{
		"representativeId": input.RepresentativeID,
		"locationId":       input.LocationID,
		"emailSent":        output.EmailSent,
		"smsSent":          output.SMSSent,
	})

	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("New lead assigned: %s", input.LocationName)
	body := fmt.Sprintf(
		"Hello %s,\n\nA new business location was assigned to your territory.\n\n"+
			"Location: %s\nCity: %s\nDistance: %.2f km\n\n"+
			"Please reach out to the prospect within 24 hours.",
		input.RepresentativeName, input.LocationName, input.LocationCity, input.DistanceKm)

	return h.email.SendPlainText(ctx, h.config.FromEmail, input.RepresentativeEmail, subject, body)
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf("New lead: %s (%.1f km). Check your email for details.",
		input.LocationName, input.DistanceKm)

	return h.sms.SendSMS(ctx, input.RepresentativePhone, message)
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
