package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/worker/service"
)

// ImportEventHandler handles import request messages from Kafka
type ImportEventHandler struct {
	processor service.ImportProcessor
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

// NewImportEventHandler creates a new handler. producer may be nil when no
// dead letter topic is configured.
func NewImportEventHandler(
	logger *slog.Logger,
	processor service.ImportProcessor,
	producer producers.DeadLetterPublisher,
) *ImportEventHandler {
	return &ImportEventHandler{
		processor: processor,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset.
func (h *ImportEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.ImportRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal import request from Kafka message", err)
	}
	if err := validateRequest(&request); err != nil {
		return h.deadLetter(ctx, key, value, "Invalid import request", err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received import request for processing",
		"job_id", request.JobID.String(),
		"supplier_id", request.SupplierID.String(),
		"filename", request.Filename,
	)

	if err := h.processor.ProcessImport(ctx, &request); err != nil {
		logger.Error("Failed to process import",
			"job_id", request.JobID.String(),
			"error", err,
		)
		return fmt.Errorf("processing import job %s failed: %w", request.JobID.String(), err)
	}
	return nil
}

func validateRequest(r *shared.ImportRequest) error {
	switch {
	case r.JobID == uuid.Nil:
		return errors.New("job_id is required")
	case r.SupplierID == uuid.Nil:
		return errors.New("supplier_id is required")
	case r.ObjectKey == "":
		return errors.New("object_key is required")
	}
	return nil
}

// deadLetter moves an unprocessable message to the DLQ. Without a DLQ, or
// when publishing fails, the error is returned so Kafka redelivers.
func (h *ImportEventHandler) deadLetter(ctx context.Context, key, value []byte, msg string, cause error) error {
	h.logger.Error(msg, "error", cause, "message_key", string(key))

	if h.producer != nil {
		reason := fmt.Sprintf("%s: %s", msg, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", msg, cause)
}
