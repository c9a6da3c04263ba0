// Package audit writes activity events together with the outbox message that
// relays them to the activity feed.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/outbox"
)

// Recorder persists an activity event inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, tx pgx.Tx, event *activity.Event) error
}

type RecorderImpl struct {
	activityRepo activity.Repository
	outboxRepo   outbox.Repository
	logger       *slog.Logger
}

func NewRecorder(activityRepo activity.Repository, outboxRepo outbox.Repository, logger *slog.Logger) Recorder {
	return &RecorderImpl{
		activityRepo: activityRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Record stores the event and queues it for projection. Both writes share tx,
// so a rollback discards them together.
func (r *RecorderImpl) Record(ctx context.Context, tx pgx.Tx, event *activity.Event) error {
	if err := r.activityRepo.WithTx(tx).Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record activity event %s: %w", event.Type, err)
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		r.logger.Error("Failed to create outbox message (marshal payload)",
			"event_id", event.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for event %s: %w", event.ID.String(), err)
	}

	if err := r.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		r.logger.Error("Failed to create outbox message",
			"event_id", event.ID.String(),
			"type", event.Type,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for event %s: %w", event.ID.String(), err)
	}

	r.logger.Debug("Activity event recorded",
		"event_id", event.ID.String(),
		"type", event.Type,
		"entity_id", event.EntityID,
	)
	return nil
}
