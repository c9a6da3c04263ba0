package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/domain/shared"
)

// FeedPublisher projects outbox messages into the activity feed
type FeedPublisher interface {
	PublishToFeed(ctx context.Context, message *outbox.Message) error
}

// FeedPublisherImpl implements FeedPublisher
type FeedPublisherImpl struct {
	outboxRepo outbox.Repository
	feedRepo   activity.FeedRepository
	logger     *slog.Logger
}

// NewFeedPublisher creates a new publisher
func NewFeedPublisher(
	outboxRepo outbox.Repository,
	feedRepo activity.FeedRepository,
	logger *slog.Logger,
) FeedPublisher {
	return &FeedPublisherImpl{
		outboxRepo: outboxRepo,
		feedRepo:   feedRepo,
		logger:     logger,
	}
}

// PublishToFeed upserts the message's event into the feed and marks the
// message processed. Upserts are keyed by event id so redelivery is harmless.
func (p *FeedPublisherImpl) PublishToFeed(ctx context.Context, message *outbox.Message) error {
	var entry *activity.FeedEntry
	event, err := message.GetEvent()
	if err == nil {
		entry, err = event.ToFeedEntry()
	}
	if err == nil {
		return p.publish(ctx, message, entry)
	}

	p.logger.Error("Failed to decode activity event from outbox payload",
		"outbox_id", message.ID, "event_id", message.EventID, "error", err,
	)
	if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
		p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
	}
	return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
}

func (p *FeedPublisherImpl) publish(ctx context.Context, message *outbox.Message, entry *activity.FeedEntry) error {
	logger := p.logger.With("outbox_id", message.ID, "event_id", entry.EventID)

	if err := p.feedRepo.Upsert(ctx, entry); err != nil {
		logger.Error("Failed to write activity feed entry", "error", err)
		return fmt.Errorf("failed to write feed entry %s: %w", entry.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("feed write for %s OK, but failed to mark outbox %d as PROCESSED: %w", entry.EventID, message.ID, err)
	}

	logger.Debug("Outbox message projected into activity feed", "type", entry.Type)
	return nil
}
