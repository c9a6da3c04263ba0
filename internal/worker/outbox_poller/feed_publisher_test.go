package outbox_poller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/mocks"
)

func soldEventMessage(t *testing.T) (*outbox.Message, *activity.Event) {
	t.Helper()
	event, err := activity.NewEvent("org-1", "ops@example.com", activity.TypeProductSold,
		activity.EntityProduct, "p-1", map[string]any{"price": 7200})
	require.NoError(t, err)
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	msg.ID = 42
	return msg, event
}

func TestFeedPublisher_PublishToFeed(t *testing.T) {
	t.Run("upserts the entry and marks processed", func(t *testing.T) {
		outboxRepo := &mocks.OutboxRepository{}
		feedRepo := &mocks.FeedRepository{}
		msg, event := soldEventMessage(t)

		feedRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *activity.FeedEntry) bool {
			return e.EventID == event.ID.String() &&
				e.OrganisationID == "org-1" &&
				e.Type == activity.TypeProductSold &&
				e.Payload["price"] == float64(7200)
		})).Return(nil).Once()
		outboxRepo.On("UpdateStatus", mock.Anything, int64(42), shared.OutboxStatusProcessed).Return(nil).Once()

		err := NewFeedPublisher(outboxRepo, feedRepo, testLogger()).PublishToFeed(context.Background(), msg)

		assert.NoError(t, err)
		feedRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("undecodable payload is marked failed", func(t *testing.T) {
		outboxRepo := &mocks.OutboxRepository{}
		feedRepo := &mocks.FeedRepository{}
		msg := &outbox.Message{ID: 9, Payload: []byte(`"not an event"`)}

		outboxRepo.On("UpdateStatus", mock.Anything, int64(9), shared.OutboxStatusFailedToPublish).Return(nil).Once()

		err := NewFeedPublisher(outboxRepo, feedRepo, testLogger()).PublishToFeed(context.Background(), msg)

		assert.Error(t, err)
		feedRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("feed write failure leaves the message pending", func(t *testing.T) {
		outboxRepo := &mocks.OutboxRepository{}
		feedRepo := &mocks.FeedRepository{}
		msg, _ := soldEventMessage(t)

		feedRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()

		err := NewFeedPublisher(outboxRepo, feedRepo, testLogger()).PublishToFeed(context.Background(), msg)

		assert.Error(t, err)
		outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
