package mongo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/resale-ops/internal/domain/activity"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func feedDoc(id, org, eventType string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "organisation_id", Value: org},
		{Key: "actor", Value: "system"},
		{Key: "type", Value: eventType},
		{Key: "entity_type", Value: activity.EntityProduct},
		{Key: "entity_id", Value: "p-1"},
		{Key: "payload", Value: bson.D{{Key: "brand", Value: "Hermes"}}},
		{Key: "created_at", Value: createdAt},
	}
}

func TestNewActivityFeedRepository(t *testing.T) {
	repo := NewActivityFeedRepository(newTestLogger(), nil)
	assert.IsType(t, &ActivityFeedRepository{}, repo)
}

func TestActivityFeedRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "resale." + ActivityFeedCollectionName
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("upsert", func(mt *mtest.T) {
		repo := NewActivityFeedRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Upsert(context.Background(), &activity.FeedEntry{EventID: "e-1", OrganisationID: "org-1"})
		assert.NoError(t, err)
	})

	mt.Run("upsert error", func(mt *mtest.T) {
		repo := NewActivityFeedRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))

		err := repo.Upsert(context.Background(), &activity.FeedEntry{EventID: "e-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert activity feed entry")
	})

	mt.Run("get by event id", func(mt *mtest.T) {
		repo := NewActivityFeedRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			feedDoc("e-1", "org-1", activity.TypeProductCreated, createdAt)))

		entry, err := repo.GetByEventID(context.Background(), "e-1")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, activity.TypeProductCreated, entry.Type)
		assert.Equal(t, "Hermes", entry.Payload["brand"])
		assert.True(t, createdAt.Equal(entry.CreatedAt))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewActivityFeedRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		entry, err := repo.GetByEventID(context.Background(), "nope")
		assert.NoError(t, err)
		assert.Nil(t, entry)
	})

	mt.Run("recent", func(mt *mtest.T) {
		repo := NewActivityFeedRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			feedDoc("e-2", "org-1", activity.TypeProductSold, createdAt.Add(time.Hour)),
			feedDoc("e-1", "org-1", activity.TypeProductCreated, createdAt)))

		entries, err := repo.Recent(context.Background(), "org-1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "e-2", entries[0].EventID)
		assert.Equal(t, "e-1", entries[1].EventID)
	})
}
