// Package mongo holds the MongoDB read models: the activity feed projection
// and stored pricing analyses.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resale-ops/internal/domain/activity"
)

const (
	// ActivityFeedCollectionName is the name of the activity feed collection in MongoDB
	ActivityFeedCollectionName = "activity_feed"
)

// ActivityFeedRepository implements the activity.FeedRepository interface for MongoDB
type ActivityFeedRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityFeedRepository creates a new MongoDB activity feed repository
func NewActivityFeedRepository(logger *slog.Logger, db *mongo.Database) activity.FeedRepository {
	return &ActivityFeedRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the entry keyed by its event ID, so projecting the same event
// twice leaves a single document.
func (r *ActivityFeedRepository) Upsert(ctx context.Context, entry *activity.FeedEntry) error {
	collection := r.db.Collection(ActivityFeedCollectionName)

	filter := bson.M{"_id": entry.EventID}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		r.logger.Error("Failed to upsert activity feed entry",
			"event_id", entry.EventID,
			"error", err)
		return fmt.Errorf("failed to upsert activity feed entry: %w", err)
	}
	return nil
}

// GetByEventID returns the projected entry, or nil when the event has not
// been projected yet.
func (r *ActivityFeedRepository) GetByEventID(ctx context.Context, eventID string) (*activity.FeedEntry, error) {
	collection := r.db.Collection(ActivityFeedCollectionName)

	var entry activity.FeedEntry
	err := collection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get activity feed entry",
			"event_id", eventID,
			"error", err)
		return nil, fmt.Errorf("failed to get activity feed entry: %w", err)
	}
	return &entry, nil
}

// Recent returns the organisation's newest entries first.
func (r *ActivityFeedRepository) Recent(ctx context.Context, organisationID string, limit int) ([]*activity.FeedEntry, error) {
	collection := r.db.Collection(ActivityFeedCollectionName)

	filter := bson.M{"organisation_id": organisationID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get recent activity",
			"organisation_id", organisationID,
			"error", err)
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*activity.FeedEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode activity feed entries",
			"organisation_id", organisationID,
			"error", err)
		return nil, fmt.Errorf("failed to decode activity feed entries: %w", err)
	}
	return entries, nil
}
