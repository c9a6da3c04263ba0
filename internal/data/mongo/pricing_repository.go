package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resale-ops/internal/domain/pricing"
)

const (
	// PricingCollectionName is the name of the pricing analyses collection in MongoDB
	PricingCollectionName = "pricing_analyses"
)

// PricingRepository implements the pricing.Repository interface for MongoDB
type PricingRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPricingRepository creates a new MongoDB pricing repository
func NewPricingRepository(logger *slog.Logger, db *mongo.Database) pricing.Repository {
	return &PricingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PricingRepository) Create(ctx context.Context, a *pricing.Analysis) error {
	collection := r.db.Collection(PricingCollectionName)

	if _, err := collection.InsertOne(ctx, a); err != nil {
		r.logger.Error("Failed to store pricing analysis",
			"id", a.ID,
			"error", err)
		return fmt.Errorf("failed to store pricing analysis: %w", err)
	}
	return nil
}

func (r *PricingRepository) Recent(ctx context.Context, organisationID string, limit int) ([]*pricing.Analysis, error) {
	collection := r.db.Collection(PricingCollectionName)

	filter := bson.M{"organisation_id": organisationID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list pricing analyses",
			"organisation_id", organisationID,
			"error", err)
		return nil, fmt.Errorf("failed to list pricing analyses: %w", err)
	}
	defer cursor.Close(ctx)

	analyses := []*pricing.Analysis{}
	if err := cursor.All(ctx, &analyses); err != nil {
		r.logger.Error("Failed to decode pricing analyses",
			"organisation_id", organisationID,
			"error", err)
		return nil, fmt.Errorf("failed to decode pricing analyses: %w", err)
	}
	return analyses, nil
}
