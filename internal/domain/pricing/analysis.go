package pricing

import (
	"context"
	"time"

	"github.com/resale-ops/internal/domain/shared"
)

// Query is the item a pricing analysis was requested for.
type Query struct {
	Brand     string `json:"brand" bson:"brand"`
	Model     string `json:"model" bson:"model"`
	Category  string `json:"category,omitempty" bson:"category,omitempty"`
	Condition string `json:"condition,omitempty" bson:"condition,omitempty"`
	Colour    string `json:"colour,omitempty" bson:"colour,omitempty"`
	Notes     string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate checks the query names an item.
func (q Query) Validate() error {
	var errs shared.ValidationErrors
	errs.Required("brand", q.Brand)
	errs.Required("model", q.Model)
	return errs.Err()
}

// Analysis is a stored market research result.
type Analysis struct {
	ID                 string    `json:"id" bson:"_id"`
	OrganisationID     string    `json:"organisationId" bson:"organisation_id"`
	Query              Query     `json:"query" bson:"query"`
	Research           string    `json:"research" bson:"research"`
	Summary            string    `json:"summary" bson:"summary"`
	ResearchProvider   string    `json:"researchProvider" bson:"research_provider"`
	GenerationProvider string    `json:"generationProvider" bson:"generation_provider"`
	CreatedAt          time.Time `json:"createdAt" bson:"created_at"`
}

// Repository stores pricing analyses
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	Recent(ctx context.Context, organisationID string, limit int) ([]*Analysis, error)
}
