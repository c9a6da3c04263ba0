package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resale-ops/internal/domain/pricing"
	"github.com/resale-ops/internal/platform/ai"
)

const (
	defaultAnalysesLimit = 20
	maxAnalysesLimit     = 100
)

// AIRouter routes research and generation calls to a configured provider.
type AIRouter interface {
	ProviderInfo
	WebSearch(ctx context.Context, query string) (*ai.Response, error)
	GenerateText(ctx context.Context, prompt string) (*ai.Response, error)
}

var _ AIRouter = (*ai.Router)(nil)

// PricingServiceImpl implements the PricingService interface
type PricingServiceImpl struct {
	router       AIRouter
	analysisRepo pricing.Repository
	defaultOrgID string
	logger       *slog.Logger
}

func NewPricingService(logger *slog.Logger, defaultOrgID string, router AIRouter, analysisRepo pricing.Repository) PricingService {
	return &PricingServiceImpl{
		router:       router,
		analysisRepo: analysisRepo,
		defaultOrgID: defaultOrgID,
		logger:       logger,
	}
}

// Analyse researches recent market prices for the item and asks for a short
// pricing recommendation built on that research. Provider failures are
// returned to the caller unchanged.
func (s *PricingServiceImpl) Analyse(ctx context.Context, query pricing.Query) (*pricing.Analysis, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	research, err := s.router.WebSearch(ctx, researchPrompt(query))
	if err != nil {
		s.logger.Warn("Pricing research failed", "brand", query.Brand, "model", query.Model, "error", err)
		return nil, err
	}

	summary, err := s.router.GenerateText(ctx, summaryPrompt(query, research.Content))
	if err != nil {
		s.logger.Warn("Pricing summary failed", "brand", query.Brand, "model", query.Model, "error", err)
		return nil, err
	}

	analysis := &pricing.Analysis{
		ID:                 uuid.New().String(),
		OrganisationID:     organisationOf(ctx, s.defaultOrgID),
		Query:              query,
		Research:           research.Content,
		Summary:            summary.Content,
		ResearchProvider:   research.Provider,
		GenerationProvider: summary.Provider,
		CreatedAt:          time.Now().UTC(),
	}

	if s.analysisRepo != nil {
		if err := s.analysisRepo.Create(ctx, analysis); err != nil {
			s.logger.Error("Failed to store pricing analysis", "analysis_id", analysis.ID, "error", err)
			return nil, err
		}
	}

	s.logger.Info("Pricing analysis completed",
		"analysis_id", analysis.ID,
		"research_provider", analysis.ResearchProvider,
		"generation_provider", analysis.GenerationProvider,
	)
	return analysis, nil
}

func (s *PricingServiceImpl) Recent(ctx context.Context, limit int) ([]*pricing.Analysis, error) {
	if s.analysisRepo == nil {
		return []*pricing.Analysis{}, nil
	}
	if limit <= 0 {
		limit = defaultAnalysesLimit
	}
	if limit > maxAnalysesLimit {
		limit = maxAnalysesLimit
	}
	return s.analysisRepo.Recent(ctx, organisationOf(ctx, s.defaultOrgID), limit)
}

func describe(q pricing.Query) string {
	parts := []string{q.Brand, q.Model}
	for _, extra := range []string{q.Colour, q.Category} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	desc := strings.Join(parts, " ")
	if q.Condition != "" {
		desc += fmt.Sprintf(" (condition: %s)", q.Condition)
	}
	return desc
}

func researchPrompt(q pricing.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find recent resale and auction prices in EUR for: %s.", describe(q))
	b.WriteString(" List sources with dates and prices, and note the current retail price if one exists.")
	if q.Notes != "" {
		fmt.Fprintf(&b, " Additional details: %s.", q.Notes)
	}
	return b.String()
}

func summaryPrompt(q pricing.Query, research string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You price pre-owned luxury goods. Based on the research below, recommend a buy price range and a sell price range in EUR for %s.", describe(q))
	b.WriteString(" Answer in at most five sentences and state how confident you are.\n\nResearch:\n")
	b.WriteString(research)
	return b.String()
}
