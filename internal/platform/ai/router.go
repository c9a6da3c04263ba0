package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resale-ops/internal/config"
)

// ErrNoProvider is returned in dynamic mode when no provider has credentials.
var ErrNoProvider = errors.New("No configured AI provider available")

// ErrProviderNotConfigured is returned in a fixed mode whose provider lacks credentials.
type ErrProviderNotConfigured struct {
	Provider string
}

func (e ErrProviderNotConfigured) Error() string {
	return fmt.Sprintf("AI provider %s is not configured", e.Provider)
}

var (
	searchPreference   = []string{ProviderPerplexity, ProviderOpenAI}
	generatePreference = []string{ProviderOpenAI, ProviderPerplexity}
)

// Router dispatches each call to a provider according to the routing mode.
// Only providers with credentials are registered.
type Router struct {
	mode      string
	providers map[string]Provider
	logger    *slog.Logger
}

func NewRouter(mode string, providers []Provider, logger *slog.Logger) *Router {
	registered := make(map[string]Provider, len(providers))
	for _, p := range providers {
		registered[p.Name()] = p
	}
	return &Router{mode: mode, providers: registered, logger: logger}
}

// NewRouterFromConfig registers every provider whose API key is set.
func NewRouterFromConfig(cfg *config.AIConfig, logger *slog.Logger) *Router {
	var providers []Provider
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel,
			cfg.OpenAISearchModel, cfg.RequestTimeout))
	}
	if cfg.PerplexityAPIKey != "" {
		providers = append(providers, NewPerplexityClient(cfg.PerplexityAPIKey, cfg.PerplexityBaseURL,
			cfg.PerplexityModel, cfg.RequestTimeout))
	}
	r := NewRouter(cfg.RoutingMode, providers, logger)
	logger.Info("AI router initialized", "mode", cfg.RoutingMode, "providers", r.ConfiguredProviders())
	return r
}

// Mode returns the routing mode.
func (r *Router) Mode() string {
	return r.mode
}

// ConfiguredProviders lists the registered provider names in a stable order.
func (r *Router) ConfiguredProviders() []string {
	names := []string{}
	for _, name := range generatePreference {
		if _, ok := r.providers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (r *Router) pick(preference []string) (Provider, error) {
	switch r.mode {
	case config.AIModeOpenAI, config.AIModePerplexity:
		p, ok := r.providers[r.mode]
		if !ok {
			return nil, ErrProviderNotConfigured{Provider: r.mode}
		}
		return p, nil
	default:
		for _, name := range preference {
			if p, ok := r.providers[name]; ok {
				return p, nil
			}
		}
		return nil, ErrNoProvider
	}
}

// WebSearch prefers Perplexity in dynamic mode.
func (r *Router) WebSearch(ctx context.Context, query string) (*Response, error) {
	p, err := r.pick(searchPreference)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Routing web search", "provider", p.Name())
	return p.WebSearch(ctx, query)
}

// GenerateText prefers OpenAI in dynamic mode.
func (r *Router) GenerateText(ctx context.Context, prompt string) (*Response, error) {
	p, err := r.pick(generatePreference)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Routing text generation", "provider", p.Name())
	return p.GenerateText(ctx, prompt)
}
