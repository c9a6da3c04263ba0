package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resale-ops/internal/config"
)

type fakeProvider struct {
	name string
	err  error
}

func (f fakeProvider) Name() string { return f.name }

func (f fakeProvider) WebSearch(ctx context.Context, query string) (*Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Provider: f.name, Content: "search:" + query}, nil
}

func (f fakeProvider) GenerateText(ctx context.Context, prompt string) (*Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Response{Provider: f.name, Content: "text:" + prompt}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_Dynamic(t *testing.T) {
	openai := fakeProvider{name: ProviderOpenAI}
	perplexity := fakeProvider{name: ProviderPerplexity}
	ctx := context.Background()

	tests := []struct {
		name           string
		providers      []Provider
		searchProvider string
		textProvider   string
	}{
		{"both configured", []Provider{openai, perplexity}, ProviderPerplexity, ProviderOpenAI},
		{"only openai", []Provider{openai}, ProviderOpenAI, ProviderOpenAI},
		{"only perplexity", []Provider{perplexity}, ProviderPerplexity, ProviderPerplexity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(config.AIModeDynamic, tt.providers, discardLogger())

			search, err := router.WebSearch(ctx, "q")
			require.NoError(t, err)
			assert.Equal(t, tt.searchProvider, search.Provider)

			text, err := router.GenerateText(ctx, "p")
			require.NoError(t, err)
			assert.Equal(t, tt.textProvider, text.Provider)
		})
	}
}

func TestRouter_NoProvider(t *testing.T) {
	router := NewRouter(config.AIModeDynamic, nil, discardLogger())

	_, err := router.WebSearch(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Equal(t, "No configured AI provider available", err.Error())

	_, err = router.GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestRouter_FixedMode(t *testing.T) {
	openai := fakeProvider{name: ProviderOpenAI}
	perplexity := fakeProvider{name: ProviderPerplexity}

	router := NewRouter(config.AIModeOpenAI, []Provider{openai, perplexity}, discardLogger())
	search, err := router.WebSearch(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, search.Provider)

	router = NewRouter(config.AIModePerplexity, []Provider{openai}, discardLogger())
	_, err = router.GenerateText(context.Background(), "p")
	assert.Equal(t, ErrProviderNotConfigured{Provider: ProviderPerplexity}, err)
}

func TestRouter_UpstreamErrorIsSurfaced(t *testing.T) {
	failure := ErrUpstream{Provider: ProviderOpenAI, StatusCode: 500, Message: "overloaded"}
	router := NewRouter(config.AIModeDynamic, []Provider{fakeProvider{name: ProviderOpenAI, err: failure}}, discardLogger())

	_, err := router.GenerateText(context.Background(), "p")
	var upstream ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 500, upstream.StatusCode)
}

func TestNewRouterFromConfig(t *testing.T) {
	router := NewRouterFromConfig(&config.AIConfig{
		RoutingMode:      config.AIModeDynamic,
		PerplexityAPIKey: "pplx",
		RequestTimeout:   time.Second,
	}, discardLogger())

	assert.Equal(t, []string{ProviderPerplexity}, router.ConfiguredProviders())
	assert.Equal(t, config.AIModeDynamic, router.Mode())
}
