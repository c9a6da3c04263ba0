// Package ai talks to the hosted language model providers used for pricing
// research and picks which provider serves each call.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
)

// Response is a completion together with the provider that produced it.
type Response struct {
	Provider string `json:"provider"`
	Content  string `json:"content"`
}

// Provider is a hosted model able to search the web and generate text.
type Provider interface {
	Name() string
	WebSearch(ctx context.Context, query string) (*Response, error)
	GenerateText(ctx context.Context, prompt string) (*Response, error)
}

// ErrUpstream reports a failed call to a provider.
type ErrUpstream struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e ErrUpstream) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chatClient speaks the chat completions protocol shared by OpenAI and
// Perplexity.
type chatClient struct {
	name    string
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func newChatClient(name, apiKey, baseURL string, timeout time.Duration) chatClient {
	return chatClient{
		name:    name,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// complete sends one system + user exchange. The configured timeout applies
// only when ctx carries no deadline of its own.
func (c chatClient) complete(ctx context.Context, model, system, prompt string) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ErrUpstream{Provider: c.name, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUpstream{Provider: c.name, StatusCode: resp.StatusCode, Message: "failed to read response body"}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, ErrUpstream{Provider: c.name, StatusCode: resp.StatusCode, Message: message}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, ErrUpstream{Provider: c.name, StatusCode: resp.StatusCode, Message: "failed to decode response"}
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrUpstream{Provider: c.name, StatusCode: resp.StatusCode, Message: "response contained no choices"}
	}

	return &Response{Provider: c.name, Content: parsed.Choices[0].Message.Content}, nil
}

const (
	searchSystemPrompt   = "You research the current resale market for luxury goods. Cite recent listings and sold prices with sources."
	generateSystemPrompt = "You are a pricing analyst for a luxury resale business. Answer concisely in plain text."
)

// OpenAIClient generates text with a chat model and searches with a
// search-enabled model.
type OpenAIClient struct {
	chat        chatClient
	model       string
	searchModel string
}

func NewOpenAIClient(apiKey, baseURL, model, searchModel string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		chat:        newChatClient(ProviderOpenAI, apiKey, baseURL, timeout),
		model:       model,
		searchModel: searchModel,
	}
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

func (c *OpenAIClient) WebSearch(ctx context.Context, query string) (*Response, error) {
	return c.chat.complete(ctx, c.searchModel, searchSystemPrompt, query)
}

func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) (*Response, error) {
	return c.chat.complete(ctx, c.model, generateSystemPrompt, prompt)
}

// PerplexityClient uses the same online model for search and generation.
type PerplexityClient struct {
	chat  chatClient
	model string
}

func NewPerplexityClient(apiKey, baseURL, model string, timeout time.Duration) *PerplexityClient {
	return &PerplexityClient{
		chat:  newChatClient(ProviderPerplexity, apiKey, baseURL, timeout),
		model: model,
	}
}

func (c *PerplexityClient) Name() string { return ProviderPerplexity }

func (c *PerplexityClient) WebSearch(ctx context.Context, query string) (*Response, error) {
	return c.chat.complete(ctx, c.model, searchSystemPrompt, query)
}

func (c *PerplexityClient) GenerateText(ctx context.Context, prompt string) (*Response, error) {
	return c.chat.complete(ctx, c.model, generateSystemPrompt, prompt)
}
