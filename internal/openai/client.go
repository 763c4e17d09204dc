// Package openai wraps the go-openai client with the settings this service
// reads from its configuration
package openai

import (
	"context"
	"fmt"
	"time"

	"summymail/internal/config"

	"github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI chat client bound to a single API key
type Client struct {
	api          *openai.Client
	timeout      time.Duration
	providerName string
}

// NewClient creates a new OpenAI client from the resolved configuration
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("no OpenAI provider configured: %w", config.ErrMissingAPIKey)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	providerName := "OpenAI"
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
		providerName = fmt.Sprintf("OpenAI-compatible (%s)", cfg.OpenAIBaseURL)
	}

	return &Client{
		api:          openai.NewClientWithConfig(clientConfig),
		timeout:      time.Duration(cfg.OpenAITimeout) * time.Second,
		providerName: providerName,
	}, nil
}

// CreateChatCompletion generates a chat completion
func (c *Client) CreateChatCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (*openai.ChatCompletionResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetProviderName returns the provider the client talks to
func (c *Client) GetProviderName() string {
	return c.providerName
}
