// Package llm provides the chat completion client used for query
// routing, answer generation and speech rewriting.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Client is the interface for chat completions. Interface-first so the
// pipeline stages can be tested with canned responses.
type Client interface {
	// Complete sends one system + user message pair and returns the
	// model's text response. An empty system prompt is omitted.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for the OpenAI-compatible chat client.
type Config struct {
	// BaseURL is the base URL for the chat completion API.
	BaseURL string

	// Model is the chat model, e.g. gpt-4o.
	Model string

	// APIKey authenticates against the API.
	APIKey string

	// Temperature controls sampling randomness. The pipeline uses 0
	// for deterministic routing and generation.
	Temperature float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAIClient implements Client over langchaingo's OpenAI-compatible
// chat API.
type OpenAIClient struct {
	model  llms.Model
	config Config
}

// NewOpenAIClient creates a chat client with the given configuration.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	model, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &OpenAIClient{model: model, config: config}, nil
}

// Complete sends the messages and returns the first choice's text.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(c.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return resp.Choices[0].Content, nil
}

// Ensure OpenAIClient implements Client.
var _ Client = (*OpenAIClient)(nil)
