// Package tts synthesizes speech from text via an OpenAI-compatible
// audio endpoint.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("text cannot be empty")

// Synthesizer converts text to audio. The HTTP layer treats a nil
// Synthesizer as "audio disabled".
type Synthesizer interface {
	// Synthesize renders text as WAV audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config configures the speech synthesis client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.openai.com.
	BaseURL string

	// Model is the synthesis model, e.g. tts-1.
	Model string

	// Voice selects the speaking voice, e.g. alloy.
	Voice string

	// APIKey authenticates requests.
	APIKey string
}

// Client calls the /v1/audio/speech endpoint.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewClient creates a speech synthesis client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("tts base URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}, nil
}

// speechRequest is the synthesis request body.
type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize renders text as WAV audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.config.Model,
		Voice:          c.config.Voice,
		Input:          text,
		ResponseFormat: "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding speech request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/v1/audio/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling speech endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}

	c.logger.Debug("synthesized speech",
		zap.Int("text_chars", len(text)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}

var _ Synthesizer = (*Client)(nil)
