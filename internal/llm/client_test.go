package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o"}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, Config{Model: "gpt-4o"}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{BaseURL: "https://api.openai.com/v1"}.Validate(), ErrInvalidConfig)
}

func TestNewOpenAIClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	require.Error(t, err)
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	client, err := NewOpenAIClient(Config{
		BaseURL: "http://localhost:9999/v1",
		Model:   "gpt-4o",
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "system", "")
	assert.Error(t, err)
}
