package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "https://api.openai.com/v1", Model: "text-embedding-3-large"}, false},
		{"missing url", Config{Model: "text-embedding-3-large"}, true},
		{"missing model", Config{BaseURL: "https://api.openai.com/v1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}

func TestEmbedDocumentsRejectsEmptyInput(t *testing.T) {
	svc, err := NewService(Config{
		BaseURL: "http://localhost:9999/v1",
		Model:   "text-embedding-3-large",
	})
	require.NoError(t, err)

	_, err = svc.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
