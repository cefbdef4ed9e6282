// Package config provides configuration loading for twind.
package config

import (
	"fmt"
	"time"

	"github.com/yauheniya-ai/twind/internal/logging"
)

// Config is the root configuration for twind.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	LLM         LLMConfig         `koanf:"llm"`
	TTS         TTSConfig         `koanf:"tts"`
	Documents   DocumentsConfig   `koanf:"documents"`
	Events      EventsConfig      `koanf:"events"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// VectorStoreConfig selects and configures the vector store provider.
type VectorStoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant" (external server).
	Provider string        `koanf:"provider"`
	Chromem  ChromemConfig `koanf:"chromem"`
	Qdrant   QdrantConfig  `koanf:"qdrant"`
}

// ChromemConfig configures the embedded chromem-go store.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	Path string `koanf:"path"`

	// Collection is the collection name holding the twin's documents.
	Collection string `koanf:"collection"`

	// Compress enables gzip compression for stored data.
	Compress bool `koanf:"compress"`
}

// QdrantConfig configures the optional Qdrant gRPC store.
type QdrantConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
	UseTLS     bool   `koanf:"use_tls"`
}

// EmbeddingsConfig configures the embedding service.
type EmbeddingsConfig struct {
	// BaseURL is the OpenAI-compatible embeddings endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// APIKey authenticates against the embeddings endpoint.
	APIKey string `koanf:"api_key"`
}

// LLMConfig configures the chat completion client used for routing,
// answer generation and speech rewriting.
type LLMConfig struct {
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
}

// TTSConfig configures optional text-to-speech synthesis.
type TTSConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	Voice   string `koanf:"voice"`
	APIKey  string `koanf:"api_key"`
}

// DocumentsConfig points at the pre-processed document sources.
type DocumentsConfig struct {
	// ProfilePath is the structured profile record (JSON).
	ProfilePath string `koanf:"profile_path"`

	// ProjectsDir holds one markdown file per project summary.
	ProjectsDir string `koanf:"projects_dir"`

	// ArticlesDir holds one markdown file per article.
	ArticlesDir string `koanf:"articles_dir"`
}

// EventsConfig configures optional ask-event publishing over NATS.
// Publishing is disabled when URL is empty.
type EventsConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.VectorStore.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("unsupported vectorstore provider: %s (supported: chromem, qdrant)", c.VectorStore.Provider)
	}
	if c.Embeddings.BaseURL == "" {
		return fmt.Errorf("embeddings base_url is required")
	}
	if c.Embeddings.Model == "" {
		return fmt.Errorf("embeddings model is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.TTS.Enabled && c.TTS.BaseURL == "" {
		return fmt.Errorf("tts base_url is required when tts is enabled")
	}
	return nil
}
