package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point at a non-existent file so only defaults apply.
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8800, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "digital_twin", cfg.VectorStore.Chromem.Collection)
	assert.Equal(t, "text-embedding-3-large", cfg.Embeddings.Model)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "twind.ask", cfg.Events.Subject)
	assert.False(t, cfg.TTS.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
vectorstore:
  provider: chromem
  chromem:
    path: /tmp/twin-store
    collection: twin_test
llm:
  model: gpt-4o-mini
  temperature: 0.2
documents:
  articles_dir: /data/articles
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "/tmp/twin-store", cfg.VectorStore.Chromem.Path)
	assert.Equal(t, "twin_test", cfg.VectorStore.Chromem.Collection)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, "/data/articles", cfg.Documents.ArticlesDir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9200")
	t.Setenv("VECTORSTORE_PROVIDER", "qdrant")
	t.Setenv("LLM_MODEL", "gpt-4.1")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
}

func TestLoadRejectsInvalidProvider(t *testing.T) {
	t.Setenv("VECTORSTORE_PROVIDER", "pinecone")

	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported vectorstore provider")
}

func TestValidateTTSRequiresBaseURL(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.TTS.Enabled = true
	cfg.TTS.BaseURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tts base_url")
}
