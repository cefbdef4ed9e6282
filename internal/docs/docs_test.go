package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoadAllSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profile.json"), `{"name":"Yauheniya","education":"M.Sc."}`)
	writeFile(t, filepath.Join(dir, "projects", "twin.md"), "# twin\nDigital twin assistant.")
	writeFile(t, filepath.Join(dir, "projects", "viz.md"), "# viz\nCharts.")
	writeFile(t, filepath.Join(dir, "articles", "autoencoders.md"), "# Denoising Images with Autoencoders")
	// Non-markdown files are ignored.
	writeFile(t, filepath.Join(dir, "articles", "notes.txt"), "scratch")

	loader := NewLoader(Config{
		ProfilePath: filepath.Join(dir, "profile.json"),
		ProjectsDir: filepath.Join(dir, "projects"),
		ArticlesDir: filepath.Join(dir, "articles"),
	}, zap.NewNop())

	documents, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, documents, 4)

	bySource := map[Source]int{}
	for _, doc := range documents {
		bySource[doc.Source]++

		// Invariant: metadata always carries a source tag matching the category.
		require.NotNil(t, doc.Metadata)
		assert.Equal(t, string(doc.Source), doc.Metadata["source"])
		assert.NotEmpty(t, doc.ID)
		assert.NotEmpty(t, doc.Content)
	}

	assert.Equal(t, 1, bySource[SourceProfile])
	assert.Equal(t, 2, bySource[SourceProject])
	assert.Equal(t, 1, bySource[SourceArticle])
}

func TestLoadMissingSourcesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "articles", "one.md"), "content")

	loader := NewLoader(Config{
		ProfilePath: filepath.Join(dir, "missing.json"),
		ProjectsDir: filepath.Join(dir, "no-projects"),
		ArticlesDir: filepath.Join(dir, "articles"),
	}, zap.NewNop())

	documents, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, SourceArticle, documents[0].Source)
	assert.Equal(t, "one.md", documents[0].Metadata["file"])
}

func TestLoadRejectsMalformedProfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "profile.json"), "{not json")

	loader := NewLoader(Config{ProfilePath: filepath.Join(dir, "profile.json")}, zap.NewNop())

	_, err := loader.Load()
	require.Error(t, err)
}
