// Package docs loads the twin's pre-processed document sources.
//
// Three sources feed the index: a single structured profile record, a
// folder of project summaries, and a folder of articles. Each file is
// loaded as one whole document; chunking is intentionally absent because
// the documents are small and retrieval operates on whole records.
package docs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source identifies which document category a record belongs to.
// Every indexed document carries its source in metadata; retrieval
// strategies filter on it.
type Source string

const (
	SourceProfile Source = "profile"
	SourceProject Source = "project"
	SourceArticle Source = "article"
)

// Sources lists all document sources in a stable order.
func Sources() []Source {
	return []Source{SourceProfile, SourceProject, SourceArticle}
}

// Document is an immutable in-memory record of one loaded document.
type Document struct {
	ID       string
	Content  string
	Source   Source
	Metadata map[string]any
}

// Config points at the document source layout on disk.
type Config struct {
	// ProfilePath is a JSON file holding the profile record.
	ProfilePath string

	// ProjectsDir holds one *.md file per project summary.
	ProjectsDir string

	// ArticlesDir holds one *.md file per article.
	ArticlesDir string
}

// Loader reads documents from the configured layout.
type Loader struct {
	config Config
	logger *zap.Logger
}

// NewLoader creates a document loader.
func NewLoader(config Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{config: config, logger: logger}
}

// Load reads all available documents. A missing file or folder leaves
// that source empty rather than failing: the twin can be indexed from a
// partial data set.
func (l *Loader) Load() ([]Document, error) {
	var documents []Document

	profile, err := l.loadProfile()
	if err != nil {
		return nil, err
	}
	documents = append(documents, profile...)

	projects, err := l.loadFolder(l.config.ProjectsDir, SourceProject)
	if err != nil {
		return nil, err
	}
	documents = append(documents, projects...)

	articles, err := l.loadFolder(l.config.ArticlesDir, SourceArticle)
	if err != nil {
		return nil, err
	}
	documents = append(documents, articles...)

	l.logger.Info("loaded documents",
		zap.Int("profile", len(profile)),
		zap.Int("projects", len(projects)),
		zap.Int("articles", len(articles)),
	)

	return documents, nil
}

// loadProfile reads the profile record and re-serializes it with
// indentation so the embedded text stays human-readable.
func (l *Loader) loadProfile() ([]Document, error) {
	if l.config.ProfilePath == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(l.config.ProfilePath)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("profile record not found, skipping",
			zap.String("path", l.config.ProfilePath))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", l.config.ProfilePath, err)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", l.config.ProfilePath, err)
	}

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing profile: %w", err)
	}

	return []Document{{
		ID:      uuid.New().String(),
		Content: string(content),
		Source:  SourceProfile,
		Metadata: map[string]any{
			"source": string(SourceProfile),
			"type":   "profile",
		},
	}}, nil
}

// loadFolder reads every markdown file in dir as one document.
func (l *Loader) loadFolder(dir string, source Source) ([]Document, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("document folder not found, skipping",
			zap.String("dir", dir),
			zap.String("source", string(source)))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	documents := make([]Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		documents = append(documents, Document{
			ID:      uuid.New().String(),
			Content: string(content),
			Source:  source,
			Metadata: map[string]any{
				"source": string(source),
				"file":   name,
			},
		})
	}

	return documents, nil
}
