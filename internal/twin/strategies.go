package twin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yauheniya-ai/twind/internal/docs"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
	"go.uber.org/zap"
)

// Retrieval parameters per strategy. The profile is a single dense
// record so few results suffice; projects and articles are many small
// documents.
const (
	profileTopK  = 3
	projectsTopK = 8
	articlesTopK = 8
	// articlesFetchK is the MMR candidate pool size.
	articlesFetchK = 20
	generalTopK    = 8
)

// Strategy retrieves context for one route. Implementations append
// nothing to the conversation themselves; the orchestrator records the
// returned blocks.
type Strategy interface {
	// Retrieve executes the search and returns formatted context
	// blocks. A scoped search with zero results still yields one block
	// carrying an explicit no-results notice, so the answer generator
	// always sees a consistent context shape.
	Retrieve(ctx context.Context, query string) ([]ContextBlock, error)
}

// contextHeading renders the source-labeled heading for a block.
func contextHeading(source string) string {
	switch docs.Source(source) {
	case docs.SourceProfile:
		return "[Profile Context]"
	case docs.SourceProject:
		return "[Projects Context]"
	case docs.SourceArticle:
		return "[Articles Context]"
	default:
		return fmt.Sprintf("[%s Context]", source)
	}
}

// formatBlock joins results under a heading, or emits a no-results
// notice when the search came back empty.
func formatBlock(source string, results []vectorstore.SearchResult) ContextBlock {
	heading := contextHeading(source)
	if len(results) == 0 {
		return ContextBlock{
			Source: source,
			Text:   heading + "\nNo documents found.",
		}
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Content
	}
	return ContextBlock{
		Source: source,
		Text:   heading + "\n" + strings.Join(passages, "\n\n"),
	}
}

// scopedStrategy runs a similarity search restricted to one source tag.
type scopedStrategy struct {
	store  vectorstore.Store
	source docs.Source
	topK   int
}

// NewProfileStrategy retrieves from the profile record.
func NewProfileStrategy(store vectorstore.Store) Strategy {
	return &scopedStrategy{store: store, source: docs.SourceProfile, topK: profileTopK}
}

// NewProjectsStrategy retrieves from project summaries.
func NewProjectsStrategy(store vectorstore.Store) Strategy {
	return &scopedStrategy{store: store, source: docs.SourceProject, topK: projectsTopK}
}

func (s *scopedStrategy) Retrieve(ctx context.Context, query string) ([]ContextBlock, error) {
	results, err := s.store.Search(ctx, query, s.topK, sourceFilter(s.source))
	if err != nil {
		return nil, fmt.Errorf("retrieving %s context: %w", s.source, err)
	}
	return []ContextBlock{formatBlock(string(s.source), results)}, nil
}

// articlesStrategy uses diversity-aware search. Broad questions like
// "what did she write about?" benefit from spreading results across
// articles instead of returning near-duplicates from one piece.
type articlesStrategy struct {
	store  vectorstore.Store
	logger *zap.Logger
}

// NewArticlesStrategy retrieves from articles with MMR, falling back to
// plain similarity search when the diversity-aware path fails.
func NewArticlesStrategy(store vectorstore.Store, logger *zap.Logger) Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &articlesStrategy{store: store, logger: logger}
}

func (s *articlesStrategy) Retrieve(ctx context.Context, query string) ([]ContextBlock, error) {
	filter := sourceFilter(docs.SourceArticle)

	results, err := s.store.SearchMMR(ctx, query, articlesTopK, articlesFetchK, filter)
	if err != nil {
		// Recovered degrade: rerun as plain similarity with identical
		// k and filter. The MMR error must not propagate.
		s.logger.Warn("diversity search failed, falling back to similarity search",
			zap.Error(err))

		results, err = s.store.Search(ctx, query, articlesTopK, filter)
		if err != nil {
			return nil, fmt.Errorf("retrieving article context: %w", err)
		}
	}

	return []ContextBlock{formatBlock(string(docs.SourceArticle), results)}, nil
}

// generalStrategy searches across all sources and groups results by
// source tag so the answer generator can attribute passages.
type generalStrategy struct {
	store vectorstore.Store
}

// NewGeneralStrategy retrieves unscoped context for overview questions.
func NewGeneralStrategy(store vectorstore.Store) Strategy {
	return &generalStrategy{store: store}
}

func (s *generalStrategy) Retrieve(ctx context.Context, query string) ([]ContextBlock, error) {
	results, err := s.store.Search(ctx, query, generalTopK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieving general context: %w", err)
	}

	bySource := make(map[string][]vectorstore.SearchResult)
	for _, r := range results {
		source, _ := r.Metadata["source"].(string)
		if source == "" {
			source = "unknown"
		}
		bySource[source] = append(bySource[source], r)
	}

	if len(bySource) == 0 {
		return []ContextBlock{{Source: "general", Text: "[Context]\nNo documents found."}}, nil
	}

	// Stable source order keeps answers reproducible.
	var blocks []ContextBlock
	for _, source := range docs.Sources() {
		if group, ok := bySource[string(source)]; ok {
			blocks = append(blocks, formatBlock(string(source), group))
			delete(bySource, string(source))
		}
	}
	leftover := make([]string, 0, len(bySource))
	for source := range bySource {
		leftover = append(leftover, source)
	}
	sort.Strings(leftover)
	for _, source := range leftover {
		blocks = append(blocks, formatBlock(source, bySource[source]))
	}

	return blocks, nil
}

// sourceFilter builds the metadata filter scoping a search to one source.
func sourceFilter(source docs.Source) map[string]any {
	return map[string]any{"source": string(source)}
}
