// Package index builds and verifies the twin's document index.
//
// Building is an administrative, non-concurrent operation: it is guarded
// only by an existence check, and concurrent rebuilds are out of scope.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/yauheniya-ai/twind/internal/docs"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
	"go.uber.org/zap"
)

// ErrNotBuilt is returned when the index is queried before an
// administrative build has run. Fatal for the process until a rebuild.
var ErrNotBuilt = errors.New("document index not built (run: twinctl index)")

// Builder creates the persisted document index.
type Builder struct {
	store  vectorstore.Store
	loader *docs.Loader
	logger *zap.Logger
}

// NewBuilder creates an index builder.
func NewBuilder(store vectorstore.Store, loader *docs.Loader, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{store: store, loader: loader, logger: logger}
}

// Build loads all documents and indexes them, one chunk per document.
//
// Without force, Build is a no-op when the collection already holds
// documents, so repeated invocations leave the persisted collection
// unchanged. With force, the existing collection is deleted first.
//
// Returns the number of documents indexed (zero when skipped).
func (b *Builder) Build(ctx context.Context, force bool) (int, error) {
	count, err := b.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking existing index: %w", err)
	}

	if count > 0 {
		if !force {
			b.logger.Info("index already exists, skipping build (use force to recreate)",
				zap.Int("documents", count))
			return 0, nil
		}

		b.logger.Info("force rebuild, deleting existing collection",
			zap.Int("documents", count))
		if err := b.store.DeleteCollection(ctx); err != nil {
			return 0, fmt.Errorf("deleting existing collection: %w", err)
		}
	}

	documents, err := b.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("loading documents: %w", err)
	}
	if len(documents) == 0 {
		return 0, fmt.Errorf("no documents found to index")
	}

	storeDocs := make([]vectorstore.Document, len(documents))
	for i, doc := range documents {
		storeDocs[i] = vectorstore.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		}
	}

	if _, err := b.store.AddDocuments(ctx, storeDocs); err != nil {
		return 0, fmt.Errorf("indexing documents: %w", err)
	}

	b.logger.Info("index built", zap.Int("documents", len(storeDocs)))
	return len(storeDocs), nil
}

// Verify checks that a previously built index is available for querying.
// Returns ErrNotBuilt when the collection is absent or empty.
func Verify(ctx context.Context, store vectorstore.Store) error {
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking index: %w", err)
	}
	if count == 0 {
		return ErrNotBuilt
	}
	return nil
}
