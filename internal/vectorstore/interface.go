// Package vectorstore provides vector storage for the twin's document index.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when the collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrConnectionFailed indicates the remote store is unreachable.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// collectionNamePattern validates collection names.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateCollectionName validates a collection name.
// Rejects uppercase, special characters, path traversal and spaces.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match pattern ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// Document represents a document to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the text content of the document.
	Content string

	// Metadata contains key-value pairs for filtering.
	// Every indexed document carries a "source" tag.
	Metadata map[string]any
}

// SearchResult represents a search result from the vector store.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the document text content.
	Content string

	// Score is the similarity score (higher = more similar).
	Score float32

	// Metadata contains the document metadata.
	Metadata map[string]any
}

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	// Returns a slice of embeddings (one per input text) or an error.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	// Some models optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// Each store is bound to a single fixed collection holding the twin's
// indexed documents. The index is written once at build time and
// read-only at query time, so implementations need no locking around
// concurrent searches.
//
// Implementations:
//   - ChromemStore: embedded chromem-go with on-disk persistence (default)
//   - QdrantStore: external Qdrant server over gRPC
type Store interface {
	// AddDocuments embeds and stores documents in the collection.
	// Returns the IDs of added documents.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search performs similarity search, returning up to k results
	// ordered by similarity score (highest first). Filters are applied
	// to document metadata; only documents matching ALL conditions are
	// returned. Nil filters searches across all documents.
	Search(ctx context.Context, query string, k int, filters map[string]any) ([]SearchResult, error)

	// SearchMMR performs diversity-aware search using maximal marginal
	// relevance: fetchK candidates are retrieved by similarity, then k
	// results are selected balancing query relevance against
	// dissimilarity among the already-selected results.
	SearchMMR(ctx context.Context, query string, k, fetchK int, filters map[string]any) ([]SearchResult, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int, error)

	// DeleteCollection removes the collection and all its documents.
	// Used by forced index rebuilds.
	DeleteCollection(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

// Exists reports whether a persisted chromem index is present at path:
// the directory must exist and contain at least one entry. This is the
// existence check guarding administrative rebuilds.
func Exists(path string) bool {
	expanded, err := expandPath(path)
	if err != nil {
		return false
	}
	entries, err := os.ReadDir(expanded)
	if err != nil {
		return false
	}
	return len(entries) > 0
}
