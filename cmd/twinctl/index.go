package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yauheniya-ai/twind/internal/config"
	"github.com/yauheniya-ai/twind/internal/docs"
	"github.com/yauheniya-ai/twind/internal/embeddings"
	"github.com/yauheniya-ai/twind/internal/index"
	"github.com/yauheniya-ai/twind/internal/logging"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
)

var indexForce bool

// indexCmd builds the document index locally
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the document index",
	Long: `Index loads the configured documents, embeds them, and stores them in
the vector store. An existing index is left untouched unless --force is
given, which rebuilds it from scratch.

Examples:
  # Build the index if it doesn't exist yet
  twinctl index

  # Rebuild from scratch
  twinctl index --force`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild the index even if it exists")
}

// runIndex handles the index command
func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// For the embedded store, an on-disk index can be detected before
	// opening anything, saving the embedder and store setup entirely.
	if !indexForce && indexAlreadyBuilt(cfg) {
		fmt.Println("Index already exists, nothing to do (use --force to rebuild).")
		return nil
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
	})
	if err != nil {
		return fmt.Errorf("initializing embeddings: %w", err)
	}

	store, err := vectorstore.NewStore(cfg, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	defer store.Close()

	loader := docs.NewLoader(docs.Config{
		ProfilePath: cfg.Documents.ProfilePath,
		ProjectsDir: cfg.Documents.ProjectsDir,
		ArticlesDir: cfg.Documents.ArticlesDir,
	}, logger)

	builder := index.NewBuilder(store, loader, logger)

	added, err := builder.Build(ctx, indexForce)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	if added == 0 {
		fmt.Println("Index already exists, nothing to do (use --force to rebuild).")
		return nil
	}

	fmt.Printf("Indexed %d documents.\n", added)
	return nil
}

// indexAlreadyBuilt reports whether a persisted embedded index exists
// on disk. Only meaningful for the chromem provider; a remote store is
// checked by document count after connecting.
func indexAlreadyBuilt(cfg *config.Config) bool {
	return cfg.VectorStore.Provider == "chromem" && vectorstore.Exists(cfg.VectorStore.Chromem.Path)
}
