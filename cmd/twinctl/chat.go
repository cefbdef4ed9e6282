package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yauheniya-ai/twind/internal/config"
	"github.com/yauheniya-ai/twind/internal/embeddings"
	"github.com/yauheniya-ai/twind/internal/index"
	"github.com/yauheniya-ai/twind/internal/llm"
	"github.com/yauheniya-ai/twind/internal/logging"
	"github.com/yauheniya-ai/twind/internal/twin"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
)

// chatCmd runs an interactive session against the local index, without
// a running server.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the twin interactively",
	Long: `Chat starts an interactive question loop against the local document
index. Type a question and press enter; quit, exit or q ends the session.

Examples:
  # Start a chat session
  twinctl chat`,
	RunE: runChat,
}

// runChat handles the chat command
func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
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

	if err := index.Verify(ctx, store); err != nil {
		return err
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("initializing llm client: %w", err)
	}

	tw := twin.New(store, client, logger)

	fmt.Println("Chat with the digital twin. Type quit, exit or q to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			return nil
		}

		result, err := tw.Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Printf("\n[%s] %s\n\n", result.Route, result.Text)
	}

	return scanner.Err()
}
