// Twind is the digital twin daemon.
//
// It serves question answering over HTTP, backed by a previously built
// document index (see twinctl index). Configuration is loaded from a
// YAML file and environment variables.
//
// Usage:
//
//	# Start the daemon with defaults
//	twind
//
//	# Point at a specific config file
//	twind -config /etc/twind/config.yaml
//
//	# Configure via environment
//	SERVER_PORT=8800 LLM_API_KEY=sk-... twind
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yauheniya-ai/twind/internal/config"
	"github.com/yauheniya-ai/twind/internal/embeddings"
	"github.com/yauheniya-ai/twind/internal/events"
	twinhttp "github.com/yauheniya-ai/twind/internal/http"
	"github.com/yauheniya-ai/twind/internal/index"
	"github.com/yauheniya-ai/twind/internal/llm"
	"github.com/yauheniya-ai/twind/internal/logging"
	"github.com/yauheniya-ai/twind/internal/telemetry"
	"github.com/yauheniya-ai/twind/internal/tts"
	"github.com/yauheniya-ai/twind/internal/twin"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("twind\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the daemon and blocks until the context is cancelled.
func run(ctx context.Context, configPath string) error {
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

	logger.Info("starting twind",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("vectorstore", cfg.VectorStore.Provider),
		zap.Bool("tts", cfg.TTS.Enabled))

	shutdownMetrics, err := telemetry.Setup("twind", version)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownMetrics(shutdownCtx)
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

	// The daemon serves an existing index; it never builds one.
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

	var synth tts.Synthesizer
	if cfg.TTS.Enabled {
		ttsClient, err := tts.NewClient(tts.Config{
			BaseURL: cfg.TTS.BaseURL,
			Model:   cfg.TTS.Model,
			Voice:   cfg.TTS.Voice,
			APIKey:  cfg.TTS.APIKey,
		}, logger)
		if err != nil {
			return fmt.Errorf("initializing tts client: %w", err)
		}
		synth = ttsClient
	}

	publisher, err := events.NewPublisher(events.Config{
		URL:     cfg.Events.URL,
		Subject: cfg.Events.Subject,
	}, logger)
	if err != nil {
		// Event publishing is best-effort; the twin answers without it.
		logger.Warn("event publishing disabled", zap.Error(err))
		publisher = nil
	}
	defer publisher.Close()

	tw := twin.New(store, client, logger)

	server, err := twinhttp.NewServer(tw, synth, publisher, logger, &twinhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
