// Package http provides the twin's HTTP API.
package http

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yauheniya-ai/twind/internal/events"
	"github.com/yauheniya-ai/twind/internal/tts"
	"github.com/yauheniya-ai/twind/internal/twin"
	"go.uber.org/zap"
)

// Asker answers questions. Satisfied by *twin.Twin.
type Asker interface {
	Ask(ctx context.Context, question string) (twin.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server exposes the twin over HTTP.
type Server struct {
	echo      *echo.Echo
	twin      Asker
	tts       tts.Synthesizer
	publisher *events.Publisher
	logger    *zap.Logger
	config    *Config
}

// NewServer creates the HTTP server. The synthesizer and publisher are
// optional; nil disables audio and event publishing respectively.
func NewServer(asker Asker, synth tts.Synthesizer, publisher *events.Publisher, logger *zap.Logger, cfg *Config) (*Server, error) {
	if asker == nil {
		return nil, fmt.Errorf("twin cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8800,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		twin:      asker,
		tts:       synth,
		publisher: publisher,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/ask", s.handleAsk)
}

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// AskResponse is the response body for POST /api/ask. Audio is
// hex-encoded WAV bytes, empty when synthesis is disabled.
type AskResponse struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleAsk runs the question answering pipeline and optionally
// synthesizes the answer as audio.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ask request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question field is required")
	}

	ctx := c.Request().Context()
	start := time.Now()

	result, err := s.twin.Ask(ctx, req.Question)
	if err != nil {
		s.logger.Error("ask pipeline failed",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := AskResponse{Text: result.Text}

	if s.tts != nil {
		audio, err := s.tts.Synthesize(ctx, result.Text)
		if err != nil {
			s.logger.Error("speech synthesis failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp.Audio = hex.EncodeToString(audio)
	}

	s.publisher.Publish(events.AskEvent{
		UserID:     req.UserID,
		Question:   req.Question,
		Route:      string(result.Route),
		DurationMS: time.Since(start).Milliseconds(),
	})

	return c.JSON(http.StatusOK, resp)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
