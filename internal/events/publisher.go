// Package events publishes ask activity to NATS for downstream
// tracking. Publishing is best-effort and fully optional: a nil
// Publisher is a no-op, and publish failures never affect the answer.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Config configures the event publisher.
type Config struct {
	// URL is the NATS server URL. Empty disables publishing.
	URL string `koanf:"url"`

	// Subject is the subject ask events are published to.
	Subject string `koanf:"subject"`
}

// AskEvent describes one answered question.
type AskEvent struct {
	UserID     string `json:"user_id,omitempty"`
	Question   string `json:"question"`
	Route      string `json:"route"`
	DurationMS int64  `json:"duration_ms"`
}

// Publisher emits ask events to NATS.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to NATS. Returns (nil, nil) when no URL is
// configured, letting callers carry a nil publisher.
func NewPublisher(config Config, logger *zap.Logger) (*Publisher, error) {
	if config.URL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := nats.Connect(config.URL,
		nats.Name("twind"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, subject: config.Subject, logger: logger}, nil
}

// Publish emits one ask event. Safe on a nil receiver; failures are
// logged and swallowed.
func (p *Publisher) Publish(event AskEvent) {
	if p == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode ask event", zap.Error(err))
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("failed to publish ask event",
			zap.String("subject", p.subject),
			zap.Error(err))
	}
}

// Close drains the connection. Safe on a nil receiver.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}
