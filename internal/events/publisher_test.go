package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPublisherDisabledWithoutURL(t *testing.T) {
	pub, err := NewPublisher(Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pub)
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var pub *Publisher

	// Must not panic.
	pub.Publish(AskEvent{Question: "q", Route: "general"})
	pub.Close()
}

func TestAskEventEncoding(t *testing.T) {
	data, err := json.Marshal(AskEvent{
		UserID:     "u1",
		Question:   "Where did she study?",
		Route:      "profile",
		DurationMS: 1200,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"user_id": "u1",
		"question": "Where did she study?",
		"route": "profile",
		"duration_ms": 1200
	}`, string(data))

	// user_id is omitted for anonymous asks.
	data, err = json.Marshal(AskEvent{Question: "q", Route: "general"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "user_id")
}
