package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup(t *testing.T) {
	shutdown, err := Setup("twind-test", "0.0.0")
	require.NoError(t, err)
	defer shutdown(context.Background())

	// Instruments created via the global meter must not error.
	meter := otel.Meter("twind-test")
	counter, err := meter.Int64Counter("twind.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	// Spans created via the global tracer must actually record.
	_, span := otel.Tracer("twind-test").Start(context.Background(), "test.span")
	defer span.End()
	require.True(t, span.IsRecording())
	require.True(t, span.SpanContext().IsValid())
}
