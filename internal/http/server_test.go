package http

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yauheniya-ai/twind/internal/twin"
	"go.uber.org/zap"
)

// fakeTwin scripts Ask results.
type fakeTwin struct {
	result twin.Result
	err    error
	asked  []string
}

func (f *fakeTwin) Ask(ctx context.Context, question string) (twin.Result, error) {
	f.asked = append(f.asked, question)
	return f.result, f.err
}

// fakeSynth scripts audio synthesis.
type fakeSynth struct {
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f.audio, f.err
}

func newTestServer(t *testing.T, asker Asker, synth *fakeSynth) *Server {
	t.Helper()

	var s *Server
	var err error
	if synth == nil {
		s, err = NewServer(asker, nil, nil, zap.NewNop(), nil)
	} else {
		s, err = NewServer(asker, synth, nil, zap.NewNop(), nil)
	}
	require.NoError(t, err)
	return s
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &fakeTwin{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleAsk(t *testing.T) {
	ft := &fakeTwin{result: twin.Result{Text: "She studied data science.", Route: twin.RouteProfile}}
	s := newTestServer(t, ft, nil)

	body := `{"question":"Where did she study?","user_id":"u1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "She studied data science.", resp.Text)
	assert.Empty(t, resp.Audio, "audio must be empty when synthesis is disabled")
	assert.Equal(t, []string{"Where did she study?"}, ft.asked)
}

func TestHandleAskWithAudio(t *testing.T) {
	ft := &fakeTwin{result: twin.Result{Text: "hello", Route: twin.RouteGeneral}}
	synth := &fakeSynth{audio: []byte("wav-bytes")}
	s := newTestServer(t, ft, synth)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set(echoHeaderContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, hex.EncodeToString([]byte("wav-bytes")), resp.Audio)
}

func TestHandleAskMissingQuestion(t *testing.T) {
	s := newTestServer(t, &fakeTwin{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set(echoHeaderContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAskPipelineError(t *testing.T) {
	ft := &fakeTwin{err: errors.New("model unavailable")}
	s := newTestServer(t, ft, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set(echoHeaderContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model unavailable")
}

func TestHandleAskSynthesisError(t *testing.T) {
	ft := &fakeTwin{result: twin.Result{Text: "hello", Route: twin.RouteGeneral}}
	synth := &fakeSynth{err: errors.New("voice unavailable")}
	s := newTestServer(t, ft, synth)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"hi"}`))
	req.Header.Set(echoHeaderContentType())
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "voice unavailable")
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, nil, nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(&fakeTwin{}, nil, nil, nil, nil)
	assert.Error(t, err)
}

// echoHeaderContentType returns the JSON content type header pair.
func echoHeaderContentType() (string, string) {
	return "Content-Type", "application/json"
}
