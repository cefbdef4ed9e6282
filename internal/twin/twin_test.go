package twin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
	"go.uber.org/zap"
)

// pipelineLLM answers each Complete call according to which pipeline
// stage is asking, identified by the system prompt.
func pipelineLLM(route string) *fakeLLM {
	return &fakeLLM{fn: func(system, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "TRANSLATED_QUERY"):
			return "TRANSLATED_QUERY: Where did she study?\nROUTE: " + route, nil
		case strings.Contains(system, "digital twin"):
			return "She studied **data science** at university.", nil
		case strings.Contains(system, "read aloud"):
			return "Sure! Here's the spoken version: " + prompt, nil
		default:
			return "", errors.New("unexpected prompt")
		}
	}}
}

func TestTwinAskProfileQuestion(t *testing.T) {
	store := &fakeStore{results: []vectorstore.SearchResult{
		result("MSc in Data Science, University of Example", "profile"),
	}}
	tw := New(store, pipelineLLM("profile"), zap.NewNop())

	res, err := tw.Ask(context.Background(), "Wo hat sie studiert?")
	require.NoError(t, err)

	assert.Equal(t, RouteProfile, res.Route)
	// The final answer is the raw answer rewritten and cleaned: no
	// markdown markers and no chat preamble survive.
	assert.NotContains(t, res.Text, "**")
	assert.NotContains(t, res.Text, "Sure!")
	assert.Contains(t, res.Text, "data science")

	// Retrieval was scoped to the profile source with the canonical query.
	require.Len(t, store.calls, 1)
	assert.Equal(t, "Where did she study?", store.calls[0].query)
	assert.Equal(t, map[string]any{"source": "profile"}, store.calls[0].filters)
}

func TestTwinAskAnswersCanonicalQuery(t *testing.T) {
	// A non-English question is canonicalized by the router; the
	// answer generation prompt must carry the canonical query, not the
	// raw question.
	var answerPrompt string
	client := &fakeLLM{fn: func(system, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "TRANSLATED_QUERY"):
			return "TRANSLATED_QUERY: Where did she study?\nROUTE: profile", nil
		case strings.Contains(system, "digital twin"):
			answerPrompt = prompt
			return "She studied data science.", nil
		case strings.Contains(system, "read aloud"):
			return prompt, nil
		default:
			return "", errors.New("unexpected prompt")
		}
	}}
	store := &fakeStore{results: []vectorstore.SearchResult{
		result("MSc in Data Science", "profile"),
	}}
	tw := New(store, client, zap.NewNop())

	_, err := tw.Ask(context.Background(), "Wo hat sie studiert?")
	require.NoError(t, err)
	assert.Contains(t, answerPrompt, "Question: Where did she study?")
	assert.NotContains(t, answerPrompt, "Wo hat sie studiert?")
}

func TestTwinAskEmptyQuestion(t *testing.T) {
	tw := New(&fakeStore{}, pipelineLLM("general"), zap.NewNop())

	_, err := tw.Ask(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestTwinAskClassifierErrorAborts(t *testing.T) {
	wantErr := errors.New("model unavailable")
	client := &fakeLLM{fn: func(system, prompt string) (string, error) {
		return "", wantErr
	}}
	store := &fakeStore{}
	tw := New(store, client, zap.NewNop())

	_, err := tw.Ask(context.Background(), "anything")
	require.ErrorIs(t, err, wantErr)
	assert.Empty(t, store.calls)
}

func TestTwinAskRetrievalErrorAborts(t *testing.T) {
	wantErr := errors.New("store down")
	store := &fakeStore{searchErr: wantErr}
	tw := New(store, pipelineLLM("profile"), zap.NewNop())

	_, err := tw.Ask(context.Background(), "Where did she study?")
	require.ErrorIs(t, err, wantErr)
}

func TestTwinAskZeroResultsStillAnswers(t *testing.T) {
	// An empty scoped search produces a no-results context block, and
	// the pipeline still completes.
	store := &fakeStore{}
	tw := New(store, pipelineLLM("projects"), zap.NewNop())

	res, err := tw.Ask(context.Background(), "What has she built?")
	require.NoError(t, err)
	assert.Equal(t, RouteProjects, res.Route)
	assert.NotEmpty(t, res.Text)
}

func TestConversationTranscript(t *testing.T) {
	conv := newConversation("question")
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, RoleHuman, conv.Messages[0].Role)

	conv.append(RoleSystem, routeMarker(RouteProfile, "canonical"))
	conv.append(RoleAssistant, "raw answer")
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "[Route: profile | Query: canonical]", conv.Messages[1].Content)

	// Speech optimization replaces the last message in place.
	conv.replaceLast("final answer")
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "final answer", conv.Messages[2].Content)
}

func TestGeneratorIncludesContext(t *testing.T) {
	var gotPrompt string
	client := &fakeLLM{fn: func(system, prompt string) (string, error) {
		gotPrompt = prompt
		return "an answer", nil
	}}
	gen := NewGenerator(client, zap.NewNop())

	blocks := []ContextBlock{
		{Source: "profile", Text: "[Profile Context]\nMSc in Data Science"},
	}
	answer, err := gen.Generate(context.Background(), "Where did she study?", blocks)
	require.NoError(t, err)
	assert.Equal(t, "an answer", answer)
	assert.Contains(t, gotPrompt, "MSc in Data Science")
	assert.Contains(t, gotPrompt, "Where did she study?")
}

func TestJoinContextEmpty(t *testing.T) {
	assert.Equal(t, "No documents found.", joinContext(nil))
}
