package twin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLLM scripts Complete responses for pipeline tests.
type fakeLLM struct {
	fn func(system, prompt string) (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f.fn(system, prompt)
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantQuery string
		wantRoute Route
		parsed    bool
	}{
		{
			name:      "profile route",
			response:  "TRANSLATED_QUERY: Where did she study?\nROUTE: profile",
			wantQuery: "Where did she study?",
			wantRoute: RouteProfile,
			parsed:    true,
		},
		{
			name:      "projects route",
			response:  "TRANSLATED_QUERY: What has she built?\nROUTE: projects",
			wantQuery: "What has she built?",
			wantRoute: RouteProjects,
			parsed:    true,
		},
		{
			name:      "articles route",
			response:  "TRANSLATED_QUERY: What did she write about?\nROUTE: articles",
			wantQuery: "What did she write about?",
			wantRoute: RouteArticles,
			parsed:    true,
		},
		{
			name:      "general route",
			response:  "TRANSLATED_QUERY: Tell me about her\nROUTE: general",
			wantQuery: "Tell me about her",
			wantRoute: RouteGeneral,
			parsed:    true,
		},
		{
			name:      "unparseable response defaults silently",
			response:  "I am not sure",
			wantQuery: "original question",
			wantRoute: RouteGeneral,
			parsed:    false,
		},
		{
			name:      "missing query keeps original question",
			response:  "ROUTE: articles",
			wantQuery: "original question",
			wantRoute: RouteArticles,
			parsed:    true,
		},
		{
			name:      "unknown route falls back to general",
			response:  "TRANSLATED_QUERY: something\nROUTE: linkedin",
			wantQuery: "something",
			wantRoute: RouteGeneral,
			parsed:    true,
		},
		{
			name:      "surrounding chatter is ignored",
			response:  "Let me think.\nTRANSLATED_QUERY: career history\n  ROUTE: profile  \nDone.",
			wantQuery: "career history",
			wantRoute: RouteProfile,
			parsed:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := parseClassification(tt.response, "original question")
			assert.Equal(t, tt.wantQuery, cls.Query)
			assert.Equal(t, tt.wantRoute, cls.Route)
			assert.Equal(t, tt.parsed, cls.Parsed)
		})
	}
}

func TestRouterClassify(t *testing.T) {
	client := &fakeLLM{fn: func(system, prompt string) (string, error) {
		return "TRANSLATED_QUERY: Where did she study?\nROUTE: profile", nil
	}}
	router := NewRouter(client, zap.NewNop())

	cls, err := router.Classify(context.Background(), "Wo hat sie studiert?")
	require.NoError(t, err)
	assert.Equal(t, RouteProfile, cls.Route)
	assert.Equal(t, "Where did she study?", cls.Query)
	assert.True(t, cls.Parsed)
}

func TestRouterClassifyLLMError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	client := &fakeLLM{fn: func(system, prompt string) (string, error) {
		return "", wantErr
	}}
	router := NewRouter(client, zap.NewNop())

	_, err := router.Classify(context.Background(), "anything")
	require.ErrorIs(t, err, wantErr)
}

func TestParseRoute(t *testing.T) {
	assert.Equal(t, RouteProfile, ParseRoute("profile"))
	assert.Equal(t, RouteProjects, ParseRoute("projects"))
	assert.Equal(t, RouteArticles, ParseRoute("articles"))
	assert.Equal(t, RouteGeneral, ParseRoute("general"))
	assert.Equal(t, RouteGeneral, ParseRoute("nonsense"))
	assert.Equal(t, RouteGeneral, ParseRoute(""))
}
