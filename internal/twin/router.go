package twin

import (
	"context"
	"fmt"
	"strings"

	"github.com/yauheniya-ai/twind/internal/llm"
	"go.uber.org/zap"
)

// routingPrompt asks the model to canonicalize the question into English
// and pick a data source. The labeled-line response format is parsed by
// parseClassification.
const routingPrompt = `You are a query router. Analyze the question and determine which data source to use.

DATA SOURCES:
1. profile - Use for work experience, jobs, education, degrees, universities, career history, professional background, skills
2. projects - Use for programming projects, code repositories, technical implementations, software development, coding work
3. articles - Use for articles, blog posts, writing, published content, opinions, topics written about, what someone wrote, content they created
4. general - Use for broad overview questions that need multiple sources

EXAMPLES:
- "What did she write about?" -> articles (asking about published content)
- "Tell me about her published articles" -> articles (asking about publications)
- "What topics interest her?" -> articles
- "Where did she study?" -> profile (education)
- "What projects has she built?" -> projects (technical work)
- "Tell me about her" -> general (overview)

USER QUESTION: %s

Respond in this exact format:
TRANSLATED_QUERY: [question in English]
ROUTE: [profile|projects|articles|general]`

// Classification is the router's output, modeled as a tagged value: when
// Parsed is false the model's response carried no usable labels and the
// defaults (original question, general route) apply.
type Classification struct {
	Query  string
	Route  Route
	Parsed bool
}

// Router classifies questions and canonicalizes them into English.
type Router struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewRouter creates a query router.
func NewRouter(client llm.Client, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{llm: client, logger: logger}
}

// Classify routes the question. An upstream model error propagates; a
// malformed response degrades silently to the original question and the
// general route.
func (r *Router) Classify(ctx context.Context, question string) (Classification, error) {
	response, err := r.llm.Complete(ctx, "", fmt.Sprintf(routingPrompt, question))
	if err != nil {
		return Classification{}, fmt.Errorf("classifying question: %w", err)
	}

	cls := parseClassification(response, question)
	if !cls.Parsed {
		r.logger.Warn("unparseable routing response, defaulting to general route",
			zap.String("response", response))
	}

	r.logger.Debug("routed question",
		zap.String("route", string(cls.Route)),
		zap.String("canonical_query", cls.Query),
	)

	return cls, nil
}

// parseClassification extracts the labeled lines from the model's
// free-text response. Each label falls back independently: a missing
// TRANSLATED_QUERY keeps the original question, a missing ROUTE keeps
// the general default.
func parseClassification(response, question string) Classification {
	cls := Classification{
		Query: question,
		Route: RouteGeneral,
	}

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "TRANSLATED_QUERY:"):
			if query := strings.TrimSpace(strings.TrimPrefix(line, "TRANSLATED_QUERY:")); query != "" {
				cls.Query = query
				cls.Parsed = true
			}
		case strings.HasPrefix(line, "ROUTE:"):
			route := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "ROUTE:")))
			cls.Route = ParseRoute(route)
			cls.Parsed = true
		}
	}

	return cls
}
