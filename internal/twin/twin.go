package twin

import (
	"context"
	"errors"
	"fmt"

	"github.com/yauheniya-ai/twind/internal/llm"
	"github.com/yauheniya-ai/twind/internal/vectorstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrEmptyQuestion is returned when Ask receives a blank question.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// Twin runs the full question answering pipeline. All collaborators are
// injected at construction; a Twin holds no mutable state and is safe
// for concurrent Ask calls.
type Twin struct {
	router     *Router
	strategies map[Route]Strategy
	generator  *Generator
	optimizer  *Optimizer
	logger     *zap.Logger
	tracer     trace.Tracer
}

// New wires the pipeline around the injected store and LLM client.
func New(store vectorstore.Store, client llm.Client, logger *zap.Logger) *Twin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Twin{
		router: NewRouter(client, logger),
		strategies: map[Route]Strategy{
			RouteProfile:  NewProfileStrategy(store),
			RouteProjects: NewProjectsStrategy(store),
			RouteArticles: NewArticlesStrategy(store, logger),
			RouteGeneral:  NewGeneralStrategy(store),
		},
		generator: NewGenerator(client, logger),
		optimizer: NewOptimizer(client, logger),
		logger:    logger,
		tracer:    otel.Tracer("twind.twin"),
	}
}

// Ask answers one question. The pipeline is fixed: classify, retrieve
// along the selected route, generate an answer from the context, then
// rewrite the answer for speech. A stage error aborts the pipeline, with
// one exception handled inside the articles strategy, which degrades to
// plain similarity search.
func (t *Twin) Ask(ctx context.Context, question string) (Result, error) {
	ctx, span := t.tracer.Start(ctx, "twin.ask")
	defer span.End()

	if question == "" {
		return Result{}, ErrEmptyQuestion
	}

	conv := newConversation(question)

	if err := t.classify(ctx, conv); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.String("twin.route", string(conv.Route)))

	if err := t.retrieve(ctx, conv); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	if err := t.answer(ctx, conv); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	if err := t.optimize(ctx, conv); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	t.logger.Info("answered question",
		zap.String("route", string(conv.Route)),
		zap.Int("context_blocks", len(conv.Context)),
		zap.Int("answer_chars", len(conv.FinalAnswer)),
	)

	return Result{Text: conv.FinalAnswer, Route: conv.Route}, nil
}

func (t *Twin) classify(ctx context.Context, conv *Conversation) error {
	ctx, span := t.tracer.Start(ctx, "twin.classify")
	defer span.End()

	cls, err := t.router.Classify(ctx, conv.Question)
	if err != nil {
		return err
	}

	conv.CanonicalQuery = cls.Query
	conv.Route = cls.Route
	conv.append(RoleSystem, routeMarker(cls.Route, cls.Query))
	return nil
}

func (t *Twin) retrieve(ctx context.Context, conv *Conversation) error {
	ctx, span := t.tracer.Start(ctx, "twin.retrieve")
	defer span.End()

	strategy, ok := t.strategies[conv.Route]
	if !ok {
		// Unreachable with ParseRoute defaulting, kept as a guard.
		return fmt.Errorf("no strategy for route %q", conv.Route)
	}

	blocks, err := strategy.Retrieve(ctx, conv.CanonicalQuery)
	if err != nil {
		return err
	}

	conv.Context = blocks
	conv.append(RoleSystem, joinContext(blocks))
	return nil
}

func (t *Twin) answer(ctx context.Context, conv *Conversation) error {
	ctx, span := t.tracer.Start(ctx, "twin.answer")
	defer span.End()

	answer, err := t.generator.Generate(ctx, conv.CanonicalQuery, conv.Context)
	if err != nil {
		return err
	}

	conv.RawAnswer = answer
	conv.append(RoleAssistant, answer)
	return nil
}

// optimize rewrites the raw answer for speech. The rewritten text
// replaces the assistant's last message in place rather than appending,
// since it supersedes the raw answer.
func (t *Twin) optimize(ctx context.Context, conv *Conversation) error {
	ctx, span := t.tracer.Start(ctx, "twin.optimize")
	defer span.End()

	final, err := t.optimizer.Optimize(ctx, conv.RawAnswer)
	if err != nil {
		return err
	}

	conv.FinalAnswer = final
	conv.replaceLast(final)
	return nil
}
