package twin

import (
	"context"
	"fmt"
	"strings"

	"github.com/yauheniya-ai/twind/internal/llm"
	"go.uber.org/zap"
)

// answerSystemPrompt constrains generation to the retrieved context.
// The twin speaks about its person in the third person and always in
// English, whatever language the question arrived in.
const answerSystemPrompt = `You are a digital twin assistant answering questions about Yauheniya on her behalf.

Rules:
- Answer ONLY from the context provided below. If the context does not
  contain the answer, say you don't have that information. Never invent
  facts about her background, projects, or writing.
- Refer to Yauheniya in the third person.
- Always answer in English, regardless of the question's language.
- When mentioning a project or article, use its title.
- Be concise and conversational.`

// Generator produces the raw answer from a question and its context.
type Generator struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewGenerator creates an answer generator.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: client, logger: logger}
}

// Generate asks the LLM to answer the canonicalized question using the
// retrieved context. Empty or no-result context still produces an
// answer; the model is instructed to state what it doesn't know rather
// than the pipeline failing.
func (g *Generator) Generate(ctx context.Context, question string, blocks []ContextBlock) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", joinContext(blocks), question)

	answer, err := g.llm.Complete(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	g.logger.Debug("generated answer",
		zap.Int("context_blocks", len(blocks)),
		zap.Int("answer_chars", len(answer)))

	return strings.TrimSpace(answer), nil
}

// joinContext flattens context blocks into a single prompt section.
func joinContext(blocks []ContextBlock) string {
	if len(blocks) == 0 {
		return "No documents found."
	}
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n\n")
}
