package twin

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yauheniya-ai/twind/internal/llm"
	"go.uber.org/zap"
)

// speechSystemPrompt rewrites a written answer into something a voice
// can read aloud naturally.
const speechSystemPrompt = `You rewrite text so it sounds natural when read aloud by a text-to-speech voice.

Rules:
- Remove all markdown formatting, bullet points, and headings.
- Expand abbreviations and spell out symbols where a listener would
  stumble over them.
- Keep the meaning and all facts exactly as given. Do not add, drop, or
  reorder information.
- Do not add any introduction or commentary. Output only the rewritten
  text.`

// Markup and preamble patterns stripped deterministically after the LLM
// pass. The model usually complies with the prompt, but the cleanup
// guarantees markers never reach the TTS voice.
var (
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern  = regexp.MustCompile(`\*([^*]+)\*`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
	underPattern   = regexp.MustCompile(`_([^_]+)_`)
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	preamblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^sure[!,.]?\s+here['’]?s?\s+.*?:\s*`),
		regexp.MustCompile(`(?i)^here['’]?s?\s+.*?:\s*`),
		regexp.MustCompile(`(?i)^okay[!,.]?\s+`),
		regexp.MustCompile(`(?i)^alright[!,.]?\s+`),
	}
)

// Optimizer converts written answers into speech-friendly text.
type Optimizer struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewOptimizer creates a speech optimizer.
func NewOptimizer(client llm.Client, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{llm: client, logger: logger}
}

// Optimize rewrites text for speech via the LLM, then strips any markup
// or conversational preamble the model left behind.
func (o *Optimizer) Optimize(ctx context.Context, text string) (string, error) {
	rewritten, err := o.llm.Complete(ctx, speechSystemPrompt, text)
	if err != nil {
		return "", fmt.Errorf("optimizing for speech: %w", err)
	}
	return CleanForSpeech(rewritten), nil
}

// CleanForSpeech strips markdown markers and chat preambles. Applied
// after the LLM rewrite, and usable on its own for text that skips the
// model pass.
func CleanForSpeech(text string) string {
	text = strings.TrimSpace(text)

	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")
	text = underPattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")

	for _, p := range preamblePatterns {
		text = p.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}
