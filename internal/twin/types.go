// Package twin implements the digital twin's question answering
// pipeline: route the question, retrieve matching context, generate an
// answer and rewrite it for speech.
package twin

import "fmt"

// Route is the symbolic category selected for a question. Each route is
// bound to exactly one retrieval strategy.
type Route string

const (
	RouteProfile  Route = "profile"
	RouteProjects Route = "projects"
	RouteArticles Route = "articles"
	RouteGeneral  Route = "general"
)

// ParseRoute maps a string onto a Route, defaulting to RouteGeneral for
// anything unrecognized.
func ParseRoute(s string) Route {
	switch Route(s) {
	case RouteProfile, RouteProjects, RouteArticles, RouteGeneral:
		return Route(s)
	default:
		return RouteGeneral
	}
}

// Role identifies who produced a conversation message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation transcript.
type Message struct {
	Role    Role
	Content string
}

// ContextBlock is retrieved context from one document source, formatted
// with a source-labeled heading.
type ContextBlock struct {
	// Source is the document source tag the block came from.
	Source string

	// Text is the heading plus the concatenated passages.
	Text string
}

// Conversation is the transient per-request pipeline state. One Ask
// call owns it exclusively; nothing survives across calls.
//
// The message list is append-only within one Ask call, except for the
// final speech optimization step, which replaces the last entry in
// place since the rewritten answer supersedes the raw one.
type Conversation struct {
	Messages       []Message
	Question       string
	CanonicalQuery string
	Route          Route
	Context        []ContextBlock
	RawAnswer      string
	FinalAnswer    string
}

// newConversation starts a fresh conversation around one question.
func newConversation(question string) *Conversation {
	return &Conversation{
		Question: question,
		Messages: []Message{{Role: RoleHuman, Content: question}},
	}
}

// append adds a message to the transcript.
func (c *Conversation) append(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// replaceLast swaps the content of the most recent message in place.
func (c *Conversation) replaceLast(content string) {
	if len(c.Messages) == 0 {
		return
	}
	c.Messages[len(c.Messages)-1].Content = content
}

// Result is the outcome of one Ask call.
type Result struct {
	// Text is the final, speech-optimized answer.
	Text string

	// Route is the category the question was classified into.
	Route Route
}

// routeMarker records the routing decision in the transcript.
func routeMarker(route Route, query string) string {
	return fmt.Sprintf("[Route: %s | Query: %s]", route, query)
}
