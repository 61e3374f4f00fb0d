// Package command classifies raw chat text into typed results.
// Handlers are registered explicitly at startup; there is no runtime
// discovery of any kind.
package command

import "strings"

// marker starts every structured command.
const marker = "@"

// Result is the tagged outcome of classifying one inbound message.
type Result interface{ kind() string }

// Plain is ordinary chat text with no command marker.
type Plain struct {
	Text string
}

// MovieShare is a validated movie URL to broadcast to the room.
type MovieShare struct {
	URL string
}

// AssistantQA is a question answered by the assistant knowledge base.
type AssistantQA struct {
	Question string
	Answer   string
}

// Unknown is a marker token with no registered handler. Known lists the
// registered tokens for the error message shown to the sender.
type Unknown struct {
	Token string
	Known []string
}

// Invalid is a command that failed its handler validation.
type Invalid struct {
	Reason string
}

func (Plain) kind() string       { return "plain" }
func (MovieShare) kind() string  { return "movie" }
func (AssistantQA) kind() string { return "assistant" }
func (Unknown) kind() string     { return "unknown" }
func (Invalid) kind() string     { return "invalid" }

// Handler processes one command token. Validate rejects malformed
// arguments before Execute runs; Execute never fails on user input, it
// returns an Invalid result instead.
type Handler interface {
	Token() string
	Validate(args string) error
	Execute(args string) Result
}

// Classifier holds the static handler table. Registration order is
// preserved so Unknown listings stay stable.
type Classifier struct {
	handlers map[string]Handler
	tokens   []string
}

// NewClassifier builds a classifier over an explicit handler list.
// Later registrations of the same token win.
func NewClassifier(handlers ...Handler) *Classifier {
	c := &Classifier{handlers: make(map[string]Handler)}
	for _, h := range handlers {
		token := strings.ToLower(h.Token())
		if _, ok := c.handlers[token]; !ok {
			c.tokens = append(c.tokens, h.Token())
		}
		c.handlers[token] = h
	}
	return c
}

// Tokens returns the registered command tokens in registration order.
func (c *Classifier) Tokens() []string {
	out := make([]string, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Classify decides whether text is a structured command and produces a
// typed result. Text without the leading marker passes through as Plain.
func (c *Classifier) Classify(text string) Result {
	if !strings.HasPrefix(text, marker) {
		return Plain{Text: text}
	}

	token, args := splitCommand(text)
	handler, ok := c.handlers[strings.ToLower(token)]
	if !ok {
		return Unknown{Token: token, Known: c.Tokens()}
	}

	if err := handler.Validate(args); err != nil {
		return Invalid{Reason: err.Error()}
	}
	return handler.Execute(args)
}

// splitCommand separates the marker token from its argument on the
// first whitespace. The argument keeps its internal spacing.
func splitCommand(text string) (token, args string) {
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		return text[:i], strings.TrimSpace(text[i+1:])
	}
	return text, ""
}
