// Package llm asks a chat-completion service for Javadoc comments and unit
// tests and writes the validated answers back into parsed units.
package llm

import (
	"context"
	"errors"
)

// ErrExhausted is returned when every attempt at a generation failed, either
// because the service errored or because its answer could not be used.
var ErrExhausted = errors.New("llm: attempts exhausted")

// errUnusable marks a response the prompter could not extract anything from.
var errUnusable = errors.New("unusable response")

// SystemPrompt is sent ahead of every request.
const SystemPrompt = "You are a programmer to comment and test your code."

// Completer sends a single prompt and returns the raw response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
