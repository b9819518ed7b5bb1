package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/odvcencio/prose/pkg/parser"
)

// Default retry policy: a small fixed number of attempts with a fixed pause.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Options tunes a Generator. Zero values select the defaults.
type Options struct {
	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

// Generator fills in comments and tests on parsed units. Each request is
// retried up to a fixed number of attempts; a response the prompter rejects
// counts as a failed attempt.
type Generator struct {
	completer Completer
	prompter  parser.Prompter
	attempts  int
	delay     time.Duration
	logger    *slog.Logger
}

// NewGenerator returns a Generator that asks c and validates with p.
func NewGenerator(c Completer, p parser.Prompter, opts Options) *Generator {
	g := &Generator{
		completer: c,
		prompter:  p,
		attempts:  opts.Attempts,
		delay:     opts.Delay,
		logger:    opts.Logger,
	}
	if g.attempts < 1 {
		g.attempts = DefaultAttempts
	}
	if g.delay <= 0 {
		g.delay = DefaultDelay
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// CommentClass generates the class documentation.
func (g *Generator) CommentClass(ctx context.Context, c *parser.Class) error {
	lines, err := ask(ctx, g, "class "+c.Name, g.prompter.ClassCommentPrompt(c), g.prompter.ExtractComment)
	if err != nil {
		return err
	}
	c.Comment = lines
	c.HasGeneratedComment = true
	return nil
}

// CommentMethod generates the method documentation.
func (g *Generator) CommentMethod(ctx context.Context, m *parser.Method) error {
	lines, err := ask(ctx, g, "method "+m.Name, g.prompter.MethodCommentPrompt(m), g.prompter.ExtractComment)
	if err != nil {
		return err
	}
	m.Comment = lines
	m.HasGeneratedComment = true
	return nil
}

// TestMethod generates unit tests for the method.
func (g *Generator) TestMethod(ctx context.Context, m *parser.Method) error {
	tests, err := ask(ctx, g, "tests for "+m.Name, g.prompter.MethodTestsPrompt(m), g.prompter.ExtractTests)
	if err != nil {
		return err
	}
	m.Tests = tests
	m.HasGeneratedTests = true
	return nil
}

func ask[T any](ctx context.Context, g *Generator, what, prompt string, extract func(string) (T, bool)) (T, error) {
	var out T
	attempt := 0
	op := func() error {
		attempt++
		resp, err := g.completer.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		v, ok := extract(resp)
		if !ok {
			return errUnusable
		}
		out = v
		return nil
	}
	notify := func(err error, next time.Duration) {
		g.logger.Warn("generation attempt failed", "unit", what, "attempt", attempt, "retry_in", next, "error", err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.delay), uint64(g.attempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		return out, fmt.Errorf("%w: %s after %d attempts: %v", ErrExhausted, what, attempt, err)
	}
	g.logger.Debug("generated", "unit", what, "attempts", attempt)
	return out, nil
}
