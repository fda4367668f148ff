// Package completion is the text-in/text-out contract with the hosted
// language model, plus its implementations.
package completion

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned when no credential is configured.
	ErrNoAPIKey = errors.New("no LLM API key configured (set ARCHITECT_API_KEY, OPENAI_API_KEY or run 'architect keyring set api-key')")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("completion returned no text")
)

// Request is a single prompt with an output budget.
type Request struct {
	Prompt    string
	MaxTokens int
}

// Service generates text for a prompt.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Service.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Error is an upstream failure that carried an HTTP status.
type Error struct {
	StatusCode int
	// Body is the upstream error payload, verbatim.
	Body string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("completion service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, e.Body)
}

// Unavailable is a Service that always fails with err. It stands in when the
// client cannot be configured so callers still take their degraded paths.
func Unavailable(err error) Service {
	return Func(func(context.Context, Request) (string, error) { return "", err })
}
