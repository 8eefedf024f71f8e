// Package llm wraps chat-completion providers behind a small interface so the
// pipeline and suggestion code can run against a remote model or a mock.
package llm

import (
	"context"
	"errors"
)

// ErrNoResponse is returned when the provider answered but produced no
// usable completion text.
var ErrNoResponse = errors.New("llm: empty response")

// Provider generates a text completion for a prompt.
type Provider interface {
	// Complete sends prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}
