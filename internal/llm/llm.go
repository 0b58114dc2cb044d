// Package llm abstracts the chat-completion provider used for SQL generation
// and answer synthesis.
package llm

import "context"

// Client is a single-turn chat completion. Implementations must be safe for
// concurrent use.
type Client interface {
	Complete(ctx context.Context, system, user string, opts ...Option) (string, error)
}

type callOptions struct {
	temperature *float64
	maxTokens   *int
}

type Option func(*callOptions)

func WithTemperature(temperature float64) Option {
	return func(o *callOptions) { o.temperature = &temperature }
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *callOptions) { o.maxTokens = &maxTokens }
}

func applyOptions(opts []Option) callOptions {
	var resolved callOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}
