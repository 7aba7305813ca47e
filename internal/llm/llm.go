package llm

import "context"

// Completer turns a single prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NoResponse stands in for an answer when the provider returns no completion at all.
const NoResponse = "No response received."

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
