// Package completion defines the narrow contract units use to reach the
// external text-generation backend: one prompt in, one completion out,
// fallible. Orchestration imposes no policy on top of this call; retry
// behaviour belongs to the client configuration.
package completion

import "context"

// Client produces a completion for a prompt. Implementations must honor
// ctx cancellation and return transport or quota failures as errors.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete implements Client.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
