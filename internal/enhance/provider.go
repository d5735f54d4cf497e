package enhance

import "context"

// Provider sends a prompt to an LLM and returns the raw text response.
// Used only by the Enhancer; not exported to the rest of the system.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
