package narrative

import "context"

// Provider generates free-form text from a prompt. Implementations wrap an
// inference service; the engine treats the output as opaque strings.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
