package synthesizer

import "context"

// Synthesizer answers a question from snippets ordered most relevant first.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, snippets []string) (string, error)
}
