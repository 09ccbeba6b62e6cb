package synthesizer

import "context"

type Option func(*Options)

type Options struct {
	Instructions []string
	ContextLabel string
	Context      context.Context
}

// WithInstructions replaces the default answering rules.
func WithInstructions(instructions ...string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}

// WithContextLabel sets how the prompt tells the model to refer to the
// snippets when quoting them.
func WithContextLabel(label string) Option {
	return func(o *Options) {
		o.ContextLabel = label
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Instructions: []string{
			"Use only information contained in the context above",
			"If the answer cannot be found in the context, say that there is not enough information to answer",
			"Be objective and concise",
			"Keep an educational and professional tone",
			"Quote relevant passages of the context when appropriate",
		},
		ContextLabel: "room content",
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
