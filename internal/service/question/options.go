package question

import "time"

type Option func(*Options)

// Timeouts bound each external call. Zero leaves the call bounded only by the
// caller's context.
type Timeouts struct {
	Embed      time.Duration
	Retrieve   time.Duration
	Synthesize time.Duration
	Persist    time.Duration
}

type Options struct {
	Timeouts Timeouts
}

func WithTimeouts(timeouts Timeouts) Option {
	return func(o *Options) {
		o.Timeouts = timeouts
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeouts: Timeouts{
			Embed:      10 * time.Second,
			Retrieve:   5 * time.Second,
			Synthesize: 30 * time.Second,
			Persist:    5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
