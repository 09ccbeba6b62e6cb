package roomrag

import (
	"io"

	"github.com/w-h-a/roomrag/internal/service/question"
	"github.com/w-h-a/roomrag/internal/service/ranker"
)

type Timeouts = question.Timeouts

type Option func(*Options)

type Options struct {
	Dimensions int
	Timeouts   Timeouts
	Closers    []io.Closer
}

// WithDimensions sets the embedding size every stored segment was built with.
func WithDimensions(dimensions int) Option {
	return func(o *Options) {
		o.Dimensions = dimensions
	}
}

func WithTimeouts(timeouts Timeouts) Option {
	return func(o *Options) {
		o.Timeouts = timeouts
	}
}

// WithCloser registers a resource released by Close, in reverse order.
func WithCloser(c io.Closer) Option {
	return func(o *Options) {
		o.Closers = append(o.Closers, c)
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimensions: ranker.DefaultDimensions,
		Timeouts:   question.NewOptions().Timeouts,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
