package ranker

const (
	TopK                = 3
	SimilarityThreshold = 0.7
	DefaultDimensions   = 768
)

type Option func(*Options)

type Options struct {
	TopK       int
	Threshold  float64
	Dimensions int
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

func WithDimensions(dimensions int) Option {
	return func(o *Options) {
		o.Dimensions = dimensions
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:       TopK,
		Threshold:  SimilarityThreshold,
		Dimensions: DefaultDimensions,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
