package replacer

const defaultHistoryDepth = 2

type options struct {
	k int
}

type Option func(o *options)

func defaultOptions() options {
	return options{
		k: defaultHistoryDepth,
	}
}

// WithHistoryDepth sets how many recorded accesses a frame needs before it
// graduates from the history ring to the cache ring, the K in LRU-K.
func WithHistoryDepth(k int) Option {
	return func(o *options) {
		o.k = k
	}
}
