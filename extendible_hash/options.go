package extendible_hash

type options[K comparable] struct {
	hashFn HashFn[K]
}

type Option[K comparable] func(o *options[K])

func defaultOptions[K comparable]() options[K] {
	return options[K]{
		hashFn: defaultHashFn[K](),
	}
}

// WithHashFn overrides the built-in murmur3 hasher. Required for key types
// that have no built-in hasher.
func WithHashFn[K comparable](fn HashFn[K]) Option[K] {
	return func(o *options[K]) {
		o.hashFn = fn
	}
}
