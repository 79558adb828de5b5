package extendible_hash

// kv is a single key/value pair held by a bucket.
type kv[K comparable, V any] struct {
	key   K
	value V
}

// bucket holds up to capacity pairs whose hashes all agree on the low
// localDepth bits. The directory owns the locking, a bucket is plain data.
type bucket[K comparable, V any] struct {
	capacity   int
	localDepth int
	items      []kv[K, V]
}

func newBucket[K comparable, V any](capacity, localDepth int) *bucket[K, V] {
	return &bucket[K, V]{
		capacity:   capacity,
		localDepth: localDepth,
		items:      make([]kv[K, V], 0, capacity),
	}
}

// find scans for key and returns the stored value.
func (b *bucket[K, V]) find(key K) (V, bool) {
	for i := range b.items {
		if b.items[i].key == key {
			return b.items[i].value, true
		}
	}
	var zero V
	return zero, false
}

// remove deletes the pair matching key, reporting whether a removal happened.
func (b *bucket[K, V]) remove(key K) bool {
	for i := range b.items {
		if b.items[i].key == key {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// insert overwrites the value when key is already present, otherwise appends
// the pair when there is spare capacity. ok is false when the bucket is full
// and the caller has to split it first, added is true when a new pair landed.
func (b *bucket[K, V]) insert(key K, value V) (ok, added bool) {
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return true, false
		}
	}
	if b.isFull() {
		return false, false
	}
	b.items = append(b.items, kv[K, V]{key: key, value: value})
	return true, true
}

func (b *bucket[K, V]) isFull() bool {
	return len(b.items) >= b.capacity
}

// checkCanonical verifies that every stored key masks to the same value at
// the bucket's local depth. Diagnostic only.
func (b *bucket[K, V]) checkCanonical(hash HashFn[K]) bool {
	if len(b.items) == 0 {
		return true
	}
	mask := lowMask(b.localDepth)
	want := hash(b.items[0].key) & mask
	for _, it := range b.items {
		if hash(it.key)&mask != want {
			return false
		}
	}
	return true
}
