package extendible_hash

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Stats counts the observable side effects over a table's lifetime. The
// structural counters only grow, the directory never shrinks and buckets are
// never merged.
type Stats struct {
	statNodes int64
	statGrow  int64
	statSplit int64
	statHit   int64
	statMiss  int64
	statSet   int64
	statDel   int64
}

// HashTable is an extendible hash table: a growable directory of bucket
// references where the low GetGlobalDepth() bits of a key's hash select the
// slot. Several slots may alias the same bucket until a split separates them.
//
// A single mutex serializes every operation, including the whole
// split-and-grow retry loop inside Insert.
type HashTable[K comparable, V any] struct {
	mu sync.Mutex

	// options
	hashFn HashFn[K]

	bucketSize  int
	globalDepth int
	numBuckets  int
	dir         []*bucket[K, V]

	stats Stats
}

// NewHashTable builds a table whose buckets hold up to bucketSize pairs each.
// The table starts at global depth 0 with a single bucket of local depth 0.
func NewHashTable[K comparable, V any](bucketSize int, opts ...Option[K]) *HashTable[K, V] {
	if bucketSize < 1 {
		msg := "bucket size must be positive"
		zap.L().Error(msg)
		panic(msg)
	}

	o := defaultOptions[K]()
	for _, opt := range opts {
		opt(&o)
	}
	if o.hashFn == nil {
		msg := "key type has no built-in hasher, provide one with WithHashFn"
		zap.L().Error(msg)
		panic(msg)
	}

	return &HashTable[K, V]{
		hashFn:     o.hashFn,
		bucketSize: bucketSize,
		numBuckets: 1,
		dir:        []*bucket[K, V]{newBucket[K, V](bucketSize, 0)},
	}
}

// indexOf resolves the directory slot of key at the current global depth.
// Caller must hold the lock.
func (h *HashTable[K, V]) indexOf(key K) int {
	return int(h.hashFn(key) & lowMask(h.globalDepth))
}

// Find returns the value stored under key.
func (h *HashTable[K, V]) Find(key K) (V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.dir[h.indexOf(key)].find(key)
	if ok {
		h.stats.statHit++
	} else {
		h.stats.statMiss++
	}
	return v, ok
}

// Insert stores value under key, overwriting any previous value. When the
// target bucket is full it is split, doubling the directory first if its
// local depth has caught up with the global depth, and the insert is retried
// until it lands. Inserting never fails.
func (h *HashTable[K, V]) Insert(key K, value V) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		target := h.dir[h.indexOf(key)]
		ok, added := target.insert(key, value)
		if ok {
			h.stats.statSet++
			if added {
				h.stats.statNodes++
			}
			return
		}

		if target.localDepth == h.globalDepth {
			h.growDirectory()
		}
		h.splitBucket(target)
	}
}

// Remove deletes the pair stored under key, reporting whether a removal
// happened.
func (h *HashTable[K, V]) Remove(key K) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ok := h.dir[h.indexOf(key)].remove(key)
	if ok {
		h.stats.statDel++
		h.stats.statNodes--
	}
	return ok
}

// growDirectory doubles the slot sequence, slot i+len aliasing the same
// bucket as slot i. Caller must hold the lock.
func (h *HashTable[K, V]) growDirectory() {
	h.dir = append(h.dir, h.dir...)
	h.globalDepth++
	h.stats.statGrow++
}

// splitBucket splits full into itself and a fresh sibling one level deeper.
// The slots to repoint are derived from the directory itself: every slot that
// still aliases full and has the new discriminating bit set moves to the
// sibling, then the stored pairs are rehashed on that bit. Caller must hold
// the lock and must have grown the directory so that full.localDepth is
// strictly below the global depth.
func (h *HashTable[K, V]) splitBucket(full *bucket[K, V]) {
	bit := uint64(1) << full.localDepth
	full.localDepth++
	sibling := newBucket[K, V](h.bucketSize, full.localDepth)
	h.numBuckets++
	h.stats.statSplit++

	for i := range h.dir {
		if h.dir[i] == full && uint64(i)&bit != 0 {
			h.dir[i] = sibling
		}
	}

	keep := full.items[:0]
	for _, it := range full.items {
		if h.hashFn(it.key)&bit != 0 {
			sibling.items = append(sibling.items, it)
		} else {
			keep = append(keep, it)
		}
	}
	full.items = keep
}

// GetGlobalDepth reports how many low-order hash bits select a directory
// slot. The directory holds exactly 1 << GetGlobalDepth() slots.
func (h *HashTable[K, V]) GetGlobalDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.globalDepth
}

// GetLocalDepth reports the local depth of the bucket referenced by the given
// directory slot.
func (h *HashTable[K, V]) GetLocalDepth(dirIndex int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if dirIndex < 0 || dirIndex >= len(h.dir) {
		msg := "directory index out of range"
		zap.L().Error(msg)
		panic(msg)
	}
	return h.dir[dirIndex].localDepth
}

// GetNumBuckets reports how many distinct buckets the directory references.
func (h *HashTable[K, V]) GetNumBuckets() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.numBuckets
}

// GetStats returns a copy of the table's counters.
func (h *HashTable[K, V]) GetStats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// verifyIntegrity re-checks the structural invariants: the directory length
// matches the global depth, slot groups sharing a bucket agree on the
// bucket's canonical pattern, and every stored pair lives in the bucket its
// hash points at. Diagnostic only, meant for tests.
func (h *HashTable[K, V]) verifyIntegrity() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.dir) != 1<<h.globalDepth {
		return fmt.Errorf("directory has %d slots, want %d", len(h.dir), 1<<h.globalDepth)
	}

	slotsOf := make(map[*bucket[K, V]][]int)
	for i, b := range h.dir {
		slotsOf[b] = append(slotsOf[b], i)
	}
	if len(slotsOf) != h.numBuckets {
		return fmt.Errorf("directory references %d buckets, counter says %d", len(slotsOf), h.numBuckets)
	}

	for b, slots := range slotsOf {
		if b.localDepth > h.globalDepth {
			return fmt.Errorf("local depth %d exceeds global depth %d", b.localDepth, h.globalDepth)
		}
		if len(b.items) > b.capacity {
			return fmt.Errorf("bucket holds %d pairs, capacity is %d", len(b.items), b.capacity)
		}
		if want := 1 << (h.globalDepth - b.localDepth); len(slots) != want {
			return fmt.Errorf("bucket at local depth %d is aliased by %d slots, want %d", b.localDepth, len(slots), want)
		}
		mask := lowMask(b.localDepth)
		pattern := uint64(slots[0]) & mask
		for _, s := range slots {
			if uint64(s)&mask != pattern {
				return fmt.Errorf("slot %d breaks canonical pattern %d at local depth %d", s, pattern, b.localDepth)
			}
		}
		for _, it := range b.items {
			if h.hashFn(it.key)&mask != pattern {
				return fmt.Errorf("pair hashes to pattern %d, bucket owns pattern %d at local depth %d", h.hashFn(it.key)&mask, pattern, b.localDepth)
			}
		}
	}
	return nil
}
