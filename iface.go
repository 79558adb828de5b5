package go_buffer_pool

import (
	"github.com/datnguyenzzz/nogodb/lib/go-buffer-pool/replacer"
)

// FrameID identifies one buffer-pool frame.
type FrameID = replacer.FrameID

// IHashTable is the page-table contract: a key/value directory that only ever
// grows. Splitting and directory doubling happen behind Insert, callers never
// see a failed insert.
type IHashTable[K comparable, V any] interface {
	// Find returns the value stored under key.
	Find(key K) (V, bool)
	// Insert stores value under key, overwriting any previous value.
	Insert(key K, value V)
	// Remove deletes the pair stored under key, reporting whether a
	// removal happened. Removals never shrink the directory.
	Remove(key K) bool

	// GetGlobalDepth reports how many low-order hash bits select a
	// directory slot.
	GetGlobalDepth() int
	// GetLocalDepth reports the local depth of the bucket referenced by
	// the given directory slot.
	GetLocalDepth(dirIndex int) int
	// GetNumBuckets reports how many distinct buckets the directory
	// references.
	GetNumBuckets() int
}

// IReplacer is the frame eviction contract consumed by a buffer-pool manager.
// Frames enter through RecordAccess pinned, the manager flips them evictable
// with SetEvictable once unpinned, and Evict hands back the policy's victim.
type IReplacer interface {
	// RecordAccess marks one access to the frame.
	RecordAccess(id FrameID)
	// SetEvictable flips whether the frame may be picked as a victim.
	SetEvictable(id FrameID, evictable bool)
	// Evict removes and returns the frame the policy wants reclaimed,
	// reporting false when nothing is evictable.
	Evict() (FrameID, bool)
	// Remove drops a tracked, evictable frame regardless of its position.
	Remove(id FrameID)
	// Size reports how many tracked frames are currently evictable.
	Size() int
}
