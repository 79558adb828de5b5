package go_buffer_pool

import (
	"go.uber.org/zap"

	"github.com/datnguyenzzz/nogodb/lib/go-buffer-pool/extendible_hash"
	"github.com/datnguyenzzz/nogodb/lib/go-buffer-pool/replacer"
)

// PolicyType selects the eviction policy backing a replacer.
type PolicyType byte

const (
	LRUK PolicyType = iota
	LRU
	Clock
)

// NewHashTable builds an extendible hash table whose buckets hold up to
// bucketSize pairs each. Keys of the built-in integer and string kinds hash
// with murmur3 out of the box, other key types need extendible_hash.WithHashFn.
func NewHashTable[K comparable, V any](bucketSize int, opts ...extendible_hash.Option[K]) IHashTable[K, V] {
	return extendible_hash.NewHashTable[K, V](bucketSize, opts...)
}

// NewReplacer builds the eviction policy for a pool of numFrames frames.
// Options apply to the k-distance policy only.
func NewReplacer(policy PolicyType, numFrames int, opts ...replacer.Option) IReplacer {
	switch policy {
	case LRUK:
		return replacer.NewLRUK(numFrames, opts...)
	case LRU:
		return replacer.NewLRU(numFrames)
	default:
		msg := "unsupported replacement policy"
		zap.L().Error(msg)
		panic(msg)
	}
}

var (
	_ IHashTable[uint64, uint64] = (*extendible_hash.HashTable[uint64, uint64])(nil)
	_ IReplacer                  = (*replacer.LRUKReplacer)(nil)
	_ IReplacer                  = (*replacer.LRUReplacer)(nil)
)
