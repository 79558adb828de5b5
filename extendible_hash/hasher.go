package extendible_hash

import (
	"encoding/binary"

	"github.com/twmb/murmur3"
)

// HashFn computes the hash of a key. The directory keeps only the low-order
// bits of the result, so the function must spread entropy into them.
type HashFn[K comparable] func(key K) uint64

func lowMask(depth int) uint64 {
	return (uint64(1) << depth) - 1
}

func hashUint64(v uint64) uint64 {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return murmur3.Sum64(buf)
}

// defaultHashFn picks a murmur3 backed hasher for the common key kinds, or
// nil when the key type has no built-in hasher.
func defaultHashFn[K comparable]() HashFn[K] {
	var zero K
	switch any(zero).(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return func(key K) uint64 {
			return hashUint64(numericKey(key))
		}
	case string:
		return func(key K) uint64 {
			return murmur3.StringSum64(any(key).(string))
		}
	default:
		return nil
	}
}

func numericKey[K comparable](key K) uint64 {
	switch k := any(key).(type) {
	case int:
		return uint64(k)
	case int8:
		return uint64(k)
	case int16:
		return uint64(k)
	case int32:
		return uint64(k)
	case int64:
		return uint64(k)
	case uint:
		return uint64(k)
	case uint8:
		return uint64(k)
	case uint16:
		return uint64(k)
	case uint32:
		return uint64(k)
	case uint64:
		return k
	case uintptr:
		return uint64(k)
	}
	return 0
}
