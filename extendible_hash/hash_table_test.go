package extendible_hash

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
)

// identity keeps the directory arithmetic visible, slot = key & mask
func identity(key uint64) uint64 { return key }

func randomQuote() string {
	quote := struct {
		Sentence string `faker:"sentence"`
	}{}

	if err := faker.FakeData(&quote); err != nil {
		fmt.Println(err)
		return ""
	}

	return quote.Sentence
}

func Test_HashTable_Insert_Then_Find_Sync(t *testing.T) {
	table := NewHashTable[uint64, string](4)

	table.Insert(1, "page-1")
	got, ok := table.Find(1)
	assert.True(t, ok)
	assert.Equal(t, "page-1", got)

	table.Insert(1, "page-1-bis")
	got, ok = table.Find(1)
	assert.True(t, ok)
	assert.Equal(t, "page-1-bis", got)

	_, ok = table.Find(2)
	assert.False(t, ok)

	// verify stats
	stats := table.GetStats()
	assert.Equal(t, int64(2), stats.statHit)
	assert.Equal(t, int64(1), stats.statMiss)
	assert.Equal(t, int64(2), stats.statSet)
	assert.Equal(t, int64(1), stats.statNodes)
}

func Test_HashTable_Split_And_Grow_Deterministic(t *testing.T) {
	table := NewHashTable[uint64, string](2, WithHashFn(identity))

	assert.Equal(t, 0, table.GetGlobalDepth())
	assert.Equal(t, 1, table.GetNumBuckets())
	assert.Equal(t, 0, table.GetLocalDepth(0))

	// two pairs fit in the single depth-0 bucket
	table.Insert(0, "p0")
	table.Insert(1, "p1")
	assert.Equal(t, 0, table.GetGlobalDepth())
	assert.Equal(t, 1, table.GetNumBuckets())

	// key 2 overflows it, one double plus one split on bit 0
	table.Insert(2, "p2")
	assert.Equal(t, 1, table.GetGlobalDepth())
	assert.Equal(t, 2, table.GetNumBuckets())
	assert.Equal(t, 1, table.GetLocalDepth(0))
	assert.Equal(t, 1, table.GetLocalDepth(1))

	// key 4 overflows the even bucket, split on bit 1
	table.Insert(4, "p4")
	assert.Equal(t, 2, table.GetGlobalDepth())
	assert.Equal(t, 3, table.GetNumBuckets())
	for slot, want := range []int{2, 1, 2, 1} {
		assert.Equal(t, want, table.GetLocalDepth(slot), fmt.Sprintf("local depth of slot %v", slot))
	}

	// key 6 lands in the 0b10 bucket without growth
	table.Insert(6, "p6")
	assert.Equal(t, 2, table.GetGlobalDepth())
	assert.Equal(t, 3, table.GetNumBuckets())

	// key 10 overflows the 0b10 bucket, split on bit 2
	table.Insert(10, "p10")
	assert.Equal(t, 3, table.GetGlobalDepth())
	assert.Equal(t, 4, table.GetNumBuckets())
	for slot, want := range []int{2, 1, 3, 1, 2, 1, 3, 1} {
		assert.Equal(t, want, table.GetLocalDepth(slot), fmt.Sprintf("local depth of slot %v", slot))
	}

	for key, want := range map[uint64]string{0: "p0", 1: "p1", 2: "p2", 4: "p4", 6: "p6", 10: "p10"} {
		got, ok := table.Find(key)
		assert.True(t, ok, fmt.Sprintf("key %v should exist", key))
		assert.Equal(t, want, got)
	}

	stats := table.GetStats()
	assert.Equal(t, int64(3), stats.statGrow)
	assert.Equal(t, int64(3), stats.statSplit)
	assert.Equal(t, int64(6), stats.statNodes)
	assert.NoError(t, table.verifyIntegrity())
}

func Test_HashTable_Overwrite_Does_Not_Split(t *testing.T) {
	table := NewHashTable[uint64, string](2, WithHashFn(identity))
	table.Insert(0, "p0")
	table.Insert(1, "p1")

	// the bucket is full, but a known key is overwritten in place
	table.Insert(1, "p1-bis")
	assert.Equal(t, 0, table.GetGlobalDepth())
	assert.Equal(t, 1, table.GetNumBuckets())

	got, ok := table.Find(1)
	assert.True(t, ok)
	assert.Equal(t, "p1-bis", got)
	assert.Equal(t, int64(2), table.GetStats().statNodes)
}

func Test_HashTable_Remove_Never_Shrinks(t *testing.T) {
	table := NewHashTable[uint64, string](2, WithHashFn(identity))
	keys := []uint64{0, 1, 2, 4, 6, 10}
	for _, key := range keys {
		table.Insert(key, "dummy")
	}
	assert.Equal(t, 3, table.GetGlobalDepth())
	assert.Equal(t, 4, table.GetNumBuckets())

	assert.False(t, table.Remove(3))
	for _, key := range keys {
		assert.True(t, table.Remove(key), fmt.Sprintf("key %v should be removed", key))
	}
	for _, key := range keys {
		_, ok := table.Find(key)
		assert.False(t, ok)
	}

	// the directory keeps its shape, empty buckets are never merged
	assert.Equal(t, 3, table.GetGlobalDepth())
	assert.Equal(t, 4, table.GetNumBuckets())
	assert.Zero(t, table.GetStats().statNodes)
	assert.NoError(t, table.verifyIntegrity())

	// freed room is reusable without further growth
	table.Insert(0, "back")
	assert.Equal(t, 3, table.GetGlobalDepth())
	got, ok := table.Find(0)
	assert.True(t, ok)
	assert.Equal(t, "back", got)
}

func Test_HashTable_Colliding_Hashes_Stay_Distinct(t *testing.T) {
	// every odd key shares a slot, the bucket separates them by key equality
	table := NewHashTable[uint64, string](4, WithHashFn(func(key uint64) uint64 {
		return key % 2
	}))

	table.Insert(1, "p1")
	table.Insert(3, "p3")
	table.Insert(5, "p5")

	for key, want := range map[uint64]string{1: "p1", 3: "p3", 5: "p5"} {
		got, ok := table.Find(key)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := table.Find(7)
	assert.False(t, ok)

	assert.True(t, table.Remove(3))
	got, ok := table.Find(5)
	assert.True(t, ok)
	assert.Equal(t, "p5", got)
}

func Test_HashTable_String_Keys(t *testing.T) {
	table := NewHashTable[string, int](4)

	pairs := make(map[string]int)
	for i := 0; len(pairs) < 500; i++ {
		pairs[fmt.Sprintf("%v-%v", randomQuote(), i)] = i
	}

	for key, value := range pairs {
		table.Insert(key, value)
	}
	for key, want := range pairs {
		got, ok := table.Find(key)
		assert.True(t, ok, fmt.Sprintf("key %q should exist", key))
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int64(len(pairs)), table.GetStats().statNodes)
	assert.NoError(t, table.verifyIntegrity())
}

func Test_HashTable_Custom_Key_Type(t *testing.T) {
	type pageRef struct {
		fileNum uint64
		pageNum uint64
	}

	// a struct key has no built-in hasher
	assert.Panics(t, func() {
		NewHashTable[pageRef, string](4)
	})

	table := NewHashTable[pageRef, string](4, WithHashFn(func(key pageRef) uint64 {
		return hashUint64(key.fileNum<<32 | key.pageNum)
	}))

	for i := uint64(0); i < 100; i++ {
		table.Insert(pageRef{fileNum: i % 4, pageNum: i}, fmt.Sprintf("page-%v", i))
	}
	for i := uint64(0); i < 100; i++ {
		got, ok := table.Find(pageRef{fileNum: i % 4, pageNum: i})
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("page-%v", i), got)
	}
	assert.NoError(t, table.verifyIntegrity())
}

func Test_HashTable_Contract_Violations(t *testing.T) {
	assert.Panics(t, func() {
		NewHashTable[uint64, string](0)
	}, "zero bucket size should be refused")

	table := NewHashTable[uint64, string](2, WithHashFn(identity))
	assert.Panics(t, func() {
		table.GetLocalDepth(-1)
	})
	assert.Panics(t, func() {
		table.GetLocalDepth(1)
	}, "the depth-0 directory has a single slot")
}

func Test_HashTable_Random_Workload_Integrity(t *testing.T) {
	type params struct {
		desc       string
		bucketSize int
		keySpace   uint64
		nOps       int
	}

	tests := []params{
		{"tiny buckets - small key space", 1, 64, 5_000},
		{"small buckets - medium key space", 2, 1024, 20_000},
		{"regular buckets - large key space", 8, 65536, 50_000},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			table := NewHashTable[uint64, uint64](tc.bucketSize)
			mirror := make(map[uint64]uint64)

			r := rand.New(rand.NewSource(time.Now().UnixNano()))
			for i := 0; i < tc.nOps; i++ {
				key := r.Uint64() % tc.keySpace
				switch r.Intn(3) {
				case 0:
					value := r.Uint64()
					table.Insert(key, value)
					mirror[key] = value
				case 1:
					got, ok := table.Find(key)
					want, wantOk := mirror[key]
					assert.Equal(t, wantOk, ok)
					if wantOk {
						assert.Equal(t, want, got)
					}
				case 2:
					_, wantOk := mirror[key]
					assert.Equal(t, wantOk, table.Remove(key))
					delete(mirror, key)
				}
			}

			for key, want := range mirror {
				got, ok := table.Find(key)
				assert.True(t, ok, fmt.Sprintf("key %v should exist", key))
				assert.Equal(t, want, got)
			}
			assert.Equal(t, int64(len(mirror)), table.GetStats().statNodes)
			assert.NoError(t, table.verifyIntegrity())
		})
	}
}

func Test_HashTable_Bulk_Insert_Then_Find_Async(t *testing.T) {
	type params struct {
		desc       string
		bucketSize int
		nKeys      int
	}

	tests := []params{
		{"tiny buckets - small load", 2, 100},
		{"small buckets - medium load", 4, 10_000},
		{"regular buckets - big load", 16, 100_000},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			table := NewHashTable[uint64, uint64](tc.bucketSize)

			wg := new(sync.WaitGroup)
			for i := 0; i < tc.nKeys; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					table.Insert(uint64(i), uint64(i)*10)
					// interleave reads with the writers
					if i%2 == 0 {
						table.Find(uint64(i / 2))
					}
				}()
			}
			wg.Wait()

			for i := 0; i < tc.nKeys; i++ {
				got, ok := table.Find(uint64(i))
				assert.True(t, ok, fmt.Sprintf("key %v should exist", i))
				assert.Equal(t, uint64(i)*10, got)
			}
			assert.Equal(t, int64(tc.nKeys), table.GetStats().statNodes)
			assert.NoError(t, table.verifyIntegrity())
		})
	}
}

func Test_HashTable_Insert_Remove_Async(t *testing.T) {
	table := NewHashTable[uint64, uint64](4)
	nKeys := 10_000

	for i := 0; i < nKeys; i++ {
		table.Insert(uint64(i), uint64(i))
	}

	// remove the odd half while re-reading the even half
	wg := new(sync.WaitGroup)
	for i := 0; i < nKeys; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 1 {
				assert.True(t, table.Remove(uint64(i)))
				return
			}
			_, ok := table.Find(uint64(i))
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	for i := 0; i < nKeys; i++ {
		_, ok := table.Find(uint64(i))
		assert.Equal(t, i%2 == 0, ok, fmt.Sprintf("key %v", i))
	}
	assert.Equal(t, int64(nKeys/2), table.GetStats().statNodes)
	assert.NoError(t, table.verifyIntegrity())
}
