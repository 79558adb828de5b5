package replacer

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// LRUReplacer is the recency-only policy: the victim is always the least
// recently touched evictable frame, with no access-count threshold. The
// recency order lives in a simplelru list that holds exactly the evictable
// frames, pinned frames are tracked aside until they turn evictable again.
type LRUReplacer struct {
	mu sync.Mutex

	replacerSize int

	// tracked maps every registered frame to its evictable flag, the lru
	// list holds exactly the frames mapped to true.
	tracked map[FrameID]bool
	lru     *simplelru.LRU[FrameID, struct{}]
}

// NewLRU builds the plain LRU policy for numFrames frames.
func NewLRU(numFrames int) *LRUReplacer {
	if numFrames < 1 {
		msg := "replacer size must be positive"
		zap.L().Error(msg)
		panic(msg)
	}

	// the list never outgrows numFrames, so it never auto-evicts behind
	// our back
	lru, err := simplelru.NewLRU[FrameID, struct{}](numFrames, nil)
	if err != nil {
		zap.L().Error("failed to build the recency list", zap.Error(err))
		panic(err)
	}

	return &LRUReplacer{
		replacerSize: numFrames,
		tracked:      make(map[FrameID]bool),
		lru:          lru,
	}
}

// RecordAccess marks one access to id, registering unseen frames under the
// same full-replacer drop rule as the k-distance policy. Accesses refresh the
// recency of evictable frames only, a pinned frame re-enters the order when
// it next turns evictable.
func (r *LRUReplacer) RecordAccess(id FrameID) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	evictable, ok := r.tracked[id]
	if !ok {
		if r.lru.Len() >= r.replacerSize {
			return
		}
		r.tracked[id] = false
		return
	}
	if evictable {
		r.lru.Add(id, struct{}{})
	}
}

// SetEvictable flips whether id may be picked as a victim. A frame becomes
// the most recently used one at the moment it turns evictable. Untracked
// frames are ignored.
func (r *LRUReplacer) SetEvictable(id FrameID, evictable bool) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	was, ok := r.tracked[id]
	if !ok || was == evictable {
		return
	}

	r.tracked[id] = evictable
	if evictable {
		r.lru.Add(id, struct{}{})
	} else {
		r.lru.Remove(id)
	}
}

// Evict removes and returns the least recently used evictable frame. Reports
// false when nothing is evictable.
func (r *LRUReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _, ok := r.lru.RemoveOldest()
	if !ok {
		return 0, false
	}
	delete(r.tracked, id)
	return id, true
}

// Remove drops a tracked frame, same contract as the k-distance policy: the
// frame must be evictable and untracked frames are ignored.
func (r *LRUReplacer) Remove(id FrameID) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	evictable, ok := r.tracked[id]
	if !ok {
		return
	}
	if !evictable {
		msg := "remove a non-evictable frame"
		zap.L().Error(msg)
		panic(msg)
	}

	r.lru.Remove(id)
	delete(r.tracked, id)
}

// Size reports how many tracked frames are currently evictable.
func (r *LRUReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}
