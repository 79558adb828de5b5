package replacer

import (
	"sync"

	"go.uber.org/zap"
)

// LRUKReplacer picks eviction victims by backward k-distance. Frames with
// fewer than k recorded accesses have infinite distance and are always
// preferred, oldest first access first. Frames at or past k accesses live in
// the cache ring, ordered by how recently they were touched.
//
// A single mutex serializes every operation.
type LRUKReplacer struct {
	mu sync.Mutex

	// options
	k int

	replacerSize int
	currSize     int

	// history ring holds entries with fewer than k accesses, newest first
	// observation at the head. Re-accesses below the threshold do not
	// reorder it.
	history *entry
	// cache ring holds entries with at least k accesses, most recently
	// touched at the head.
	cache *entry

	table map[FrameID]*entry
}

// NewLRUK builds a replacer able to pick victims among numFrames frames. The
// history threshold defaults to 2, see WithHistoryDepth.
func NewLRUK(numFrames int, opts ...Option) *LRUKReplacer {
	if numFrames < 1 {
		msg := "replacer size must be positive"
		zap.L().Error(msg)
		panic(msg)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.k < 1 {
		msg := "history depth must be positive"
		zap.L().Error(msg)
		panic(msg)
	}

	return &LRUKReplacer{
		k:            o.k,
		replacerSize: numFrames,
		history:      newRing(),
		cache:        newRing(),
		table:        make(map[FrameID]*entry),
	}
}

// RecordAccess marks one access to id. The first access to an unseen frame
// registers it at the history head, unless the evictable count has already
// reached the replacer size, then the access is dropped and no entry is
// created. Reaching the history threshold moves the entry to the cache head,
// and so does every access after that.
func (r *LRUKReplacer) RecordAccess(id FrameID) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.table[id]
	if !ok {
		if r.isFull() {
			return
		}
		e = &entry{id: id, inHistory: true}
		r.history.insert(e)
		r.table[id] = e
	}

	e.count++
	if e.count < r.k {
		// history keeps first-access order, nothing to reorder
		return
	}

	e.remove()
	e.inHistory = false
	r.cache.insert(e)
}

// SetEvictable flips whether id may be picked as a victim, keeping Size in
// step. Untracked frames are ignored.
func (r *LRUKReplacer) SetEvictable(id FrameID, evictable bool) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.table[id]
	if !ok {
		return
	}

	if e.evictable && !evictable {
		r.currSize--
	} else if !e.evictable && evictable {
		r.currSize++
	}
	e.evictable = evictable
}

// Evict removes and returns the evictable frame with the largest backward
// k-distance: the history ring is scanned from its oldest entry first, then
// the cache ring. Reports false when nothing is evictable.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.evictFrom(r.history); ok {
		return id, ok
	}
	return r.evictFrom(r.cache)
}

// evictFrom unlinks the oldest evictable entry of the ring. Caller must hold
// the lock.
func (r *LRUKReplacer) evictFrom(ring *entry) (FrameID, bool) {
	for e := ring.prev; e != ring; e = e.prev {
		if !e.evictable {
			continue
		}
		e.remove()
		delete(r.table, e.id)
		r.currSize--
		return e.id, true
	}
	return 0, false
}

// Remove drops a tracked frame regardless of its position, clearing its
// access history. The frame must be evictable, removing a pinned frame is a
// contract violation. Untracked frames are ignored.
func (r *LRUKReplacer) Remove(id FrameID) {
	checkFrame(id, r.replacerSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.table[id]
	if !ok {
		return
	}
	if !e.evictable {
		msg := "remove a non-evictable frame"
		zap.L().Error(msg)
		panic(msg)
	}

	e.remove()
	delete(r.table, id)
	r.currSize--
}

// Size reports how many tracked frames are currently evictable.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currSize
}

// isFull reports whether the evictable count has reached the replacer size.
// Caller must hold the lock.
func (r *LRUKReplacer) isFull() bool {
	return r.currSize >= r.replacerSize
}
