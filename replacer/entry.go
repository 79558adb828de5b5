package replacer

import "go.uber.org/zap"

// FrameID identifies one buffer-pool frame. A replacer built for n frames
// accepts ids in [0, n).
type FrameID int64

// entry tracks one frame's access history. A live entry is linked into
// exactly one of the two rings, history or cache.
type entry struct {
	id        FrameID
	count     int
	evictable bool
	inHistory bool

	prev *entry
	next *entry
}

func (e *entry) remove() {
	if e.prev == nil || e.next == nil {
		msg := "remove a zombie node"
		zap.L().Error(msg)
		panic(msg)
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

// insert another right after e, e <--> another <--> e.next
func (e *entry) insert(another *entry) {
	tmp := e.next
	e.next = another
	another.prev = e
	another.next = tmp
	tmp.prev = another
}

// newRing builds the dummy node of an empty ring.
//
//	dummy <--> newest <--> .... <--> oldest <--> dummy
func newRing() *entry {
	dummy := &entry{}
	dummy.prev = dummy
	dummy.next = dummy
	return dummy
}

func checkFrame(id FrameID, replacerSize int) {
	if id < 0 || id >= FrameID(replacerSize) {
		msg := "frame id out of range"
		zap.L().Error(msg)
		panic(msg)
	}
}
