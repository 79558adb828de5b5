package functional

import (
	"fmt"

	"github.com/go-faker/faker/v4"

	go_buffer_pool "github.com/datnguyenzzz/nogodb/lib/go-buffer-pool"
)

// miniPool wires the two containers together the way a buffer-pool manager
// would: the page table tracks which frame holds a resident page, the
// replacer decides which frame to steal once the free list runs dry.
type miniPool struct {
	pageTable go_buffer_pool.IHashTable[uint64, go_buffer_pool.FrameID]
	replacer  go_buffer_pool.IReplacer

	freeList []go_buffer_pool.FrameID
	resident map[go_buffer_pool.FrameID]uint64
	pins     map[uint64]int
}

func newMiniPool(policy go_buffer_pool.PolicyType, numFrames int) *miniPool {
	p := &miniPool{
		pageTable: go_buffer_pool.NewHashTable[uint64, go_buffer_pool.FrameID](4),
		replacer:  go_buffer_pool.NewReplacer(policy, numFrames),
		resident:  make(map[go_buffer_pool.FrameID]uint64),
		pins:      make(map[uint64]int),
	}
	for id := numFrames - 1; id >= 0; id-- {
		p.freeList = append(p.freeList, go_buffer_pool.FrameID(id))
	}
	return p
}

// fetchPage pins the frame holding pageID, loading it into a free or stolen
// frame first when it is not resident. Reports false when every frame is
// pinned and nothing can be stolen.
func (p *miniPool) fetchPage(pageID uint64) (go_buffer_pool.FrameID, bool) {
	if frame, ok := p.pageTable.Find(pageID); ok {
		p.pins[pageID]++
		p.replacer.RecordAccess(frame)
		p.replacer.SetEvictable(frame, false)
		return frame, true
	}

	var frame go_buffer_pool.FrameID
	if n := len(p.freeList); n > 0 {
		frame = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		victim, ok := p.replacer.Evict()
		if !ok {
			return 0, false
		}
		frame = victim
		evictedPage := p.resident[frame]
		p.pageTable.Remove(evictedPage)
		delete(p.pins, evictedPage)
	}

	p.pageTable.Insert(pageID, frame)
	p.resident[frame] = pageID
	p.pins[pageID] = 1
	p.replacer.RecordAccess(frame)
	p.replacer.SetEvictable(frame, false)
	return frame, true
}

// unpinPage drops one pin, the frame turns evictable when the count hits zero.
func (p *miniPool) unpinPage(pageID uint64) {
	frame, ok := p.pageTable.Find(pageID)
	if !ok || p.pins[pageID] == 0 {
		return
	}
	p.pins[pageID]--
	if p.pins[pageID] == 0 {
		p.replacer.SetEvictable(frame, true)
	}
}

func (p *miniPool) isResident(pageID uint64) bool {
	_, ok := p.pageTable.Find(pageID)
	return ok
}

// fakePages builds page images keyed by page id, contents come from faker so
// reloads after an eviction are verifiable.
func fakePages(n int) map[uint64]string {
	res := make(map[uint64]string, n)
	for id := 0; id < n; id++ {
		page := struct {
			Payload string `faker:"paragraph"`
		}{}
		if err := faker.FakeData(&page); err != nil {
			fmt.Println(err)
			page.Payload = fmt.Sprintf("page-%v", id)
		}
		res[uint64(id)] = page.Payload
	}
	return res
}
