package buffer

import "github.com/mnohosten/heapdb/pkg/pagefile"

// frame is a resident page in the buffer pool. A frame with pinCount > 0 is
// immovable: it may not be chosen as a victim and its pageIndex may not
// change underneath a caller holding a Handle onto it.
type frame struct {
	pageIndex  pagefile.PageIndex
	present    bool // false for an empty slot that has never held a page
	buffer     []byte
	dirty      bool
	pinCount   int
	lastTouch  uint64 // bumped on every pin (hit or miss); drives LRU
	insertTick uint64 // set once when the frame is first populated; drives FIFO
	refCount   int    // auxiliary bookkeeping for CLOCK/LFU
}

func newFrame() *frame {
	return &frame{buffer: make([]byte, pagefile.PageSize)}
}
