package buffer

import "sort"

// Strategy names the replacement policy a Pool was initialized with.
type Strategy string

const (
	// FIFO evicts the unpinned frame with the smallest insertTick
	// (first one populated).
	FIFO Strategy = "fifo"

	// LRU evicts the unpinned frame with the smallest lastTouch (least
	// recently pinned).
	LRU Strategy = "lru"

	// CLOCK evicts via a second-chance sweep over refCount: a frame with
	// refCount > 0 is given one more chance (refCount decremented) before
	// becoming eligible.
	CLOCK Strategy = "clock"

	// LFU evicts the unpinned frame with the smallest refCount, breaking
	// ties by smallest lastTouch.
	LFU Strategy = "lfu"
)

// victimPicker selects a victim frame index among the unpinned frames
// currently resident in slots. It returns -1 if none are evictable.
type victimPicker func(slots []*frame) int

func pickerFor(s Strategy) (victimPicker, bool) {
	switch s {
	case FIFO:
		return pickFIFO, true
	case LRU:
		return pickLRU, true
	case CLOCK:
		return pickCLOCK, true
	case LFU:
		return pickLFU, true
	default:
		return nil, false
	}
}

func unpinnedIndices(slots []*frame) []int {
	var out []int
	for i, f := range slots {
		if f.present && f.pinCount == 0 {
			out = append(out, i)
		}
	}
	return out
}

// pickFIFO: smallest insertTick, ties broken by smallest pageIndex.
func pickFIFO(slots []*frame) int {
	best := -1
	for _, i := range unpinnedIndices(slots) {
		if best == -1 || lessFIFO(slots[i], slots[best]) {
			best = i
		}
	}
	return best
}

func lessFIFO(a, b *frame) bool {
	if a.insertTick != b.insertTick {
		return a.insertTick < b.insertTick
	}
	return a.pageIndex < b.pageIndex
}

// pickLRU: smallest lastTouch, ties broken by smallest pageIndex.
func pickLRU(slots []*frame) int {
	best := -1
	for _, i := range unpinnedIndices(slots) {
		if best == -1 || lessLRU(slots[i], slots[best]) {
			best = i
		}
	}
	return best
}

func lessLRU(a, b *frame) bool {
	if a.lastTouch != b.lastTouch {
		return a.lastTouch < b.lastTouch
	}
	return a.pageIndex < b.pageIndex
}

// pickCLOCK sweeps the unpinned frames in pageIndex order, giving each
// frame with refCount > 0 one second chance (decrementing refCount) before
// selecting the first frame found with refCount == 0. It sweeps at most
// twice; if no frame has reached refCount == 0 by then (a frame pinned
// repeatedly can carry a refCount above 1), the frame with the smallest
// pageIndex is chosen.
func pickCLOCK(slots []*frame) int {
	idx := unpinnedIndices(slots)
	if len(idx) == 0 {
		return -1
	}
	// Stable sweep order: by pageIndex, smallest first.
	order := append([]int(nil), idx...)
	sort.Slice(order, func(a, b int) bool {
		return slots[order[a]].pageIndex < slots[order[b]].pageIndex
	})
	for pass := 0; pass < 2; pass++ {
		for _, i := range order {
			if slots[i].refCount == 0 {
				return i
			}
			slots[i].refCount--
		}
	}
	// No frame reached refCount == 0 within two sweeps; fall back to the
	// first candidate by pageIndex.
	best := order[0]
	for _, i := range order[1:] {
		if slots[i].pageIndex < slots[best].pageIndex {
			best = i
		}
	}
	return best
}

// pickLFU: smallest refCount, ties broken by smallest lastTouch, then
// smallest pageIndex.
func pickLFU(slots []*frame) int {
	best := -1
	for _, i := range unpinnedIndices(slots) {
		if best == -1 || lessLFU(slots[i], slots[best]) {
			best = i
		}
	}
	return best
}

func lessLFU(a, b *frame) bool {
	if a.refCount != b.refCount {
		return a.refCount < b.refCount
	}
	if a.lastTouch != b.lastTouch {
		return a.lastTouch < b.lastTouch
	}
	return a.pageIndex < b.pageIndex
}
