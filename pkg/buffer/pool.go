// Package buffer implements the in-memory page cache sitting between the
// record heap and the page file: pin/unpin, dirty tracking, and a pluggable
// replacement policy (FIFO, LRU, CLOCK, LFU).
package buffer

import (
	"fmt"
	"sync"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/pagefile"
)

// Pool is a fixed-capacity cache of page frames backed by a single page
// file. It is the single owner of its frames' buffers: a Handle returned by
// Pin borrows a reference into a frame that is valid, and will not move,
// until the matching Unpin.
type Pool struct {
	mu sync.Mutex

	file     *pagefile.File
	capacity int
	slots    []*frame
	index    map[pagefile.PageIndex]int // pageIndex -> slot in slots
	strategy Strategy
	pick     victimPicker

	tick      uint64
	numReads  uint64
	numWrites uint64
}

// Init builds a Pool of the given capacity over file, using strategy for
// victim selection. It fails with ErrInvalidParameter if capacity <= 0, and
// if strategy names an unknown policy.
func Init(file *pagefile.File, capacity int, strategy Strategy) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("buffer: capacity %d: %w", capacity, dberror.ErrInvalidParameter)
	}
	pick, ok := pickerFor(strategy)
	if !ok {
		return nil, fmt.Errorf("buffer: unknown strategy %q: %w", strategy, dberror.ErrInvalidParameter)
	}

	slots := make([]*frame, capacity)
	for i := range slots {
		slots[i] = newFrame()
	}

	return &Pool{
		file:     file,
		capacity: capacity,
		slots:    slots,
		index:    make(map[pagefile.PageIndex]int, capacity),
		strategy: strategy,
		pick:     pick,
	}, nil
}

// Strategy returns the replacement policy the pool was initialized with.
func (p *Pool) Strategy() Strategy { return p.strategy }

// Shutdown flushes every dirty, unpinned frame to disk. It fails with
// ErrPinnedPagesInBuffer if any frame is still pinned, leaving the pool
// otherwise untouched.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.slots {
		if f.present && f.pinCount > 0 {
			return dberror.ErrPinnedPagesInBuffer
		}
	}
	return p.flushAllLocked()
}

// ForceFlush writes every (dirty && pinCount == 0) frame to disk and clears
// its dirty bit on success. Pinned dirty frames are skipped, not an error.
func (p *Pool) ForceFlush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushAllLocked()
}

func (p *Pool) flushAllLocked() error {
	for _, f := range p.slots {
		if f.present && f.dirty && f.pinCount == 0 {
			if err := p.writeFrameLocked(f); err != nil {
				return err
			}
			f.dirty = false
		}
	}
	return nil
}

func (p *Pool) writeFrameLocked(f *frame) error {
	if err := p.file.Write(f.pageIndex, f.buffer); err != nil {
		return err
	}
	p.numWrites++
	return nil
}

// Pin ensures the frame for pageIndex is resident, increments its pin
// count, and binds handle to the frame's buffer. On a hit it reuses the
// resident frame; otherwise it fills an empty slot, or evicts an unpinned
// victim chosen by the pool's strategy (writing it back first if dirty),
// failing with ErrPinnedPagesInBuffer when every frame is pinned.
func (p *Pool) Pin(handle *Handle, pageIndex pagefile.PageIndex) error {
	if handle == nil {
		return dberror.ErrInvalidParameter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if slot, ok := p.index[pageIndex]; ok {
		f := p.slots[slot]
		p.tick++
		f.pinCount++
		f.refCount++
		f.lastTouch = p.tick
		handle.PageNum = pageIndex
		handle.Data = f.buffer
		return nil
	}

	var target *frame
	if len(p.index) < p.capacity {
		for _, f := range p.slots {
			if !f.present {
				target = f
				break
			}
		}
	} else {
		victim := p.pick(p.slots)
		if victim == -1 {
			return dberror.ErrPinnedPagesInBuffer
		}
		target = p.slots[victim]
		if target.dirty {
			if err := p.writeFrameLocked(target); err != nil {
				return err
			}
		}
		delete(p.index, target.pageIndex)
	}

	if err := p.file.EnsureCapacity(int(pageIndex) + 1); err != nil {
		return err
	}
	if err := p.file.Read(pageIndex, target.buffer); err != nil {
		return err
	}
	p.numReads++

	p.tick++
	target.pageIndex = pageIndex
	target.present = true
	target.dirty = false
	target.pinCount = 1
	target.refCount = 1
	target.lastTouch = p.tick
	target.insertTick = p.tick

	for i, f := range p.slots {
		if f == target {
			p.index[pageIndex] = i
			break
		}
	}

	handle.PageNum = pageIndex
	handle.Data = target.buffer
	return nil
}

// Unpin decrements the pin count of the frame named by handle.PageNum. It
// fails if the page is not resident or already unpinned.
func (p *Pool) Unpin(handle *Handle) error {
	if handle == nil {
		return dberror.ErrInvalidParameter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.frameFor(handle.PageNum)
	if err != nil {
		return err
	}
	if f.pinCount == 0 {
		return fmt.Errorf("buffer: unpin page %d: %w", handle.PageNum, dberror.ErrInvalidParameter)
	}
	f.pinCount--
	return nil
}

// MarkDirty sets the dirty bit on the frame named by handle.PageNum. It
// fails if the page is not resident.
func (p *Pool) MarkDirty(handle *Handle) error {
	if handle == nil {
		return dberror.ErrInvalidParameter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.frameFor(handle.PageNum)
	if err != nil {
		return err
	}
	f.dirty = true
	return nil
}

// ForcePage writes the frame named by handle.PageNum to disk
// unconditionally, even if it is not dirty, and clears its dirty bit.
func (p *Pool) ForcePage(handle *Handle) error {
	if handle == nil {
		return dberror.ErrInvalidParameter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.frameFor(handle.PageNum)
	if err != nil {
		return err
	}
	if err := p.writeFrameLocked(f); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

func (p *Pool) frameFor(pageIndex pagefile.PageIndex) (*frame, error) {
	slot, ok := p.index[pageIndex]
	if !ok {
		return nil, fmt.Errorf("buffer: page %d not resident: %w", pageIndex, dberror.ErrInvalidParameter)
	}
	return p.slots[slot], nil
}

// GetFrameContents returns a snapshot of each slot's resident page index,
// in insertion-order-of-slot. A slot that has never been filled reports -1.
func (p *Pool) GetFrameContents() []pagefile.PageIndex {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]pagefile.PageIndex, p.capacity)
	for i, f := range p.slots {
		if f.present {
			out[i] = f.pageIndex
		} else {
			out[i] = -1
		}
	}
	return out
}

// GetDirtyFlags returns a snapshot of each slot's dirty bit.
func (p *Pool) GetDirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]bool, p.capacity)
	for i, f := range p.slots {
		out[i] = f.dirty
	}
	return out
}

// GetFixCounts returns a snapshot of each slot's pin count.
func (p *Pool) GetFixCounts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int, p.capacity)
	for i, f := range p.slots {
		out[i] = f.pinCount
	}
	return out
}

// NumReadIO returns the cumulative count of successful page reads since
// Init.
func (p *Pool) NumReadIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numReads
}

// NumWriteIO returns the cumulative count of successful page writes since
// Init.
func (p *Pool) NumWriteIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numWrites
}
