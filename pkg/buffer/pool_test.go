package buffer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/pagefile"
)

func mustFile(t *testing.T) *pagefile.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.db")
	if err := pagefile.Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	fh, err := pagefile.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { fh.Close() })
	return fh
}

// S2: capacity 3, FIFO. Pin pages 1,2,3,4 (unpinning between) evicts frame 1.
func TestFIFOEvictsOldest(t *testing.T) {
	pool, err := Init(mustFile(t), 3, FIFO)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	for _, pageNum := range []pagefile.PageIndex{1, 2, 3, 4} {
		var h Handle
		if err := pool.Pin(&h, pageNum); err != nil {
			t.Fatalf("Pin(%d): %v", pageNum, err)
		}
		if err := pool.Unpin(&h); err != nil {
			t.Fatalf("Unpin(%d): %v", pageNum, err)
		}
	}

	contents := pool.GetFrameContents()
	for _, pn := range contents {
		if pn == 1 {
			t.Fatalf("page 1 still resident, contents = %v", contents)
		}
	}
	if pool.NumReadIO() != 4 {
		t.Fatalf("NumReadIO() = %d, want 4", pool.NumReadIO())
	}
	if pool.NumWriteIO() != 0 {
		t.Fatalf("NumWriteIO() = %d, want 0 (no frame was ever dirty)", pool.NumWriteIO())
	}
}

// S3: capacity 2, LRU. Pin 1, pin 2, pin 1, pin 3 evicts page 2.
func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	pool, err := Init(mustFile(t), 2, LRU)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	pin := func(pn pagefile.PageIndex) {
		t.Helper()
		var h Handle
		if err := pool.Pin(&h, pn); err != nil {
			t.Fatalf("Pin(%d): %v", pn, err)
		}
		if err := pool.Unpin(&h); err != nil {
			t.Fatalf("Unpin(%d): %v", pn, err)
		}
	}

	pin(1)
	pin(2)
	pin(1)
	pin(3)

	contents := pool.GetFrameContents()
	present := map[pagefile.PageIndex]bool{}
	for _, pn := range contents {
		present[pn] = true
	}
	if present[2] {
		t.Fatalf("page 2 should have been evicted, contents = %v", contents)
	}
	if !present[1] || !present[3] {
		t.Fatalf("expected pages {1,3} resident, got %v", contents)
	}
}

// S6: pin page without unpin, Shutdown fails with PinnedPagesInBuffer.
func TestShutdownFailsWithPinnedFrame(t *testing.T) {
	pool, err := Init(mustFile(t), 3, LRU)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	var h Handle
	if err := pool.Pin(&h, 5); err != nil {
		t.Fatalf("Pin: %v", err)
	}

	if err := pool.Shutdown(); !errors.Is(err, dberror.ErrPinnedPagesInBuffer) {
		t.Fatalf("Shutdown() = %v, want ErrPinnedPagesInBuffer", err)
	}
}

func TestPinFullPoolAllPinnedFails(t *testing.T) {
	pool, err := Init(mustFile(t), 2, LRU)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	var h1, h2, h3 Handle
	if err := pool.Pin(&h1, 1); err != nil {
		t.Fatalf("Pin(1): %v", err)
	}
	if err := pool.Pin(&h2, 2); err != nil {
		t.Fatalf("Pin(2): %v", err)
	}
	if err := pool.Pin(&h3, 3); !errors.Is(err, dberror.ErrPinnedPagesInBuffer) {
		t.Fatalf("Pin(3) = %v, want ErrPinnedPagesInBuffer", err)
	}
}

func TestForceFlushWritesDirtyUnpinnedOnly(t *testing.T) {
	pool, err := Init(mustFile(t), 2, LRU)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	var h1, h2 Handle
	if err := pool.Pin(&h1, 1); err != nil {
		t.Fatalf("Pin(1): %v", err)
	}
	copy(h1.Data, []byte("dirty page"))
	if err := pool.MarkDirty(&h1); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}

	if err := pool.Pin(&h2, 2); err != nil {
		t.Fatalf("Pin(2): %v", err)
	}
	copy(h2.Data, []byte("also dirty, stays pinned"))
	if err := pool.MarkDirty(&h2); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}

	if err := pool.Unpin(&h1); err != nil {
		t.Fatalf("Unpin(1): %v", err)
	}

	if err := pool.ForceFlush(); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	dirty := pool.GetDirtyFlags()
	fixed := pool.GetFixCounts()
	contents := pool.GetFrameContents()
	for i, pn := range contents {
		if pn == 1 && dirty[i] {
			t.Fatalf("page 1 should be clean after ForceFlush")
		}
		if pn == 2 && (!dirty[i] || fixed[i] == 0) {
			t.Fatalf("pinned dirty page 2 should have been skipped by ForceFlush")
		}
	}
}

func TestInitRejectsBadCapacityAndStrategy(t *testing.T) {
	if _, err := Init(mustFile(t), 0, LRU); !errors.Is(err, dberror.ErrInvalidParameter) {
		t.Fatalf("Init(capacity=0) = %v, want ErrInvalidParameter", err)
	}
	if _, err := Init(mustFile(t), 3, Strategy("bogus")); !errors.Is(err, dberror.ErrInvalidParameter) {
		t.Fatalf("Init(bad strategy) = %v, want ErrInvalidParameter", err)
	}
}

func TestClockAndLFUEvictUnpinnedOnly(t *testing.T) {
	for _, s := range []Strategy{CLOCK, LFU} {
		pool, err := Init(mustFile(t), 2, s)
		if err != nil {
			t.Fatalf("Init(%s): %v", s, err)
		}

		var h1, h2 Handle
		if err := pool.Pin(&h1, 1); err != nil {
			t.Fatalf("Pin(1): %v", err)
		}
		if err := pool.Unpin(&h1); err != nil {
			t.Fatalf("Unpin(1): %v", err)
		}
		if err := pool.Pin(&h2, 2); err != nil {
			t.Fatalf("Pin(2): %v", err)
		}
		// page 2 stays pinned; page 3 must evict page 1, not page 2.
		var h3 Handle
		if err := pool.Pin(&h3, 3); err != nil {
			t.Fatalf("Pin(3) with %s: %v", s, err)
		}

		contents := pool.GetFrameContents()
		present := map[pagefile.PageIndex]bool{}
		for _, pn := range contents {
			present[pn] = true
		}
		if !present[2] {
			t.Fatalf("%s evicted a pinned page: contents = %v", s, contents)
		}
		if !present[3] {
			t.Fatalf("%s: expected page 3 resident, got %v", s, contents)
		}
	}
}
