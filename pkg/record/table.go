package record

import (
	"fmt"

	"github.com/mnohosten/heapdb/pkg/buffer"
	"github.com/mnohosten/heapdb/pkg/config"
	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/pagefile"
)

// Table is an open heap table: a page file, the buffer pool caching it, and
// the in-memory schema and free-space bookkeeping reconstructed from page
// 0. Unlike the original C record manager, a Table owns all of this state
// itself — no process-wide global — so multiple tables may be open at once.
type Table struct {
	name   string
	file   *pagefile.File
	pool   *buffer.Pool
	schema *Schema

	tupleCount    int
	firstFreePage int
	recSize       int
	slotsPerPage  int
}

func strategyFor(name string) buffer.Strategy {
	switch name {
	case "fifo":
		return buffer.FIFO
	case "clock":
		return buffer.CLOCK
	case "lfu":
		return buffer.LFU
	default:
		return buffer.LRU
	}
}

// CreateTable materializes a new page file for name, writes page 0 with
// tupleCount=0, firstFreePage=1, and the serialized schema, and attaches a
// buffer pool per cfg (config.Default() if cfg is nil — capacity 100, LRU,
// matching spec.md §4.3).
func CreateTable(name string, schema *Schema, cfg *config.Config) (*Table, error) {
	if schema == nil {
		return nil, dberror.ErrInvalidParameter
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if err := pagefile.Create(name); err != nil {
		return nil, err
	}
	file, err := pagefile.Open(name)
	if err != nil {
		return nil, err
	}

	pool, err := buffer.Init(file, cfg.BufferPool.Capacity, strategyFor(cfg.BufferPool.Strategy))
	if err != nil {
		file.Close()
		return nil, err
	}

	page0, err := serializePage0(schema, 0, 1)
	if err != nil {
		file.Close()
		return nil, err
	}

	var h buffer.Handle
	if err := pool.Pin(&h, 0); err != nil {
		file.Close()
		return nil, err
	}
	copy(h.Data, page0)
	if err := pool.MarkDirty(&h); err != nil {
		pool.Unpin(&h)
		file.Close()
		return nil, err
	}
	if err := pool.Unpin(&h); err != nil {
		file.Close()
		return nil, err
	}
	if err := pool.ForceFlush(); err != nil {
		file.Close()
		return nil, err
	}

	t := &Table{
		name:          name,
		file:          file,
		pool:          pool,
		schema:        schema,
		tupleCount:    0,
		firstFreePage: 1,
		recSize:       schema.RecordSize(),
		slotsPerPage:  pagefile.PageSize / schema.RecordSize(),
	}
	return t, nil
}

// OpenTable opens the page file for name, pins page 0, and reconstructs the
// schema and counters from it.
func OpenTable(name string, cfg *config.Config) (*Table, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	file, err := pagefile.Open(name)
	if err != nil {
		return nil, err
	}

	pool, err := buffer.Init(file, cfg.BufferPool.Capacity, strategyFor(cfg.BufferPool.Strategy))
	if err != nil {
		file.Close()
		return nil, err
	}

	var h buffer.Handle
	if err := pool.Pin(&h, 0); err != nil {
		file.Close()
		return nil, err
	}
	schema, tupleCount, firstFreePage, err := deserializePage0(h.Data)
	if err != nil {
		pool.Unpin(&h)
		file.Close()
		return nil, err
	}
	if err := pool.Unpin(&h); err != nil {
		file.Close()
		return nil, err
	}

	t := &Table{
		name:          name,
		file:          file,
		pool:          pool,
		schema:        schema,
		tupleCount:    tupleCount,
		firstFreePage: firstFreePage,
		recSize:       schema.RecordSize(),
		slotsPerPage:  pagefile.PageSize / schema.RecordSize(),
	}
	return t, nil
}

// CloseTable shuts down the table's buffer pool, flushing any dirty frames.
func (t *Table) CloseTable() error {
	if err := t.pool.Shutdown(); err != nil {
		return err
	}
	return t.file.Close()
}

// DeleteTable removes the page file for name. The table must already be
// closed.
func DeleteTable(name string) error {
	return pagefile.Destroy(name)
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// GetNumTuples returns the number of live tuples known to the table.
func (t *Table) GetNumTuples() int { return t.tupleCount }

func findFreeSlot(buf []byte, recSize, slots int) int {
	for s := 0; s < slots; s++ {
		if buf[s*recSize] != tombstoneOccupied {
			return s
		}
	}
	return -1
}

func (t *Table) persistCounts() error {
	var h buffer.Handle
	if err := t.pool.Pin(&h, 0); err != nil {
		return err
	}
	writeCounts(h.Data, t.tupleCount, t.firstFreePage)
	if err := t.pool.MarkDirty(&h); err != nil {
		t.pool.Unpin(&h)
		return err
	}
	return t.pool.Unpin(&h)
}

// InsertRecord scans forward from firstFreePage for the first free slot,
// writes rec's payload there, and updates the record's RID in place.
func (t *Table) InsertRecord(rec *Record) error {
	if rec == nil {
		return dberror.ErrInvalidParameter
	}

	page := pagefile.PageIndex(t.firstFreePage)
	var h buffer.Handle
	if err := t.pool.Pin(&h, page); err != nil {
		return err
	}

	slot := findFreeSlot(h.Data, t.recSize, t.slotsPerPage)
	for slot == -1 {
		if err := t.pool.Unpin(&h); err != nil {
			return err
		}
		page++
		if err := t.pool.Pin(&h, page); err != nil {
			return err
		}
		slot = findFreeSlot(h.Data, t.recSize, t.slotsPerPage)
	}

	off := slot * t.recSize
	h.Data[off] = tombstoneOccupied
	copy(h.Data[off+1:off+t.recSize], rec.Data[1:t.recSize])

	if err := t.pool.MarkDirty(&h); err != nil {
		t.pool.Unpin(&h)
		return err
	}
	if err := t.pool.Unpin(&h); err != nil {
		return err
	}

	rec.ID = RID{Page: int(page), Slot: slot}
	t.tupleCount++
	if int(page) > t.firstFreePage {
		t.firstFreePage = int(page)
	}
	return t.persistCounts()
}

// DeleteRecord tombstones the slot at rid.
func (t *Table) DeleteRecord(rid RID) error {
	var h buffer.Handle
	if err := t.pool.Pin(&h, pagefile.PageIndex(rid.Page)); err != nil {
		return err
	}

	off := rid.Slot * t.recSize
	h.Data[off] = tombstoneFree

	if err := t.pool.MarkDirty(&h); err != nil {
		t.pool.Unpin(&h)
		return err
	}
	if err := t.pool.Unpin(&h); err != nil {
		return err
	}

	t.firstFreePage = rid.Page
	if t.tupleCount > 0 {
		t.tupleCount--
	}
	return t.persistCounts()
}

// UpdateRecord overwrites the slot named by rec.ID with rec's payload,
// forcing the tombstone to occupied (last-writer-wins per spec.md §9). It
// does not adjust the tuple count.
func (t *Table) UpdateRecord(rec *Record) error {
	if rec == nil {
		return dberror.ErrInvalidParameter
	}

	var h buffer.Handle
	if err := t.pool.Pin(&h, pagefile.PageIndex(rec.ID.Page)); err != nil {
		return err
	}

	off := rec.ID.Slot * t.recSize
	h.Data[off] = tombstoneOccupied
	copy(h.Data[off+1:off+t.recSize], rec.Data[1:t.recSize])

	if err := t.pool.MarkDirty(&h); err != nil {
		t.pool.Unpin(&h)
		return err
	}
	return t.pool.Unpin(&h)
}

// GetRecord copies the slot at rid into out. It fails with
// ErrNoTupleWithGivenRID if the slot is free.
func (t *Table) GetRecord(rid RID, out *Record) error {
	if out == nil {
		return dberror.ErrInvalidParameter
	}

	var h buffer.Handle
	if err := t.pool.Pin(&h, pagefile.PageIndex(rid.Page)); err != nil {
		return err
	}

	off := rid.Slot * t.recSize
	if h.Data[off] != tombstoneOccupied {
		t.pool.Unpin(&h)
		return fmt.Errorf("record: get %+v: %w", rid, dberror.ErrNoTupleWithGivenRID)
	}

	if len(out.Data) != t.recSize {
		out.Data = make([]byte, t.recSize)
	}
	copy(out.Data, h.Data[off:off+t.recSize])
	out.ID = rid

	return t.pool.Unpin(&h)
}
