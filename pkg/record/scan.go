package record

import (
	"fmt"

	"github.com/mnohosten/heapdb/pkg/buffer"
	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/pagefile"
)

// Expression is the evalExpr collaborator a scan's predicate must
// implement: a deterministic (Record, Schema) -> Value mapping. A match is
// any evaluation that yields (TypeBool, true); the concrete comparison and
// boolean-combinator implementations live in the sibling expr package so
// this package never depends on them.
type Expression interface {
	Eval(rec *Record, schema *Schema) (Value, error)
}

// Scan is independent, scan-local iteration state: its own cursor,
// reference to the predicate, and a snapshot of the table's tuple count and
// free-page hint taken at StartScan time. It shares the table's buffer
// pool, and each Next call fully brackets its pin/unpin pair, so multiple
// scans over the same table may interleave safely.
type Scan struct {
	table  *Table
	cursor RID
	pred   Expression

	tupleCountSnapshot    int
	firstFreePageSnapshot int
	budget                int // safety counter guarding against corrupt metadata
}

// StartScan allocates scan-local state for a predicate-filtered iteration
// over t. pred is required; a nil predicate fails with
// ErrScanConditionNotFound.
func StartScan(t *Table, pred Expression) (*Scan, error) {
	if pred == nil {
		return nil, dberror.ErrScanConditionNotFound
	}
	return &Scan{
		table:                 t,
		cursor:                RID{Page: 1, Slot: -1},
		pred:                  pred,
		tupleCountSnapshot:    t.tupleCount,
		firstFreePageSnapshot: t.firstFreePage,
		budget:                (t.firstFreePage+2)*t.slotsPerPage + 2,
	}, nil
}

// Next advances the cursor one slot at a time, wrapping to the next page at
// end-of-page, until it finds a live record for which pred evaluates to
// (TypeBool, true), or returns ErrNoMoreTuples at the end of the table.
func (s *Scan) Next(out *Record) error {
	t := s.table

	for {
		if s.budget <= 0 {
			return dberror.ErrNoMoreTuples
		}
		s.budget--

		s.cursor.Slot++
		if s.cursor.Slot >= t.slotsPerPage {
			s.cursor.Slot = 0
			s.cursor.Page++
		}
		if s.cursor.Page > s.firstFreePageSnapshot+1 {
			return dberror.ErrNoMoreTuples
		}

		var h buffer.Handle
		if err := t.pool.Pin(&h, pagefile.PageIndex(s.cursor.Page)); err != nil {
			return err
		}

		off := s.cursor.Slot * t.recSize
		if h.Data[off] != tombstoneOccupied {
			if err := t.pool.Unpin(&h); err != nil {
				return err
			}
			continue
		}

		if len(out.Data) != t.recSize {
			out.Data = make([]byte, t.recSize)
		}
		copy(out.Data, h.Data[off:off+t.recSize])
		out.ID = s.cursor

		if err := t.pool.Unpin(&h); err != nil {
			return err
		}

		value, err := s.pred.Eval(out, t.schema)
		if err != nil {
			return fmt.Errorf("record: scan predicate: %w", err)
		}
		if value.Type == TypeBool && value.Bool {
			return nil
		}
	}
}

// CloseScan releases the scan's local state. Next always unpins its page
// before returning, including on error, so there is nothing left pinned
// for CloseScan to clean up.
func CloseScan(s *Scan) {
	s.table = nil
	s.pred = nil
}
