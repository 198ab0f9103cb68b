package record

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mnohosten/heapdb/pkg/config"
	"github.com/mnohosten/heapdb/pkg/dberror"
)

func tableSchema() *Schema {
	return CreateSchema([]Attribute{
		{Name: "a", Type: TypeInt},
		{Name: "b", Type: TypeString, Length: 8},
	}, []int{0})
}

func newTestTable(t *testing.T) (*Table, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heap.tbl")
	tbl, err := CreateTable(path, tableSchema(), nil)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	return tbl, path
}

func insertRow(t *testing.T, tbl *Table, a int32, b string) RID {
	t.Helper()
	rec := CreateRecord(tbl.Schema())
	if err := SetAttr(rec, tbl.Schema(), 0, IntValue(a)); err != nil {
		t.Fatalf("SetAttr(a): %v", err)
	}
	if err := SetAttr(rec, tbl.Schema(), 1, StringValue(b)); err != nil {
		t.Fatalf("SetAttr(b): %v", err)
	}
	if err := tbl.InsertRecord(rec); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	return rec.ID
}

func TestCreateTableStartsEmpty(t *testing.T) {
	tbl, path := newTestTable(t)
	defer DeleteTable(path)

	if tbl.GetNumTuples() != 0 {
		t.Fatalf("GetNumTuples() = %d, want 0", tbl.GetNumTuples())
	}
	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
}

func TestInsertGetRoundTrip(t *testing.T) {
	tbl, path := newTestTable(t)
	defer DeleteTable(path)

	rid := insertRow(t, tbl, 7, "hello")
	if tbl.GetNumTuples() != 1 {
		t.Fatalf("GetNumTuples() = %d, want 1", tbl.GetNumTuples())
	}

	out := CreateRecord(tbl.Schema())
	if err := tbl.GetRecord(rid, out); err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	av, err := GetAttr(out, tbl.Schema(), 0)
	if err != nil {
		t.Fatalf("GetAttr(a): %v", err)
	}
	if av.Int != 7 {
		t.Fatalf("a = %d, want 7", av.Int)
	}

	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
}

func TestDeleteRecordDecrementsCountAndTombstones(t *testing.T) {
	tbl, path := newTestTable(t)
	defer DeleteTable(path)

	var rids []RID
	for i := int32(0); i < 10; i++ {
		rids = append(rids, insertRow(t, tbl, i, "rowN"))
	}
	if tbl.GetNumTuples() != 10 {
		t.Fatalf("GetNumTuples() = %d, want 10", tbl.GetNumTuples())
	}

	if err := tbl.DeleteRecord(rids[3]); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if tbl.GetNumTuples() != 9 {
		t.Fatalf("GetNumTuples() = %d, want 9", tbl.GetNumTuples())
	}

	out := CreateRecord(tbl.Schema())
	err := tbl.GetRecord(rids[3], out)
	if !errors.Is(err, dberror.ErrNoTupleWithGivenRID) {
		t.Fatalf("GetRecord(deleted) = %v, want ErrNoTupleWithGivenRID", err)
	}

	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
}

func TestUpdateRecordLeavesCountUnchanged(t *testing.T) {
	tbl, path := newTestTable(t)
	defer DeleteTable(path)

	rid := insertRow(t, tbl, 1, "before")
	before := tbl.GetNumTuples()

	updated := CreateRecord(tbl.Schema())
	updated.ID = rid
	if err := SetAttr(updated, tbl.Schema(), 0, IntValue(99)); err != nil {
		t.Fatalf("SetAttr(a): %v", err)
	}
	if err := SetAttr(updated, tbl.Schema(), 1, StringValue("after")); err != nil {
		t.Fatalf("SetAttr(b): %v", err)
	}
	if err := tbl.UpdateRecord(updated); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	if tbl.GetNumTuples() != before {
		t.Fatalf("GetNumTuples() changed across update: %d != %d", tbl.GetNumTuples(), before)
	}

	out := CreateRecord(tbl.Schema())
	if err := tbl.GetRecord(rid, out); err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	bv, err := GetAttr(out, tbl.Schema(), 1)
	if err != nil {
		t.Fatalf("GetAttr(b): %v", err)
	}
	if bv.Str != "after" {
		t.Fatalf("b = %q, want after", bv.Str)
	}

	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
}

func TestCloseAndReopenPreservesSchemaAndCounts(t *testing.T) {
	tbl, path := newTestTable(t)
	defer DeleteTable(path)

	for i := int32(0); i < 5; i++ {
		insertRow(t, tbl, i, "rowN")
	}
	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}

	reopened, err := OpenTable(path, nil)
	if err != nil {
		t.Fatalf("OpenTable: %v", err)
	}
	if reopened.GetNumTuples() != 5 {
		t.Fatalf("GetNumTuples() after reopen = %d, want 5", reopened.GetNumTuples())
	}
	if len(reopened.Schema().Attributes) != 2 {
		t.Fatalf("len(Attributes) after reopen = %d, want 2", len(reopened.Schema().Attributes))
	}
	if err := reopened.CloseTable(); err != nil {
		t.Fatalf("CloseTable (reopened): %v", err)
	}
}

func TestInsertSpansMultiplePages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.tbl")
	cfg := config.Default()
	tbl, err := CreateTable(path, tableSchema(), cfg)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	defer DeleteTable(path)

	rowsPerPage := tbl.slotsPerPage
	total := rowsPerPage*2 + 3
	for i := 0; i < total; i++ {
		insertRow(t, tbl, int32(i), "rowN")
	}
	if tbl.GetNumTuples() != total {
		t.Fatalf("GetNumTuples() = %d, want %d", tbl.GetNumTuples(), total)
	}
	if tbl.firstFreePage < 3 {
		t.Fatalf("firstFreePage = %d, want table to have advanced past page 2", tbl.firstFreePage)
	}

	if err := tbl.CloseTable(); err != nil {
		t.Fatalf("CloseTable: %v", err)
	}
}
