package record

import "testing"

func testSchema() *Schema {
	return CreateSchema([]Attribute{
		{Name: "a", Type: TypeInt},
		{Name: "b", Type: TypeString, Length: 4},
	}, nil)
}

func TestRecordSize(t *testing.T) {
	s := testSchema()
	// tombstone(1) + int32(4) + string(4) = 9
	if got := s.RecordSize(); got != 9 {
		t.Fatalf("RecordSize() = %d, want 9", got)
	}
}

func TestAttrIndex(t *testing.T) {
	s := testSchema()
	if idx := s.AttrIndex("b"); idx != 1 {
		t.Fatalf("AttrIndex(b) = %d, want 1", idx)
	}
	if idx := s.AttrIndex("nope"); idx != -1 {
		t.Fatalf("AttrIndex(nope) = %d, want -1", idx)
	}
}

func TestGetSetAttrRoundTrip(t *testing.T) {
	s := testSchema()
	rec := CreateRecord(s)

	if err := SetAttr(rec, s, 0, IntValue(42)); err != nil {
		t.Fatalf("SetAttr(a): %v", err)
	}
	if err := SetAttr(rec, s, 1, StringValue("row1")); err != nil {
		t.Fatalf("SetAttr(b): %v", err)
	}

	av, err := GetAttr(rec, s, 0)
	if err != nil {
		t.Fatalf("GetAttr(a): %v", err)
	}
	if av.Int != 42 {
		t.Fatalf("a = %d, want 42", av.Int)
	}

	bv, err := GetAttr(rec, s, 1)
	if err != nil {
		t.Fatalf("GetAttr(b): %v", err)
	}
	if bv.Str != "row1" {
		t.Fatalf("b = %q, want row1", bv.Str)
	}

	if !rec.Occupied() {
		t.Fatalf("record should be marked occupied after SetAttr")
	}
}

func TestSetAttrTypeMismatch(t *testing.T) {
	s := testSchema()
	rec := CreateRecord(s)
	if err := SetAttr(rec, s, 0, StringValue("wrong type")); err == nil {
		t.Fatalf("SetAttr with wrong type succeeded, want error")
	}
}
