// Package record implements the heap/record layer: fixed-width tuples laid
// out into slotted heap pages over a buffer.Pool, plus predicate-filtered
// scans. It is grounded on the original_source record manager's tombstoned,
// linearly-searched slot layout, reworked so a *Table owns its own buffer
// pool instead of relying on one process-wide global.
package record

import "fmt"

// DataType is the type of a schema attribute.
type DataType int32

const (
	TypeInt DataType = iota
	TypeFloat
	TypeBool
	TypeString
)

func (dt DataType) String() string {
	switch dt {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	default:
		return fmt.Sprintf("DataType(%d)", int32(dt))
	}
}

// Fixed widths, in bytes, for the non-string types.
const (
	intWidth   = 4 // int32
	floatWidth = 8 // float64
	boolWidth  = 1
)

// Attribute is one column of a Schema.
type Attribute struct {
	Name string
	Type DataType

	// Length is the declared byte width for TypeString attributes. It is
	// ignored for all other types.
	Length int
}

func (a Attribute) width() int {
	switch a.Type {
	case TypeInt:
		return intWidth
	case TypeFloat:
		return floatWidth
	case TypeBool:
		return boolWidth
	case TypeString:
		return a.Length
	default:
		return 0
	}
}

// Schema is an ordered sequence of attributes, plus an optional list of
// key-attribute indices.
type Schema struct {
	Attributes []Attribute

	// KeyAttrs holds indices into Attributes naming the key columns. It
	// may be nil; key persistence is an optional extension (see
	// metadata.go) and is not required to round-trip through
	// CreateTable/OpenTable.
	KeyAttrs []int
}

// CreateSchema builds a Schema from parallel attribute descriptions. It
// exists alongside the struct literal form for parity with the original
// record manager's createSchema/freeSchema pair; FreeSchema is a no-op in
// Go (the garbage collector reclaims it) and is provided only so callers
// translating from that API have a 1:1 call to make.
func CreateSchema(attrs []Attribute, keyAttrs []int) *Schema {
	return &Schema{Attributes: append([]Attribute(nil), attrs...), KeyAttrs: keyAttrs}
}

// FreeSchema is a no-op retained for API parity with the original C record
// manager, where it released manually allocated attribute arrays.
func FreeSchema(*Schema) {}

// offsets returns, for each attribute, its byte offset within the record
// payload (i.e. relative to byte 1 of the slot, after the tombstone byte).
func (s *Schema) offsets() []int {
	out := make([]int, len(s.Attributes))
	off := 0
	for i, a := range s.Attributes {
		out[i] = off
		off += a.width()
	}
	return out
}

// PayloadSize returns the total byte width of the packed attribute values,
// i.e. record_size(schema) - 1.
func (s *Schema) PayloadSize() int {
	size := 0
	for _, a := range s.Attributes {
		size += a.width()
	}
	return size
}

// RecordSize returns 1 + sum of attribute widths: the tombstone byte plus
// the packed payload.
func (s *Schema) RecordSize() int {
	return 1 + s.PayloadSize()
}

// AttrIndex returns the index of the named attribute, or -1 if not found.
func (s *Schema) AttrIndex(name string) int {
	for i, a := range s.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}
