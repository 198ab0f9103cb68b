package record

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mnohosten/heapdb/pkg/dberror"
)

const (
	tombstoneFree     byte = 0x00
	tombstoneOccupied byte = 0x01
)

// RID identifies a record by the page and slot it occupies.
type RID struct {
	Page int
	Slot int
}

// Record is a record id plus a byte buffer of size schema.RecordSize().
// Byte 0 is the tombstone marker; the remainder is the packed payload.
type Record struct {
	ID   RID
	Data []byte
}

// CreateRecord allocates a Record sized for schema, with the tombstone
// initialized to free and the payload zero-filled.
func CreateRecord(schema *Schema) *Record {
	return &Record{Data: make([]byte, schema.RecordSize())}
}

// FreeRecord is a no-op retained for API parity with the original C record
// manager, where it released the manually allocated Data buffer.
func FreeRecord(*Record) {}

// Tombstone returns the record's occupancy marker byte.
func (r *Record) Tombstone() byte { return r.Data[0] }

// Occupied reports whether the tombstone marks this slot as holding a live
// tuple.
func (r *Record) Occupied() bool { return r.Data[0] == tombstoneOccupied }

// Payload returns the packed attribute bytes, i.e. Data[1:] — distinct from
// the raw buffer so callers never index off-by-one around the tombstone.
func (r *Record) Payload() []byte { return r.Data[1:] }

// Value is a tagged union over the four attribute data types.
type Value struct {
	Type DataType
	Int  int32
	Flt  float64
	Bool bool
	Str  string
}

// IntValue, FloatValue, BoolValue and StringValue are convenience
// constructors for Value literals.
func IntValue(v int32) Value     { return Value{Type: TypeInt, Int: v} }
func FloatValue(v float64) Value { return Value{Type: TypeFloat, Flt: v} }
func BoolValue(v bool) Value     { return Value{Type: TypeBool, Bool: v} }
func StringValue(v string) Value { return Value{Type: TypeString, Str: v} }

// GetAttr reads the attrIndex'th attribute of rec according to schema.
func GetAttr(rec *Record, schema *Schema, attrIndex int) (Value, error) {
	if attrIndex < 0 || attrIndex >= len(schema.Attributes) {
		return Value{}, fmt.Errorf("record: attribute index %d: %w", attrIndex, dberror.ErrInvalidParameter)
	}
	attr := schema.Attributes[attrIndex]
	offsets := schema.offsets()
	off := offsets[attrIndex]
	payload := rec.Payload()

	switch attr.Type {
	case TypeInt:
		return IntValue(int32(binary.LittleEndian.Uint32(payload[off : off+intWidth]))), nil
	case TypeFloat:
		bits := binary.LittleEndian.Uint64(payload[off : off+floatWidth])
		return FloatValue(math.Float64frombits(bits)), nil
	case TypeBool:
		return BoolValue(payload[off] != 0), nil
	case TypeString:
		raw := payload[off : off+attr.Length]
		n := 0
		for n < len(raw) && raw[n] != 0 {
			n++
		}
		return StringValue(string(raw[:n])), nil
	default:
		return Value{}, fmt.Errorf("record: attribute %q has unknown type %v: %w", attr.Name, attr.Type, dberror.ErrInvalidParameter)
	}
}

// SetAttr writes value into the attrIndex'th attribute slot of rec
// according to schema. It fails with ErrInvalidParameter if value's Type
// does not match the attribute's declared type.
func SetAttr(rec *Record, schema *Schema, attrIndex int, value Value) error {
	if attrIndex < 0 || attrIndex >= len(schema.Attributes) {
		return fmt.Errorf("record: attribute index %d: %w", attrIndex, dberror.ErrInvalidParameter)
	}
	attr := schema.Attributes[attrIndex]
	if value.Type != attr.Type {
		return fmt.Errorf("record: attribute %q wants %v, got %v: %w", attr.Name, attr.Type, value.Type, dberror.ErrInvalidParameter)
	}
	offsets := schema.offsets()
	off := offsets[attrIndex]
	payload := rec.Payload()

	switch attr.Type {
	case TypeInt:
		binary.LittleEndian.PutUint32(payload[off:off+intWidth], uint32(value.Int))
	case TypeFloat:
		binary.LittleEndian.PutUint64(payload[off:off+floatWidth], math.Float64bits(value.Flt))
	case TypeBool:
		if value.Bool {
			payload[off] = 1
		} else {
			payload[off] = 0
		}
	case TypeString:
		raw := payload[off : off+attr.Length]
		for i := range raw {
			raw[i] = 0
		}
		copy(raw, value.Str)
	default:
		return fmt.Errorf("record: attribute %q has unknown type %v: %w", attr.Name, attr.Type, dberror.ErrInvalidParameter)
	}
	rec.Data[0] = tombstoneOccupied
	return nil
}
