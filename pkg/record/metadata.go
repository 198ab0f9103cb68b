package record

import (
	"encoding/binary"
	"fmt"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/pagefile"
)

// attrNameSize is the fixed width of a serialized attribute name. Byte 14
// is reserved as a guaranteed NUL terminator, so names are capped at 14
// characters (spec.md §6.2).
const attrNameSize = 15

const maxAttrNameLen = attrNameSize - 1

// attrEntrySize is the serialized size of one schema attribute entry:
// name + data type (int32) + type length (int32).
const attrEntrySize = attrNameSize + 4 + 4

// page0HeaderSize covers tuple_count, first_free_page, num_attr, key_size, each an
// int32.
const page0HeaderSize = 4 * 4

// serializePage0 encodes the metadata page: header, attribute entries, and
// (if schema.KeyAttrs is non-nil) the key attribute indices appended after.
func serializePage0(schema *Schema, tupleCount, firstFreePage int) ([]byte, error) {
	buf := make([]byte, pagefile.PageSize)

	numAttr := len(schema.Attributes)
	keySize := len(schema.KeyAttrs)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(tupleCount))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(firstFreePage))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(numAttr))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(keySize))

	off := page0HeaderSize
	for _, a := range schema.Attributes {
		if len(a.Name) > maxAttrNameLen {
			return nil, fmt.Errorf("record: attribute name %q exceeds %d bytes: %w", a.Name, maxAttrNameLen, dberror.ErrInvalidParameter)
		}
		if off+attrEntrySize > len(buf) {
			return nil, fmt.Errorf("record: schema too large for page 0: %w", dberror.ErrInvalidParameter)
		}
		copy(buf[off:off+attrNameSize], a.Name)
		binary.LittleEndian.PutUint32(buf[off+attrNameSize:off+attrNameSize+4], uint32(a.Type))
		binary.LittleEndian.PutUint32(buf[off+attrNameSize+4:off+attrEntrySize], uint32(a.Length))
		off += attrEntrySize
	}

	if schema.KeyAttrs != nil {
		if off+4*keySize > len(buf) {
			return nil, fmt.Errorf("record: key attribute list too large for page 0: %w", dberror.ErrInvalidParameter)
		}
		for _, k := range schema.KeyAttrs {
			binary.LittleEndian.PutUint32(buf[off:off+4], uint32(k))
			off += 4
		}
	}

	return buf, nil
}

// deserializePage0 decodes the metadata page written by serializePage0.
func deserializePage0(buf []byte) (schema *Schema, tupleCount, firstFreePage int, err error) {
	if len(buf) < page0HeaderSize {
		return nil, 0, 0, fmt.Errorf("record: page 0 too small: %w", dberror.ErrInvalidParameter)
	}

	tupleCount = int(int32(binary.LittleEndian.Uint32(buf[0:4])))
	firstFreePage = int(int32(binary.LittleEndian.Uint32(buf[4:8])))
	numAttr := int(binary.LittleEndian.Uint32(buf[8:12]))
	keySize := int(binary.LittleEndian.Uint32(buf[12:16]))

	off := page0HeaderSize
	attrs := make([]Attribute, numAttr)
	for i := 0; i < numAttr; i++ {
		if off+attrEntrySize > len(buf) {
			return nil, 0, 0, fmt.Errorf("record: page 0 truncated reading attribute %d: %w", i, dberror.ErrInvalidParameter)
		}
		nameBytes := buf[off : off+attrNameSize]
		n := 0
		for n < len(nameBytes) && nameBytes[n] != 0 {
			n++
		}
		name := string(nameBytes[:n])
		dt := DataType(int32(binary.LittleEndian.Uint32(buf[off+attrNameSize : off+attrNameSize+4])))
		length := int(int32(binary.LittleEndian.Uint32(buf[off+attrNameSize+4 : off+attrEntrySize])))
		attrs[i] = Attribute{Name: name, Type: dt, Length: length}
		off += attrEntrySize
	}

	var keyAttrs []int
	if keySize > 0 {
		if off+4*keySize > len(buf) {
			// The key list would run past the end of page 0; treat
			// the keys as absent rather than failing the whole open.
			keyAttrs = nil
		} else {
			keyAttrs = make([]int, keySize)
			for i := 0; i < keySize; i++ {
				keyAttrs[i] = int(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
				off += 4
			}
		}
	}

	return &Schema{Attributes: attrs, KeyAttrs: keyAttrs}, tupleCount, firstFreePage, nil
}

// writeCounts patches just tuple_count and first_free_page into an
// already-serialized page 0 buffer, leaving the schema bytes untouched.
func writeCounts(buf []byte, tupleCount, firstFreePage int) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(tupleCount))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(firstFreePage))
}
