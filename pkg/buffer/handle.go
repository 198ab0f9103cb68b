package buffer

import "github.com/mnohosten/heapdb/pkg/pagefile"

// Handle is what Pin binds to a caller: a borrowed reference to a frame
// buffer that is valid until the matching Unpin. Data aliases the frame's
// backing array directly — mutating it and calling MarkDirty is how a
// caller persists a change.
type Handle struct {
	PageNum pagefile.PageIndex
	Data    []byte
}
