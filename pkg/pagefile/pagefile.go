// Package pagefile implements the lowest layer of the storage stack: a
// fixed-size page file on local disk. It is deliberately uninteresting
// plumbing over sequential file I/O — the buffer pool and record heap built
// on top of it are where the real design work lives.
package pagefile

import (
	"fmt"
	"io"
	"os"

	"github.com/mnohosten/heapdb/pkg/dberror"
)

// PageSize is the fixed size of every page, in bytes.
const PageSize = 4096

// PageIndex identifies a page within a file, starting at 0.
type PageIndex int

// File is an open handle onto a page file. It owns the underlying *os.File
// and tracks total page count and cursor position the way the original
// storage manager's SM_FileHandle does.
type File struct {
	name       string
	f          *os.File
	totalPages int
	curPage    PageIndex
}

// Create materializes a new page file containing exactly one zeroed page.
// It truncates any existing file at name.
func Create(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("pagefile: create %s: %w", name, err)
	}
	defer f.Close()

	zero := make([]byte, PageSize)
	if _, err := f.Write(zero); err != nil {
		return fmt.Errorf("pagefile: write initial page of %s: %w: %w", name, err, dberror.ErrWriteFailed)
	}
	return nil
}

// Open opens an existing page file read-write and computes its page count
// from the file size, rounding up. Size 0 still yields at least 1 total
// page — open never reports an empty file as having zero pages.
func Open(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pagefile: open %s: %w", name, dberror.ErrFileNotFound)
		}
		return nil, fmt.Errorf("pagefile: open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pagefile: stat %s: %w", name, err)
	}

	total := int((info.Size() + PageSize - 1) / PageSize)
	if total < 1 {
		total = 1
	}

	return &File{name: name, f: f, totalPages: total, curPage: 0}, nil
}

// Close releases the underlying file descriptor.
func (fh *File) Close() error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	if err := fh.f.Close(); err != nil {
		return fmt.Errorf("pagefile: close %s: %w", fh.name, dberror.ErrFileCloseFailed)
	}
	fh.f = nil
	return nil
}

// Destroy removes the named page file from disk.
func Destroy(name string) error {
	if err := os.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("pagefile: destroy %s: %w", name, dberror.ErrFileNotFound)
		}
		return fmt.Errorf("pagefile: destroy %s: %w", name, err)
	}
	return nil
}

// Name returns the path the handle was opened with.
func (fh *File) Name() string { return fh.name }

// TotalPages returns the number of pages currently in the file.
func (fh *File) TotalPages() int { return fh.totalPages }

// CurPage returns the cursor's current page index.
func (fh *File) CurPage() PageIndex { return fh.curPage }

func (fh *File) validIndex(i PageIndex) bool {
	return i >= 0 && int(i) < fh.totalPages
}

// Read reads page i into buf, which must be exactly PageSize bytes. It fails
// with ErrReadNonExistingPage if i is outside [0, TotalPages()).
func (fh *File) Read(i PageIndex, buf []byte) error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("pagefile: read buffer must be %d bytes: %w", PageSize, dberror.ErrInvalidParameter)
	}
	if !fh.validIndex(i) {
		return dberror.ErrReadNonExistingPage
	}

	n, err := fh.f.ReadAt(buf, int64(i)*PageSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("pagefile: read page %d of %s: %w", i, fh.name, err)
	}
	if n != PageSize {
		return fmt.Errorf("pagefile: short read of page %d of %s: %w", i, fh.name, dberror.ErrReadNonExistingPage)
	}

	fh.curPage = i
	return nil
}

// Write writes buf (exactly PageSize bytes) to page i. It fails with
// ErrReadNonExistingPage if i is outside [0, TotalPages()) — writing past
// the end of the file requires AppendEmpty/EnsureCapacity first.
func (fh *File) Write(i PageIndex, buf []byte) error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	if len(buf) != PageSize {
		return fmt.Errorf("pagefile: write buffer must be %d bytes: %w", PageSize, dberror.ErrInvalidParameter)
	}
	if !fh.validIndex(i) {
		return dberror.ErrReadNonExistingPage
	}

	n, err := fh.f.WriteAt(buf, int64(i)*PageSize)
	if err != nil {
		return fmt.Errorf("pagefile: write page %d of %s: %w: %w", i, fh.name, err, dberror.ErrWriteFailed)
	}
	if n != PageSize {
		return fmt.Errorf("pagefile: short write of page %d of %s: %w", i, fh.name, dberror.ErrWriteFailed)
	}

	fh.curPage = i
	return nil
}

// AppendEmpty appends one zeroed page to the end of the file and moves the
// cursor to it.
func (fh *File) AppendEmpty() error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}

	zero := make([]byte, PageSize)
	if _, err := fh.f.WriteAt(zero, int64(fh.totalPages)*PageSize); err != nil {
		return fmt.Errorf("pagefile: append page to %s: %w: %w", fh.name, err, dberror.ErrWriteFailed)
	}

	fh.totalPages++
	fh.curPage = PageIndex(fh.totalPages - 1)
	return nil
}

// EnsureCapacity appends zeroed pages until TotalPages() >= n. It is a
// no-op if the file already has at least n pages. If a write fails partway
// through the extension, the page count reflects only the pages that were
// successfully appended — any trailing garbage left on disk beyond that is
// tolerated, since a later Open re-measures the file size.
func (fh *File) EnsureCapacity(n int) error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	for fh.totalPages < n {
		if err := fh.AppendEmpty(); err != nil {
			return err
		}
	}
	return nil
}

// First reads page 0 into buf.
func (fh *File) First(buf []byte) error { return fh.Read(0, buf) }

// Last reads the final page into buf.
func (fh *File) Last(buf []byte) error { return fh.Read(PageIndex(fh.totalPages-1), buf) }

// Current reads the page at the cursor into buf.
func (fh *File) Current(buf []byte) error { return fh.Read(fh.curPage, buf) }

// Next reads the page after the cursor into buf, failing with
// ErrReadNonExistingPage if the cursor is already on the last page.
func (fh *File) Next(buf []byte) error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	return fh.Read(fh.curPage+1, buf)
}

// Previous reads the page before the cursor into buf, failing with
// ErrReadNonExistingPage if the cursor is already on page 0.
func (fh *File) Previous(buf []byte) error {
	if fh == nil || fh.f == nil {
		return dberror.ErrFileHandleNotInit
	}
	if fh.curPage-1 < 0 {
		return dberror.ErrReadNonExistingPage
	}
	return fh.Read(fh.curPage-1, buf)
}
