// Package dberror defines the sentinel errors returned across the storage
// stack: page file, buffer pool, and record heap. Callers compare with
// errors.Is rather than switching on an integer code.
package dberror

import "errors"

var (
	// ErrInvalidParameter is returned for a nil handle or a nonsensical
	// argument — always a caller bug.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMemoryAllocation is returned when an allocation that is expected
	// to be infallible in Go (but was fallible in the original C record
	// manager) is retained as a surfaced error for API parity.
	ErrMemoryAllocation = errors.New("memory allocation error")

	// ErrFileNotFound is returned when a page file does not exist where
	// one was expected.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileHandleNotInit is returned when an operation is attempted on
	// a file handle that was never opened (or already closed).
	ErrFileHandleNotInit = errors.New("file handle not initialized")

	// ErrFileCloseFailed is returned when the underlying close syscall
	// fails.
	ErrFileCloseFailed = errors.New("file close failed")

	// ErrReadNonExistingPage is returned by Read and the convenience
	// readers when the requested page index is outside [0, totalPages).
	ErrReadNonExistingPage = errors.New("read of non-existing page")

	// ErrWriteFailed is returned when a page write does not complete in
	// full.
	ErrWriteFailed = errors.New("write failed")

	// ErrPinnedPagesInBuffer is returned by Pin when every frame is
	// pinned, and by Shutdown when any frame is still pinned.
	ErrPinnedPagesInBuffer = errors.New("pinned pages in buffer")

	// ErrScanConditionNotFound is returned by StartScan when no
	// predicate is supplied.
	ErrScanConditionNotFound = errors.New("scan condition not found")

	// ErrNoMoreTuples is returned by Next at normal end-of-iteration.
	ErrNoMoreTuples = errors.New("no more tuples")

	// ErrNoTupleWithGivenRID is returned by GetRecord when the addressed
	// slot is free. Scans skip free slots and do not return it.
	ErrNoTupleWithGivenRID = errors.New("no tuple with given rid")

	// ErrCompareValueOfDifferentDatatype is returned by expr comparisons
	// whose operands carry different DataTypes.
	ErrCompareValueOfDifferentDatatype = errors.New("compare value of different datatype")
)
