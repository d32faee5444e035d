package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates the region does not have enough room left.
	// The concrete error is *OutOfMemoryError.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidMarker indicates a marker from another region, beyond the cursor,
	// or discarded by an earlier rewind.
	ErrInvalidMarker = errors.New("alloc: invalid marker")

	// ErrStaleHandle indicates the allocation was discarded by a reset or rewind.
	ErrStaleHandle = errors.New("alloc: stale handle")

	// ErrForeignHandle indicates a handle issued by a different region.
	ErrForeignHandle = errors.New("alloc: handle belongs to another region")

	// ErrBadAlignment indicates an alignment that is not a power of two.
	ErrBadAlignment = errors.New("alloc: alignment must be a power of two")

	// ErrBadSize indicates a negative allocation size.
	ErrBadSize = errors.New("alloc: negative size")

	// ErrBadCapacity indicates a negative region capacity.
	ErrBadCapacity = errors.New("alloc: negative capacity")

	// ErrPointerType indicates a type that holds Go pointers and cannot live in region memory.
	ErrPointerType = errors.New("alloc: type contains Go pointers")

	// ErrClosed indicates the region's backing storage was released.
	ErrClosed = errors.New("alloc: region closed")

	// ErrBusy indicates a region was re-entered from inside a build callback.
	ErrBusy = errors.New("alloc: region is inside a build callback")
)

// OutOfMemoryError is returned when an allocation does not fit.
// Requested includes alignment padding.
type OutOfMemoryError struct {
	Requested int
	Remaining int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("alloc: out of memory (requested=%d, remaining=%d)", e.Requested, e.Remaining)
}

// Is makes errors.Is(err, ErrOutOfMemory) match.
func (e *OutOfMemoryError) Is(target error) bool {
	return target == ErrOutOfMemory
}
