package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block fit and the arena could not grow.
	// The arena's own error is wrapped alongside it.
	ErrNoSpace = errors.New("alloc: no space")

	// ErrInvalidFree indicates a Free of a pointer that is already free or was
	// not returned by this allocator. The heap is left untouched.
	ErrInvalidFree = errors.New("alloc: invalid free")

	// ErrInvalidResize indicates a Realloc of a pointer outside the arena or of
	// a block that is not live.
	ErrInvalidResize = errors.New("alloc: invalid resize")

	// ErrTooLarge indicates a request whose block would not fit the largest size class.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrBadSize indicates a negative size or count.
	ErrBadSize = errors.New("alloc: negative size")

	// ErrArenaInUse indicates New was handed an arena that already holds data.
	ErrArenaInUse = errors.New("alloc: arena is not empty")
)

// ErrCorruptHeap is matched by every *CorruptionError.
var ErrCorruptHeap = errors.New("alloc: corrupt heap")
