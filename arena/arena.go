package arena

import (
	"errors"
	"math"
)

var (
	// ErrExhausted indicates the arena cannot be extended by the requested amount.
	ErrExhausted = errors.New("arena: exhausted")

	// ErrClosed indicates an operation on an arena that has been closed.
	ErrClosed = errors.New("arena: closed")

	// ErrBadGrow indicates a non-positive growth request.
	ErrBadGrow = errors.New("arena: grow size must be positive")
)

// DefaultMaxSize is the capacity used when a zero MaxSize is configured:
// 4 GiB, or the largest int on 32-bit platforms.
const DefaultMaxSize = min(1<<32, math.MaxInt)

// Arena is the growth primitive the allocator runs on.
type Arena interface {
	// Grow extends the arena by n bytes and returns the offset of the first new
	// byte. The new bytes are zero. On failure the arena is unchanged.
	Grow(n int) (int, error)

	// Lo returns the lowest valid offset. It is always 0.
	Lo() int

	// Hi returns the highest valid offset, or -1 while the arena is empty.
	Hi() int

	// Size returns the number of bytes currently in the arena.
	Size() int

	// Bytes returns the current contents. The slice is invalidated by Grow.
	Bytes() []byte
}

// InBounds reports whether off lies inside a.
func InBounds(a Arena, off int) bool {
	return off >= a.Lo() && off <= a.Hi()
}
