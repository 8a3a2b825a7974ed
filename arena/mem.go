package arena

import "fmt"

// Mem is an Arena backed by a Go byte slice.
type Mem struct {
	buf     []byte
	maxSize int
	grows   int
}

// NewMem creates an empty heap-backed arena that refuses to grow past maxSize
// bytes. A maxSize of 0 selects DefaultMaxSize.
func NewMem(maxSize int) *Mem {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Mem{maxSize: maxSize}
}

// Grow appends n zeroed bytes.
func (m *Mem) Grow(n int) (int, error) {
	if n <= 0 {
		return 0, ErrBadGrow
	}
	base := len(m.buf)
	if n > m.maxSize-base {
		return 0, fmt.Errorf("grow %d bytes at size %d (max %d): %w", n, base, m.maxSize, ErrExhausted)
	}
	if cap(m.buf)-base >= n {
		// Reused capacity may hold bytes from a previous Reset.
		m.buf = m.buf[:base+n]
		clear(m.buf[base:])
	} else {
		m.buf = append(m.buf, make([]byte, n)...)
	}
	m.grows++
	return base, nil
}

// Lo returns 0.
func (m *Mem) Lo() int { return 0 }

// Hi returns the last valid offset.
func (m *Mem) Hi() int { return len(m.buf) - 1 }

// Size returns the current arena size.
func (m *Mem) Size() int { return len(m.buf) }

// Bytes returns the arena contents.
func (m *Mem) Bytes() []byte { return m.buf }

// MaxSize returns the configured capacity.
func (m *Mem) MaxSize() int { return m.maxSize }

// Grows returns how many successful Grow calls have been made.
func (m *Mem) Grows() int { return m.grows }

// Reset empties the arena while keeping its storage for reuse.
func (m *Mem) Reset() {
	m.buf = m.buf[:0]
	m.grows = 0
}
