//go:build linux || darwin

package arena

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mmap is an Arena backed by an anonymous private mapping. The full capacity is
// reserved at construction; Grow commits pages in place so the base address is
// stable for the lifetime of the arena.
type Mmap struct {
	data      []byte // whole reservation
	size      int    // bytes handed out
	committed int    // bytes readable and writable
	pageSize  int
	opts      MmapOptions
}

// NewMmap reserves opts.MaxSize bytes of address space.
func NewMmap(opts *MmapOptions) (*Mmap, error) {
	o := opts.withDefaults()
	pageSize := os.Getpagesize()
	reserve := alignUp(o.MaxSize, pageSize)

	data, err := unix.Mmap(-1, 0, reserve, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", reserve, err)
	}
	return &Mmap{
		data:     data,
		pageSize: pageSize,
		opts:     o,
	}, nil
}

// Grow commits enough pages to cover n more bytes.
func (m *Mmap) Grow(n int) (int, error) {
	if m.data == nil {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, ErrBadGrow
	}
	base := m.size
	if n > m.opts.MaxSize-base {
		return 0, fmt.Errorf("grow %d bytes at size %d (max %d): %w", n, base, m.opts.MaxSize, ErrExhausted)
	}
	end := base + n
	if end > m.committed {
		want := min(alignUp(end, m.pageSize), len(m.data))
		region := m.data[m.committed:want]
		if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, fmt.Errorf("arena: commit %d bytes: %w: %w", len(region), ErrExhausted, err)
		}
		if m.opts.Prefault {
			// Best effort; the pages work without the hint.
			_ = unix.Madvise(region, unix.MADV_WILLNEED)
		}
		m.committed = want
	}
	m.size = end
	return base, nil
}

// Lo returns 0.
func (m *Mmap) Lo() int { return 0 }

// Hi returns the last valid offset.
func (m *Mmap) Hi() int { return m.size - 1 }

// Size returns the current arena size.
func (m *Mmap) Size() int { return m.size }

// Bytes returns the committed, handed-out part of the mapping.
func (m *Mmap) Bytes() []byte {
	if m.data == nil {
		return nil
	}
	return m.data[:m.size]
}

// Committed returns how many bytes of the reservation are backed by pages.
func (m *Mmap) Committed() int { return m.committed }

// Close unmaps the reservation. Further calls are no-ops.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.size = 0
	m.committed = 0
	return err
}
