//go:build !linux && !darwin

package arena

// Mmap falls back to a heap-backed arena on platforms without the reservation
// scheme used on Linux and macOS.
type Mmap struct {
	*Mem
	opts   MmapOptions
	closed bool
}

// NewMmap returns a heap-backed arena with the requested capacity.
func NewMmap(opts *MmapOptions) (*Mmap, error) {
	o := opts.withDefaults()
	return &Mmap{Mem: NewMem(o.MaxSize), opts: o}, nil
}

// Grow extends the arena by n bytes.
func (m *Mmap) Grow(n int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	return m.Mem.Grow(n)
}

// Committed returns the arena size; the fallback has no reservation.
func (m *Mmap) Committed() int { return m.Size() }

// Close drops the buffer. Further calls are no-ops.
func (m *Mmap) Close() error {
	if !m.closed {
		m.closed = true
		m.Mem = NewMem(m.opts.MaxSize)
	}
	return nil
}
