package alloc

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"

	"github.com/joshuapare/segalloc/arena"
	"github.com/joshuapare/segalloc/internal/format"
)

// Allocator manages a single arena. It is not safe for concurrent use.
type Allocator struct {
	a       arena.Arena
	log     *slog.Logger
	noSlabs bool
	stats   Stats

	// scratch stages payloads that must survive a release.
	scratch []byte
}

// New initializes an allocator over an empty arena. The index tables are
// carved from the front of the arena. A nil opts uses defaults.
func New(a arena.Arena, opts *Options) (*Allocator, error) {
	if opts == nil {
		opts = &Options{}
	}
	if a.Size() != 0 {
		return nil, ErrArenaInUse
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	al := &Allocator{a: a, log: log, noSlabs: opts.DisableSlabs}
	if _, err := al.grow(prologueSize); err != nil {
		return nil, fmt.Errorf("reserve index tables: %w", err)
	}
	clear(al.data()[:prologueSize])
	return al, nil
}

// grow extends the arena by n bytes and returns the offset of the new region.
func (al *Allocator) grow(n int) (int, error) {
	base, err := al.a.Grow(n)
	if err != nil {
		al.log.Debug("arena growth failed", "bytes", n, "size", al.a.Size(), "error", err)
		return 0, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}
	al.stats.GrowCalls++
	al.stats.GrowBytes += int64(n)
	al.log.Debug("arena grown", "bytes", n, "size", al.a.Size())
	return base, nil
}

// Alloc returns a pointer to at least size bytes aligned to 16. Requests of up
// to 32 bytes are served from slabs when possible. Alloc(0) returns a valid
// minimal allocation.
func (al *Allocator) Alloc(size int) (Ptr, error) {
	al.stats.AllocCalls++
	return al.alloc(size)
}

func (al *Allocator) alloc(size int) (Ptr, error) {
	if size < 0 {
		return Nil, ErrBadSize
	}
	if !al.noSlabs && size <= 2*format.Alignment {
		class := 0
		if size > format.Alignment {
			class = 1
		}
		// A slab miss falls through to the free lists, which may still have room.
		if p, err := al.slabAlloc(class); err == nil && p != Nil {
			return p, nil
		}
	}
	return al.listAlloc(size)
}

// Free releases p. Freeing Nil is a no-op. A pointer that is already free or
// was never returned by this allocator is rejected with ErrInvalidFree and the
// heap is not modified.
func (al *Allocator) Free(p Ptr) error {
	al.stats.FreeCalls++
	if p == Nil {
		return nil
	}

	var err error
	switch r, ok := al.slabOf(p); {
	case !arena.InBounds(al.a, int(p)):
		err = ErrInvalidFree
	case ok:
		err = al.slabFree(r, p)
	default:
		err = al.listFree(p)
	}
	if err != nil {
		al.stats.InvalidFrees++
		al.log.Warn("rejected free", "ptr", int(p))
		return fmt.Errorf("free %d: %w", p, err)
	}
	return nil
}

// Calloc allocates count*size zeroed bytes.
func (al *Allocator) Calloc(count, size int) (Ptr, error) {
	al.stats.CallocCalls++
	if count < 0 || size < 0 {
		return Nil, ErrBadSize
	}
	hi, lo := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || lo > math.MaxInt {
		return Nil, fmt.Errorf("calloc %d x %d: %w", count, size, ErrTooLarge)
	}
	n := int(lo)

	al.stats.AllocCalls++
	p, err := al.alloc(n)
	if err != nil {
		return Nil, err
	}
	clear(al.Bytes(p, n))
	return p, nil
}

// UsableSize returns the number of payload bytes available at p, or 0 when p
// is not a live allocation.
func (al *Allocator) UsableSize(p Ptr) int {
	if p == Nil || !arena.InBounds(al.a, int(p)) {
		return 0
	}
	if r, ok := al.slabOf(p); ok {
		if al.slabLive(r, p) {
			return r.slotSize()
		}
		return 0
	}
	if _, t, ok := al.blockOf(p); ok && t.Allocated {
		return t.Size - format.TagOverhead
	}
	return 0
}

// Bytes returns a view of n payload bytes at p. The slice is only valid until
// the next call that may grow the arena.
func (al *Allocator) Bytes(p Ptr, n int) []byte {
	off := int(p)
	return al.data()[off : off+n : off+n]
}

// Stats returns a snapshot of the allocator counters.
func (al *Allocator) Stats() Stats {
	s := al.stats
	s.HeapSize = al.a.Size()
	return s
}

// FreeListStats reports the occupancy of every non-empty free-list class.
func (al *Allocator) FreeListStats() []ClassStats {
	var out []ClassStats
	for class := range format.NumClasses {
		cs := ClassStats{Class: class, Limit: 1 << (class + format.MinClassShift)}
		for b := al.listHead(class); b != 0; b = al.succ(b) {
			cs.Blocks++
			cs.Bytes += int64(al.tag(b).Size)
		}
		if cs.Blocks > 0 {
			out = append(out, cs)
		}
	}
	return out
}
