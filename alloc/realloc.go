package alloc

import (
	"fmt"

	"github.com/joshuapare/segalloc/arena"
	"github.com/joshuapare/segalloc/internal/format"
)

// Realloc resizes the allocation at p to size bytes, preserving the leading
// min(old, new) payload bytes. The returned pointer may equal p. On failure p
// stays valid and unchanged.
//
// Pointers outside the arena, including Nil, and pointers that are not live
// allocations are rejected with ErrInvalidResize.
func (al *Allocator) Realloc(p Ptr, size int) (Ptr, error) {
	al.stats.ReallocCalls++
	if size < 0 {
		return Nil, ErrBadSize
	}
	if p == Nil || !arena.InBounds(al.a, int(p)) {
		return Nil, al.rejectResize(p)
	}

	if r, ok := al.slabOf(p); ok {
		if !al.slabLive(r, p) {
			return Nil, al.rejectResize(p)
		}
		return al.slabRealloc(r, p, size)
	}

	b, t, ok := al.blockOf(p)
	if !ok || !t.Allocated {
		return Nil, al.rejectResize(p)
	}
	if size > format.MaxPayload {
		return Nil, ErrTooLarge
	}
	need := format.BlockSizeFor(size)

	switch {
	case need == t.Size:
		return p, nil
	case need < t.Size:
		al.shrink(b, t.Size, need)
		return p, nil
	}

	if al.extend(b, t.Size, need) {
		al.stats.ReallocInPlace++
		return p, nil
	}
	return al.move(b, t.Size, size)
}

func (al *Allocator) rejectResize(p Ptr) error {
	al.stats.InvalidResizes++
	al.log.Warn("rejected realloc", "ptr", int(p))
	return fmt.Errorf("realloc %d: %w", p, ErrInvalidResize)
}

// slabRealloc keeps p when size still maps to the same slot class. Otherwise
// the replacement is allocated before the slot is released.
func (al *Allocator) slabRealloc(r slabRef, p Ptr, size int) (Ptr, error) {
	slot := r.slotSize()
	if size <= slot && size > slot-format.Alignment {
		return p, nil
	}
	// A 16-byte slot covers every size up to 16.
	if r.class == 0 && size <= slot {
		return p, nil
	}

	np, err := al.alloc(size)
	if err != nil {
		return Nil, err
	}
	copy(al.Bytes(np, min(slot, size)), al.Bytes(p, slot))
	if err := al.slabFree(r, p); err != nil {
		return Nil, err
	}
	al.stats.ReallocMoved++
	return np, nil
}

// shrink trims the allocated block at b from have to need bytes and releases
// the tail, which merges with a free successor. The retained payload lies
// below the new footer and is not disturbed.
func (al *Allocator) shrink(b, have, need int) {
	tail := b + need
	al.setTags(b, need, true)
	al.setTags(tail, have-need, true)
	al.release(tail, have-need)
}

// extend grows the allocated block at b to need bytes without moving it, by
// absorbing a free successor or by growing the arena when b is the last block.
func (al *Allocator) extend(b, have, need int) bool {
	next := b + have
	if next == al.a.Size() {
		if _, err := al.grow(need - have); err != nil {
			return false
		}
		al.setTags(b, need, true)
		return true
	}

	t := al.tag(next)
	if t.Allocated || have+t.Size < need {
		return false
	}
	if t.Size > format.MinBlockSize {
		al.listRemove(next, t.Size)
	}
	al.clearBoundary(next)
	al.place(b, have+t.Size, need)
	return true
}

// move relocates the block at b. The payload is staged, the block released so
// its space can be reused, and a new block allocated. If that allocation fails
// the release is undone and the payload restored.
func (al *Allocator) move(b, have, size int) (Ptr, error) {
	n := have - format.TagOverhead
	stage := al.stage(payload(b), n)

	pre, post := 0, 0
	if b > firstBlock {
		if t := al.prevTag(b); !t.Allocated {
			pre = t.Size
		}
	}
	if next := b + have; next < al.a.Size() {
		if t := al.tag(next); !t.Allocated {
			post = t.Size
		}
	}

	start, total := al.release(b, have)
	np, err := al.alloc(size)
	if err != nil {
		al.unrelease(start, total, b, have, pre, post)
		copy(al.Bytes(payload(b), n), stage)
		al.stats.ReallocRolled++
		return Nil, err
	}
	copy(al.Bytes(np, n), stage)
	al.stats.ReallocMoved++
	return np, nil
}

// stage copies n payload bytes at p into the scratch buffer.
func (al *Allocator) stage(p Ptr, n int) []byte {
	if cap(al.scratch) < n {
		al.scratch = make([]byte, n)
	}
	al.scratch = al.scratch[:n]
	copy(al.scratch, al.Bytes(p, n))
	return al.scratch
}

// unrelease splits the merged free block [start, start+total) back into the
// free predecessor of pre bytes, the allocated block at b and the free
// successor of post bytes that existed before release.
func (al *Allocator) unrelease(start, total, b, have, pre, post int) {
	if total > format.MinBlockSize {
		al.listRemove(start, total)
	}
	if pre > 0 {
		al.setTags(start, pre, false)
		if pre > format.MinBlockSize {
			al.listInsert(start, pre)
		}
	}
	al.setTags(b, have, true)
	if post > 0 {
		al.setTags(b+have, post, false)
		if post > format.MinBlockSize {
			al.listInsert(b+have, post)
		}
	}
}
