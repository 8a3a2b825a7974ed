package alloc

import (
	"math"

	"github.com/joshuapare/segalloc/internal/format"
)

// listInsert pushes the free block at b onto the head of its class list.
// Only blocks larger than MinBlockSize carry links.
func (al *Allocator) listInsert(b, size int) {
	class := format.SizeClass(size)
	head := al.listHead(class)
	al.setPred(b, 0)
	al.setSucc(b, head)
	if head != 0 {
		al.setPred(head, b)
	}
	al.setListHead(class, b)
}

// listRemove unlinks the free block at b from its class list.
func (al *Allocator) listRemove(b, size int) {
	pred, succ := al.pred(b), al.succ(b)
	if pred == 0 {
		al.setListHead(format.SizeClass(size), succ)
	} else {
		al.setSucc(pred, succ)
	}
	if succ != 0 {
		al.setPred(succ, pred)
	}
}

// findFit returns the best free block for a block of need bytes. Classes are
// scanned upward from need's own class; within a class the smallest adequate
// block wins and an exact match ends the scan. The first class that yields any
// candidate ends the search. A minimal block has no class of its own and is
// served from class 0.
func (al *Allocator) findFit(need int) (int, int, bool) {
	for class := max(0, format.SizeClass(need)); class < format.NumClasses; class++ {
		best, bestSize, bestDiff := 0, 0, math.MaxInt
		for b := al.listHead(class); b != 0; b = al.succ(b) {
			t := al.tag(b)
			if t.Allocated || t.Size < need {
				continue
			}
			if diff := t.Size - need; diff < bestDiff {
				best, bestSize, bestDiff = b, t.Size, diff
				if diff == 0 {
					break
				}
			}
		}
		if best != 0 {
			return best, bestSize, true
		}
	}
	return 0, 0, false
}

// place marks need bytes at b allocated out of a block of have bytes that has
// already been unlinked. A remainder large enough for links goes back on a
// list; a 16-byte remainder is tagged free and left as padding.
func (al *Allocator) place(b, have, need int) {
	al.setTags(b, need, true)
	rem := have - need
	switch {
	case rem >= format.MinListedSize:
		al.stats.Splits++
		al.setTags(b+need, rem, false)
		al.listInsert(b+need, rem)
	case rem > 0:
		al.setTags(b+need, rem, false)
	}
}

// listAlloc serves a request of size payload bytes from the free lists,
// growing the arena by exactly one block when nothing fits.
func (al *Allocator) listAlloc(size int) (Ptr, error) {
	if size > format.MaxPayload {
		return Nil, ErrTooLarge
	}
	need := format.BlockSizeFor(size)

	if b, have, ok := al.findFit(need); ok {
		al.listRemove(b, have)
		al.place(b, have, need)
		al.stats.ListAllocs++
		return payload(b), nil
	}

	b, err := al.grow(need)
	if err != nil {
		return Nil, err
	}
	al.setTags(b, need, true)
	al.stats.ListAllocs++
	return payload(b), nil
}
