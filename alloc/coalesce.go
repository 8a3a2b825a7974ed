package alloc

import "github.com/joshuapare/segalloc/internal/format"

// release frees the block at b, merging it with free physical neighbors, and
// returns the extent of the resulting free block.
//
// The four neighbor cases:
//
//	both allocated   tag b free
//	previous free    unlink previous, merged block starts at previous
//	next free        unlink next, merged block starts at b
//	both free        unlink both, merged block starts at previous
//
// Neighbors of exactly MinBlockSize are padding and merge without an unlink.
// The merged block goes on a list only when it is larger than MinBlockSize.
func (al *Allocator) release(b, size int) (int, int) {
	start, total := b, size

	if next := b + size; next < al.a.Size() {
		if t := al.tag(next); !t.Allocated {
			if t.Size > format.MinBlockSize {
				al.listRemove(next, t.Size)
			}
			al.clearBoundary(next)
			total += t.Size
			al.stats.CoalesceNext++
		}
	}

	if b > firstBlock {
		if t := al.prevTag(b); !t.Allocated {
			start = b - t.Size
			if t.Size > format.MinBlockSize {
				al.listRemove(start, t.Size)
			}
			al.clearBoundary(b)
			total += t.Size
			al.stats.CoalescePrev++
		}
	}

	al.setTags(start, total, false)
	if total > format.MinBlockSize {
		al.listInsert(start, total)
	}
	return start, total
}

// listFree releases a free-list payload pointer.
func (al *Allocator) listFree(p Ptr) error {
	b, t, ok := al.blockOf(p)
	if !ok || !t.Allocated {
		return ErrInvalidFree
	}
	al.release(b, t.Size)
	return nil
}
