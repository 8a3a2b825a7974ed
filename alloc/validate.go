package alloc

import (
	"fmt"

	"github.com/joshuapare/segalloc/internal/format"
)

// Corruption kinds reported by ValidateHeap.
const (
	KindLayout    = "Layout"
	KindTag       = "Tag"
	KindAlignment = "Alignment"
	KindCoalesce  = "Coalesce"
	KindFreeList  = "FreeList"
	KindSlab      = "Slab"
)

// CorruptionError describes the first inconsistency found by ValidateHeap.
// Offset is the arena offset of the offending block or table entry, or -1.
type CorruptionError struct {
	Kind    string
	Message string
	Offset  int
}

func (e *CorruptionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets callers match any corruption with errors.Is(err, ErrCorruptHeap).
func (e *CorruptionError) Unwrap() error { return ErrCorruptHeap }

func corrupt(kind string, off int, msg string, args ...any) error {
	return &CorruptionError{Kind: kind, Offset: off, Message: fmt.Sprintf(msg, args...)}
}

// ValidateHeap checks every structural invariant and returns the first
// violation as a *CorruptionError, or nil when the heap is consistent. It
// never modifies the heap.
//
// Checked, in order: the free lists (bounds, state, class, link symmetry,
// termination), the physical block sequence (tags, alignment, no adjacent
// free blocks, list membership), and the slab tables.
func (al *Allocator) ValidateHeap() error {
	size := al.a.Size()
	if size < firstBlock {
		return corrupt(KindLayout, -1, "arena of %d bytes is smaller than the index tables", size)
	}

	listed, err := al.checkLists(size)
	if err != nil {
		return err
	}
	if err := al.checkBlocks(size, listed); err != nil {
		return err
	}
	return al.checkSlabs()
}

// checkLists walks every class list and returns the set of listed blocks.
func (al *Allocator) checkLists(size int) (map[int]struct{}, error) {
	listed := make(map[int]struct{})
	// No list can hold more blocks than fit in the arena.
	limit := size/format.MinListedSize + 1

	for class := range format.NumClasses {
		prev, steps := 0, 0
		for b := al.listHead(class); b != 0; b = al.succ(b) {
			if steps++; steps > limit {
				return nil, corrupt(KindFreeList, b, "class %d list does not terminate", class)
			}
			if b < firstBlock || b+format.MinListedSize > size {
				return nil, corrupt(KindFreeList, b, "class %d links to a block outside the heap", class)
			}
			if !format.IsAligned16(int(payload(b))) {
				return nil, corrupt(KindAlignment, b, "listed block payload is not 16-byte aligned")
			}
			t := al.tag(b)
			if t.Allocated {
				return nil, corrupt(KindFreeList, b, "allocated block on class %d list", class)
			}
			if t.Size <= format.MinBlockSize || b+t.Size > size {
				return nil, corrupt(KindFreeList, b, "listed block has bad size %d", t.Size)
			}
			if c := format.SizeClass(t.Size); c != class {
				return nil, corrupt(KindFreeList, b, "block of %d bytes belongs to class %d, found on %d", t.Size, c, class)
			}
			if p := al.pred(b); p != prev {
				return nil, corrupt(KindFreeList, b, "predecessor link %d, expected %d", p, prev)
			}
			if _, dup := listed[b]; dup {
				return nil, corrupt(KindFreeList, b, "block listed twice")
			}
			listed[b] = struct{}{}
			prev = b
		}
	}
	return listed, nil
}

// checkBlocks walks the heap from the first block to the end of the arena.
func (al *Allocator) checkBlocks(size int, listed map[int]struct{}) error {
	free, prevFree := 0, false
	b := firstBlock
	for b < size {
		if !format.IsAligned16(int(payload(b))) {
			return corrupt(KindAlignment, b, "payload is not 16-byte aligned")
		}
		t := al.tag(b)
		if t.Size < format.MinBlockSize || !format.IsAligned16(t.Size) || t.Size > size-b {
			return corrupt(KindTag, b, "header holds bad size %d", t.Size)
		}
		if ft := al.prevTag(b + t.Size); ft != t {
			return corrupt(KindTag, b, "header %d/%t does not match footer %d/%t",
				t.Size, t.Allocated, ft.Size, ft.Allocated)
		}
		if !t.Allocated {
			if prevFree {
				return corrupt(KindCoalesce, b, "free block follows a free block")
			}
			if t.Size > format.MinBlockSize {
				if _, ok := listed[b]; !ok {
					return corrupt(KindFreeList, b, "free block of %d bytes is on no list", t.Size)
				}
				free++
			}
		}
		prevFree = !t.Allocated
		b += t.Size
	}
	if b != size {
		return corrupt(KindLayout, b, "last block overruns the arena end %d", size)
	}
	if free != len(listed) {
		return corrupt(KindFreeList, -1, "%d blocks listed but %d free blocks in the heap", len(listed), free)
	}
	return nil
}

// checkSlabs verifies that every live slab sits in a large enough allocated
// block and still has a slot in use.
func (al *Allocator) checkSlabs() error {
	for class, c := range slabClasses {
		for gen := range c.gens {
			base := al.slabHead(class, gen)
			if base == 0 {
				continue
			}
			entry := c.table + gen*format.WordSize
			_, t, ok := al.blockOf(Ptr(base))
			if !ok || !t.Allocated {
				return corrupt(KindSlab, entry, "%d-byte slab gen %d does not point at an allocated block", c.slotSize, gen)
			}
			words, _, total := c.geometry(gen)
			if t.Size-format.TagOverhead < total {
				return corrupt(KindSlab, entry, "%d-byte slab gen %d needs %d bytes, block holds %d",
					c.slotSize, gen, total, t.Size-format.TagOverhead)
			}
			used := false
			for w := range words {
				if format.ReadU64(al.data(), base+w*format.WordSize) != 0 {
					used = true
					break
				}
			}
			if !used {
				return corrupt(KindSlab, entry, "%d-byte slab gen %d is empty but still live", c.slotSize, gen)
			}
		}
	}
	return nil
}
