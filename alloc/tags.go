package alloc

import "github.com/joshuapare/segalloc/internal/format"

// Boundary tag and link accessors. Every helper re-reads the arena bytes so
// callers never hold a slice across a Grow.

func (al *Allocator) data() []byte {
	return al.a.Bytes()
}

// tag decodes the header of the block at b.
func (al *Allocator) tag(b int) format.Tag {
	return format.ReadTag(al.data(), b)
}

// prevTag decodes the footer of the block that ends at b.
func (al *Allocator) prevTag(b int) format.Tag {
	return format.ReadTag(al.data(), b-format.WordSize)
}

// setTags writes matching header and footer words for the block at b.
func (al *Allocator) setTags(b, size int, allocated bool) {
	format.WriteTags(al.data(), b, size, allocated)
}

// clearBoundary wipes the footer ending at b and the header starting at b. It
// is used when two blocks merge so stale tags inside the merged block cannot
// pass for a live allocation.
func (al *Allocator) clearBoundary(b int) {
	d := al.data()
	format.PutU64(d, b-format.WordSize, 0)
	format.PutU64(d, b, 0)
}

func (al *Allocator) pred(b int) int {
	return format.ReadOff(al.data(), b+format.PredOffset)
}

func (al *Allocator) succ(b int) int {
	return format.ReadOff(al.data(), b+format.SuccOffset)
}

func (al *Allocator) setPred(b, p int) {
	format.PutOff(al.data(), b+format.PredOffset, p)
}

func (al *Allocator) setSucc(b, s int) {
	format.PutOff(al.data(), b+format.SuccOffset, s)
}

func (al *Allocator) listHead(class int) int {
	return format.ReadOff(al.data(), listsOff+class*format.WordSize)
}

func (al *Allocator) setListHead(class, b int) {
	format.PutOff(al.data(), listsOff+class*format.WordSize, b)
}

// blockOf maps a free-list payload pointer to its block, checking that the
// header is plausible: aligned, inside the arena and mirrored by its footer.
func (al *Allocator) blockOf(p Ptr) (int, format.Tag, bool) {
	b := int(p) - format.WordSize
	size := al.a.Size()
	if b < firstBlock || b+format.MinBlockSize > size || !format.IsAligned16(int(p)) {
		return 0, format.Tag{}, false
	}
	t := al.tag(b)
	if t.Size < format.MinBlockSize || !format.IsAligned16(t.Size) || t.Size > size-b {
		return 0, format.Tag{}, false
	}
	if al.prevTag(b+t.Size) != t {
		return 0, format.Tag{}, false
	}
	return b, t, true
}

// payload returns the payload pointer of the block at b.
func payload(b int) Ptr {
	return Ptr(b + format.WordSize)
}
