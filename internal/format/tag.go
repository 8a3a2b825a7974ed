package format

import "math/bits"

// Tag is a decoded boundary tag.
//
// Layout of the raw 64-bit word:
//
//	bits 63..3  block size in bytes (header, payload and footer)
//	bits  2..0  state (0 = free, 1 = allocated)
type Tag struct {
	Size      int
	Allocated bool
}

// EncodeTag packs a size and state into a tag word.
func EncodeTag(size int, allocated bool) uint64 {
	w := uint64(size) << SizeShift
	if allocated {
		w |= StateAllocated
	}
	return w
}

// DecodeTag unpacks a tag word.
func DecodeTag(w uint64) Tag {
	return Tag{
		Size:      int(w >> SizeShift),
		Allocated: w&StateMask == StateAllocated,
	}
}

// ReadTag decodes the tag word stored at off.
func ReadTag(b []byte, off int) Tag {
	return DecodeTag(ReadU64(b, off))
}

// WriteTags writes the header at block and the mirrored footer at
// block+size-WordSize.
func WriteTags(b []byte, block, size int, allocated bool) {
	w := EncodeTag(size, allocated)
	PutU64(b, block, w)
	PutU64(b, block+size-WordSize, w)
}

// SizeClass returns the free-list class for a block of size bytes:
// ceil(log2(size)) - 5. Callers only ask for sizes >= MinListedSize.
func SizeClass(size int) int {
	return bits.Len64(uint64(size-1)) - MinClassShift
}
