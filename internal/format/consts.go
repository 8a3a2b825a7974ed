// Package format holds the low-level word codec and block-tag layout shared by
// the allocator and its validator. Everything here works on plain byte slices
// and integer offsets so the arena can live in any backing store.
package format

import "math"

const (
	// WordSize is the size of a boundary tag or link word in bytes.
	WordSize = 8

	// Alignment is the payload alignment unit. Every payload handed out by the
	// allocator starts on a multiple of Alignment relative to the arena base.
	Alignment = 16

	// AlignmentMask is the bitmask used for aligning to Alignment (Alignment - 1).
	AlignmentMask = Alignment - 1

	// TagOverhead is the header plus footer cost of a free-list block.
	TagOverhead = 2 * WordSize

	// MinBlockSize is the smallest block that can exist in the heap: a header and
	// a footer with no payload. Such blocks only appear as split padding.
	MinBlockSize = Alignment

	// MinListedSize is the smallest free block that carries list links and is
	// therefore eligible for a free list.
	MinListedSize = 2 * Alignment

	// StateMask selects the state bits of a tag word.
	StateMask = 0x7

	// StateFree and StateAllocated are the two state encodings in use.
	StateFree      = 0
	StateAllocated = 1

	// SizeShift is how far the block size is shifted inside a tag word.
	SizeShift = 3

	// NumClasses is the number of segregated free lists (2^5 .. 2^40).
	NumClasses = 36

	// MinClassShift is log2 of the upper bound of class 0.
	MinClassShift = 5

	// MaxBlockSize is the largest block the free lists can index.
	MaxBlockSize = 1 << (MinClassShift + NumClasses - 1)

	// MaxPayload is the largest request the free lists accept, capped to int
	// on 32-bit platforms.
	MaxPayload = min(MaxBlockSize-TagOverhead, math.MaxInt)
)

// Offsets of the intrusive link words inside a free block, relative to the
// block header.
//
//	+0   header   size<<3 | state
//	+8   pred     offset of previous block in the class list (0 = none)
//	+16  succ     offset of next block in the class list (0 = none)
//	...
//	-8   footer   copy of header
const (
	PredOffset = WordSize
	SuccOffset = 2 * WordSize
)
