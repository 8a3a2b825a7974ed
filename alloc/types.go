package alloc

import (
	"log/slog"

	"github.com/joshuapare/segalloc/internal/format"
)

// Ptr is a payload offset from the arena base.
type Ptr int

// Nil is the null pointer.
const Nil Ptr = 0

const (
	// slab16Gens and slab32Gens are the number of slab generations per class.
	slab16Gens = 10
	slab32Gens = 14

	// Byte offsets of the index tables inside the arena.
	listsOff  = 0
	slab16Off = listsOff + format.NumClasses*format.WordSize
	slab32Off = slab16Off + slab16Gens*format.WordSize
	tablesEnd = slab32Off + slab32Gens*format.WordSize

	// firstBlock is where the first block header lives. One pad word after the
	// tables puts the first payload on an Alignment boundary.
	firstBlock = tablesEnd + format.WordSize

	// prologueSize is what New reserves from a fresh arena.
	prologueSize = firstBlock
)

// Options configures an Allocator. The zero value is usable.
type Options struct {
	// Logger receives arena growth and slab lifecycle events at Debug level and
	// rejected frees at Warn level. Nil discards everything.
	Logger *slog.Logger

	// DisableSlabs routes every request through the free lists.
	DisableSlabs bool
}

// Stats holds allocator counters.
type Stats struct {
	AllocCalls     int // Alloc calls, including those made by Calloc
	FreeCalls      int // Free calls
	ReallocCalls   int // Realloc calls
	CallocCalls    int // Calloc calls
	InvalidFrees   int // Free calls rejected as not owned or already free
	InvalidResizes int // Realloc calls rejected as not owned or not live

	SlabAllocs int // requests served from a slab slot
	ListAllocs int // requests served by the free lists (including slab backing)

	GrowCalls int   // successful arena growths
	GrowBytes int64 // bytes added through growth

	Splits       int // free blocks split on allocation
	CoalescePrev int // merges with the physical predecessor
	CoalesceNext int // merges with the physical successor

	SlabsCreated  int // slabs carved
	SlabsReleased int // slabs returned to the free lists

	ReallocInPlace int // growing reallocs satisfied without moving
	ReallocMoved   int // reallocs that returned a new pointer
	ReallocRolled  int // moving reallocs undone after allocation failure

	HeapSize int // arena size in bytes at snapshot time
}

// ClassStats describes one non-empty free-list class.
type ClassStats struct {
	Class  int   // class index
	Limit  int64 // upper bound on block size for the class
	Blocks int   // number of free blocks in the list
	Bytes  int64 // total bytes held by the list
}
