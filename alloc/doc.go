// Package alloc implements a general-purpose allocator over a single growable
// arena.
//
// # Overview
//
// The allocator combines two strategies:
//
//   - Slabs for the two smallest payload sizes (16 and 32 bytes). Slots carry
//     no per-object header; occupancy lives in a bitmap at the front of each slab.
//   - Segregated free lists for everything larger. Blocks carry a boundary tag
//     at both ends so neighbors can be found in either direction, and free
//     blocks are threaded onto one of 36 power-of-two classes.
//
// All allocator state, including the list heads and slab tables, lives inside
// the arena. Pointers are byte offsets from the arena base (Ptr); Nil is 0,
// which always falls inside the index tables and so is never a payload.
//
// # Usage Example
//
//	a := arena.NewMem(64 << 20)
//	al, err := alloc.New(a, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := al.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(al.Bytes(p, 100), payload)
//
//	p, err = al.Realloc(p, 400)
//	...
//	err = al.Free(p)
//
// # Arena Layout
//
//	offset   0  36 free-list heads        (class 0 = 32 B .. class 35 = 2^40 B)
//	offset 288  10 slab heads, 16 B slots (one per generation)
//	offset 368  14 slab heads, 32 B slots
//	offset 480  pad word
//	offset 488  first block header, payload at 496
//
// # Block Layout
//
//	+0        header  size<<3 | allocated
//	+8        payload (free: predecessor link)
//	+16               (free: successor link)
//	+size-8   footer  copy of header
//
// # Size Classes
//
// A free block of size s lives in class ceil(log2(s)) - 5. Allocation scans its
// own class first and then larger ones, keeping the closest fit within a class
// and stopping early on an exact match. Free blocks of exactly 16 bytes hold no
// links; they stay off the lists until a neighbor merges with them.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally. Independent allocators over independent arenas may be used from
// different goroutines.
package alloc
