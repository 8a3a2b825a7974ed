// Package arena provides the growable linear regions the allocator manages.
//
// # Overview
//
// An Arena is a contiguous byte region addressed by integer offsets from its
// base. It only ever grows: Grow appends n zeroed bytes and returns the offset
// where the new bytes start. The allocator never shrinks an arena and never
// keeps slices across a Grow call, so implementations are free to move the
// backing storage.
//
// # Implementations
//
// Mem: heap-backed region capped at a maximum size
//
//   - Backed by a Go byte slice
//   - Growth past MaxSize fails with ErrExhausted
//   - Portable, used by tests and the default driver configuration
//
// Mmap: virtual-memory-backed region (Linux and macOS)
//
//   - Reserves MaxSize bytes of address space up front with PROT_NONE
//   - Grow commits pages with mprotect, so the base never moves
//   - Close unmaps the whole reservation
//
// On other platforms NewMmap falls back to a Mem arena of the same capacity.
//
// # Thread Safety
//
// Arenas are not thread-safe. One arena belongs to one allocator.
package arena
