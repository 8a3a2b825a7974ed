package format

import "encoding/binary"

// Binary encoding utilities for the little-endian words stored in the arena.
//
// Implementation: Uses encoding/binary.LittleEndian. The compiler inlines these
// calls, so there is no benefit in reaching for unsafe pointer casts.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+WordSize], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+WordSize])
}

// PutOff writes an arena offset as a word. Offsets are never negative.
func PutOff(b []byte, off int, v int) {
	PutU64(b, off, uint64(v))
}

// ReadOff reads a word written by PutOff.
func ReadOff(b []byte, off int) int {
	return int(ReadU64(b, off))
}
