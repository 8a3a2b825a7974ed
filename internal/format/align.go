package format

// Align16 returns n aligned up to the next Alignment (16-byte) boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned16 reports whether n is a multiple of Alignment.
func IsAligned16(n int) bool {
	return n&AlignmentMask == 0
}

// BlockSizeFor returns the free-list block size needed to hold a payload of n
// bytes: the payload rounded up to the alignment unit plus the tag overhead.
func BlockSizeFor(n int) int {
	return Align16(n) + TagOverhead
}
