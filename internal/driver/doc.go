// Package driver replays allocation traces against the allocator and checks
// its behavior along the way.
//
// Each trace runs on a fresh allocator over its own arena. A checked pass
// fills every payload with an id-derived pattern, verifies the pattern before
// each free and across each realloc, and rejects misaligned, out-of-range and
// overlapping blocks. With Config.Check the heap is validated after every
// operation. A second, unchecked pass measures throughput.
//
// Traces are independent, so Run replays several of them concurrently.
package driver
