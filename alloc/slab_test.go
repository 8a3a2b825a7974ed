package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabGeometry(t *testing.T) {
	tests := []struct {
		class, gen                   int
		wantWords, wantOff, wantSize int
	}{
		{0, 0, 1, 16, 16 + 64*16},
		{0, 1, 2, 16, 16 + 128*16},
		{0, 2, 4, 32, 32 + 256*16},
		{0, 5, 32, 256, 256 + 2048*16},
		{0, 9, 32, 256, 256 + 2048*16},
		{1, 0, 1, 16, 16 + 64*32},
		{1, 13, 32, 256, 256 + 2048*32},
	}
	for _, tt := range tests {
		words, off, total := slabClasses[tt.class].geometry(tt.gen)
		assert.Equal(t, tt.wantWords, words, "class %d gen %d", tt.class, tt.gen)
		assert.Equal(t, tt.wantOff, off, "class %d gen %d", tt.class, tt.gen)
		assert.Equal(t, tt.wantSize, total, "class %d gen %d", tt.class, tt.gen)
	}
}

func TestSlab_ClassSelection(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	for _, size := range []int{1, 16} {
		p := mustAlloc(t, al, size)
		r, ok := al.slabOf(p)
		require.True(t, ok)
		assert.Equal(t, 0, r.class, "size %d", size)
	}
	for _, size := range []int{17, 32} {
		p := mustAlloc(t, al, size)
		r, ok := al.slabOf(p)
		require.True(t, ok)
		assert.Equal(t, 1, r.class, "size %d", size)
	}
	_, ok := al.slabOf(mustAlloc(t, al, 33))
	assert.False(t, ok)
}

func TestSlab_GenerationsFillInOrder(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)

	seen := make(map[Ptr]bool)
	var ps []Ptr
	for range 64 + 128 + 1 {
		p := mustAlloc(t, al, 16)
		require.False(t, seen[p], "slot %d handed out twice", p)
		seen[p] = true
		ps = append(ps, p)
	}
	st := al.Stats()
	assert.Equal(t, 3, st.SlabsCreated)
	assert.NotZero(t, al.slabHead(0, 0))
	assert.NotZero(t, al.slabHead(0, 1))
	assert.NotZero(t, al.slabHead(0, 2))
	requireValid(t, al)

	// Slots of the first slab are contiguous.
	_, slotsOff, _ := slabClasses[0].geometry(0)
	for i := range 64 {
		assert.Equal(t, Ptr(al.slabHead(0, 0)+slotsOff+i*16), ps[i])
	}

	for _, p := range ps {
		mustFree(t, al, p)
		requireValid(t, al)
	}
	assert.Equal(t, 3, al.Stats().SlabsReleased)
	for gen := range slab16Gens {
		assert.Zero(t, al.slabHead(0, gen))
	}

	// Everything merged back into one free block.
	lists := al.FreeListStats()
	require.Len(t, lists, 1)
	assert.Equal(t, 1, lists[0].Blocks)
}

func TestSlab_FreedSlotIsReused(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	a := mustAlloc(t, al, 8)
	b := mustAlloc(t, al, 8)
	mustAlloc(t, al, 8)

	mustFree(t, al, a)
	assert.Equal(t, a, mustAlloc(t, al, 8), "lowest clear bit is taken first")
	mustFree(t, al, b)
	assert.Equal(t, b, mustAlloc(t, al, 8))
	requireValid(t, al)
}

func TestSlab_NewestGenerationServesFirst(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	var gen0 []Ptr
	for range 64 {
		gen0 = append(gen0, mustAlloc(t, al, 24))
	}
	gen1 := mustAlloc(t, al, 24)
	r, ok := al.slabOf(gen1)
	require.True(t, ok)
	assert.Equal(t, 1, r.gen)

	mustFree(t, al, gen0[10])
	next := mustAlloc(t, al, 24)
	r, ok = al.slabOf(next)
	require.True(t, ok)
	assert.Equal(t, 1, r.gen, "scan starts at the highest live generation")
	requireValid(t, al)
}

func TestSlab_RecreatedInRecycledBlock(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	p := mustAlloc(t, al, 8)
	base := al.slabHead(0, 0)
	mustFree(t, al, p)
	require.Zero(t, al.slabHead(0, 0))
	fill(al, p, 1024, 0xEE) // stale slot contents

	q := mustAlloc(t, al, 8)
	assert.Equal(t, p, q)
	assert.Equal(t, base, al.slabHead(0, 0))
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, al.Bytes(Ptr(base), 8))
	assert.Equal(t, 2, al.Stats().SlabsCreated)
	assert.Equal(t, p+16, mustAlloc(t, al, 8))
	requireValid(t, al)
}
