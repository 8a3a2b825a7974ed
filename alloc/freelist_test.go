package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segalloc/internal/format"
)

// allocSeparated allocates sizes with a live 100-byte separator after each so
// the blocks never coalesce when freed.
func allocSeparated(t *testing.T, al *Allocator, sizes ...int) []Ptr {
	t.Helper()
	var ps []Ptr
	for _, size := range sizes {
		ps = append(ps, mustAlloc(t, al, size))
		mustAlloc(t, al, 100)
	}
	return ps
}

func TestFreeList_LIFOInsertAndInteriorRemove(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	ps := allocSeparated(t, al, 100, 100, 100)
	for _, p := range ps {
		mustFree(t, al, p)
	}

	class := format.SizeClass(128)
	blocks := func(ps ...Ptr) []int {
		var out []int
		for _, p := range ps {
			out = append(out, int(p)-format.WordSize)
		}
		return out
	}
	assert.Equal(t, blocks(ps[2], ps[1], ps[0]), listBlocks(al, class))

	al.listRemove(int(ps[1])-format.WordSize, 128)
	assert.Equal(t, blocks(ps[2], ps[0]), listBlocks(al, class))
	assert.Zero(t, al.pred(int(ps[2])-format.WordSize))
	assert.Equal(t, int(ps[2])-format.WordSize, al.pred(int(ps[0])-format.WordSize))

	al.listRemove(int(ps[2])-format.WordSize, 128)
	assert.Equal(t, blocks(ps[0]), listBlocks(al, class))
	al.listRemove(int(ps[0])-format.WordSize, 128)
	assert.Empty(t, listBlocks(al, class))
}

func TestFreeList_ExactMatchWins(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	ps := allocSeparated(t, al, 80, 100) // blocks of 96 and 128
	mustFree(t, al, ps[0])
	mustFree(t, al, ps[1])

	// The 128 block is at the head; the exact 96 fit still wins.
	p := mustAlloc(t, al, 70)
	assert.Equal(t, ps[0], p)
	assert.Zero(t, al.Stats().Splits)
	requireValid(t, al)
}

func TestFreeList_BestFitWithinClass(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	ps := allocSeparated(t, al, 100, 80, 90) // blocks of 128, 96, 112
	for _, p := range ps {
		mustFree(t, al, p)
	}

	// need 80: 96 is the closest fit in class 2.
	p := mustAlloc(t, al, 60)
	assert.Equal(t, ps[1], p)
	requireValid(t, al)
}

func TestFreeList_NextClassWhenOwnIsEmpty(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	ps := allocSeparated(t, al, 1000)
	mustFree(t, al, ps[0])
	size := al.Stats().HeapSize

	p := mustAlloc(t, al, 40)
	assert.Equal(t, ps[0], p)
	assert.Equal(t, size, al.Stats().HeapSize, "no growth needed")
	assert.Equal(t, []ClassStats{{
		Class: format.SizeClass(1024 - 64), Limit: 1024, Blocks: 1, Bytes: 1024 - 64,
	}}, al.FreeListStats())
	requireValid(t, al)
}

func TestFreeList_SmallerClassNeverServes(t *testing.T) {
	al, a := newTestAllocator(t, 0, nil)
	ps := allocSeparated(t, al, 100)
	mustFree(t, al, ps[0])
	before := a.Size()

	p := mustAlloc(t, al, 200)
	assert.Equal(t, before, int(p)-format.WordSize, "grown block sits at the old arena end")
	require.Len(t, al.FreeListStats(), 1)
	requireValid(t, al)
}

func TestFreeList_PaddingMergesWithoutUnlink(t *testing.T) {
	al, _ := newTestAllocator(t, 0, nil)
	p := mustAlloc(t, al, 100) // 128
	mustAlloc(t, al, 100)
	mustFree(t, al, p)
	q := mustAlloc(t, al, 96) // 112, leaves 16 bytes of padding
	pad := firstBlock + 112
	require.Equal(t, format.Tag{Size: 16, Allocated: false}, al.tag(pad))

	mustFree(t, al, q)
	assert.Equal(t, format.Tag{Size: 128, Allocated: false}, al.tag(firstBlock))
	assert.Equal(t, []int{firstBlock}, listBlocks(al, format.SizeClass(128)))
	requireValid(t, al)
}
