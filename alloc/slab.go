package alloc

import (
	"math/bits"

	"github.com/joshuapare/segalloc/internal/format"
)

const (
	// maxSlabWords caps the bitmap of late generations.
	maxSlabWords = 32
	slotsPerWord = 64
	fullWord     = ^uint64(0)
)

// slabClass describes one fixed slot size.
type slabClass struct {
	slotSize int
	table    int // arena offset of the generation table
	gens     int
}

var slabClasses = [...]slabClass{
	{slotSize: format.Alignment, table: slab16Off, gens: slab16Gens},
	{slotSize: 2 * format.Alignment, table: slab32Off, gens: slab32Gens},
}

// geometry returns the bitmap word count, the offset of slot 0 from the slab
// base, and the payload bytes a slab of generation gen needs. The bitmap
// doubles per generation until it reaches maxSlabWords.
func (c slabClass) geometry(gen int) (words, slotsOff, total int) {
	words = min(1<<gen, maxSlabWords)
	slotsOff = format.Align16(words * format.WordSize)
	total = slotsOff + words*slotsPerWord*c.slotSize
	return words, slotsOff, total
}

// slabRef identifies a live slab. base is the payload pointer of the block that
// backs it; the bitmap starts there.
type slabRef struct {
	class int
	gen   int
	base  int
}

func (al *Allocator) slabHead(class, gen int) int {
	return format.ReadOff(al.data(), slabClasses[class].table+gen*format.WordSize)
}

func (al *Allocator) setSlabHead(class, gen, base int) {
	format.PutOff(al.data(), slabClasses[class].table+gen*format.WordSize, base)
}

// slabAlloc hands out a slot of the given class. Live slabs are scanned from
// the newest generation down; when all are full a new slab is carved at the
// lowest empty generation. Nil with a nil error means every generation is live
// and full, and the caller should fall back to the free lists.
func (al *Allocator) slabAlloc(class int) (Ptr, error) {
	c := slabClasses[class]
	d := al.data()
	for gen := c.gens - 1; gen >= 0; gen-- {
		base := al.slabHead(class, gen)
		if base == 0 {
			continue
		}
		words, slotsOff, _ := c.geometry(gen)
		for w := range words {
			off := base + w*format.WordSize
			bm := format.ReadU64(d, off)
			if bm == fullWord {
				continue
			}
			bit := bits.TrailingZeros64(^bm)
			format.PutU64(d, off, bm|1<<bit)
			al.stats.SlabAllocs++
			return Ptr(base + slotsOff + (w*slotsPerWord+bit)*c.slotSize), nil
		}
	}
	return al.slabCreate(class)
}

// slabCreate carves a slab at the lowest empty generation and returns its
// first slot. The table is only touched once the backing block exists.
func (al *Allocator) slabCreate(class int) (Ptr, error) {
	c := slabClasses[class]
	gen := -1
	for g := range c.gens {
		if al.slabHead(class, g) == 0 {
			gen = g
			break
		}
	}
	if gen < 0 {
		return Nil, nil
	}

	words, slotsOff, total := c.geometry(gen)
	p, err := al.listAlloc(total)
	if err != nil {
		return Nil, err
	}
	base := int(p)
	d := al.data()
	// The backing block may be recycled memory.
	clear(d[base : base+words*format.WordSize])
	format.PutU64(d, base, 1)
	al.setSlabHead(class, gen, base)

	al.stats.SlabsCreated++
	al.stats.SlabAllocs++
	al.log.Debug("slab created",
		"slot", c.slotSize, "gen", gen, "base", base, "slots", words*slotsPerWord)
	return Ptr(base + slotsOff), nil
}

// slabOf finds the live slab whose span contains p, checking the 16-byte
// class before the 32-byte class.
func (al *Allocator) slabOf(p Ptr) (slabRef, bool) {
	for class, c := range slabClasses {
		for gen := range c.gens {
			base := al.slabHead(class, gen)
			if base == 0 {
				continue
			}
			_, _, total := c.geometry(gen)
			if int(p) >= base && int(p) < base+total {
				return slabRef{class: class, gen: gen, base: base}, true
			}
		}
	}
	return slabRef{}, false
}

// slot maps p to its bitmap word and bit. ok is false when p points into the
// bitmap or between slots.
func (r slabRef) slot(p Ptr) (word, bit int, ok bool) {
	c := slabClasses[r.class]
	_, slotsOff, _ := c.geometry(r.gen)
	off := int(p) - r.base - slotsOff
	if off < 0 || off%c.slotSize != 0 {
		return 0, 0, false
	}
	i := off / c.slotSize
	return i / slotsPerWord, i % slotsPerWord, true
}

// slotSize returns the slot size of the slab's class.
func (r slabRef) slotSize() int {
	return slabClasses[r.class].slotSize
}

// slabLive reports whether the slot at p is currently handed out.
func (al *Allocator) slabLive(r slabRef, p Ptr) bool {
	word, bit, ok := r.slot(p)
	if !ok {
		return false
	}
	bm := format.ReadU64(al.data(), r.base+word*format.WordSize)
	return bm&(1<<bit) != 0
}

// slabFree clears the slot bit for p. When the bitmap becomes empty the slab's
// backing block is released to the free lists and its table entry cleared.
func (al *Allocator) slabFree(r slabRef, p Ptr) error {
	word, bit, ok := r.slot(p)
	if !ok {
		return ErrInvalidFree
	}
	d := al.data()
	off := r.base + word*format.WordSize
	bm := format.ReadU64(d, off)
	if bm&(1<<bit) == 0 {
		return ErrInvalidFree
	}
	bm &^= 1 << bit
	format.PutU64(d, off, bm)
	if bm != 0 {
		return nil
	}

	words, _, _ := slabClasses[r.class].geometry(r.gen)
	for w := range words {
		if format.ReadU64(d, r.base+w*format.WordSize) != 0 {
			return nil
		}
	}

	al.setSlabHead(r.class, r.gen, 0)
	b := r.base - format.WordSize
	al.release(b, al.tag(b).Size)
	al.stats.SlabsReleased++
	al.log.Debug("slab released", "slot", r.slotSize(), "gen", r.gen, "base", r.base)
	return nil
}
