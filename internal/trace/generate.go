package trace

import "math/rand"

// GenOptions configures Generate.
type GenOptions struct {
	Name    string
	Ops     int   // total operations, including the trailing frees
	MaxSize int   // largest single request in bytes
	Seed    int64 // RNG seed; equal options give equal traces
}

const (
	defaultGenOps     = 1000
	defaultGenMaxSize = 1 << 16
	smallRequest      = 32
	mediumRequest     = 1024
	maxCallocCount    = 16
)

func (o GenOptions) withDefaults() GenOptions {
	if o.Ops <= 0 {
		o.Ops = defaultGenOps
	}
	if o.MaxSize <= 0 {
		o.MaxSize = defaultGenMaxSize
	}
	if o.Name == "" {
		o.Name = "generated"
	}
	return o
}

// Generate synthesizes a random trace that passes Check. Every id is freed by
// the end, so a correct allocator finishes with no live blocks.
func Generate(opts GenOptions) *Trace {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	t := &Trace{Name: opts.Name}
	live := make([]int, 0, opts.Ops/2)
	sizes := make(map[int]int)
	nextID, liveBytes, peak := 0, 0, 0

	for len(t.Ops)+len(live) < opts.Ops {
		r := rng.Float64()
		room := len(t.Ops)+len(live)+2 <= opts.Ops
		if len(live) == 0 && !room {
			break
		}

		switch {
		case room && (len(live) == 0 || r < 0.45):
			id := nextID
			nextID++
			op := Op{Kind: OpAlloc, ID: id, Size: randomRequest(rng, opts.MaxSize)}
			if rng.Intn(10) == 0 {
				op.Kind = OpCalloc
				op.Count = 1 + rng.Intn(maxCallocCount)
				op.Size = max(1, op.Size/op.Count)
			}
			t.Ops = append(t.Ops, op)
			live = append(live, id)
			sizes[id] = op.Bytes()
			liveBytes += op.Bytes()

		case !room || r >= 0.75:
			id := live[rng.Intn(len(live))]
			size := randomRequest(rng, opts.MaxSize)
			t.Ops = append(t.Ops, Op{Kind: OpRealloc, ID: id, Size: size})
			liveBytes += size - sizes[id]
			sizes[id] = size

		default:
			i := rng.Intn(len(live))
			id := live[i]
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
			liveBytes -= sizes[id]
			delete(sizes, id)
		}
		peak = max(peak, liveBytes)
	}

	for _, id := range live {
		t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
	}

	t.Header = Header{HeapHint: peak, IDs: nextID, Ops: len(t.Ops), Weight: 1}
	return t
}

// randomRequest favors small requests the way real workloads do.
func randomRequest(rng *rand.Rand, maxSize int) int {
	switch r := rng.Intn(100); {
	case r < 50:
		return 1 + rng.Intn(min(smallRequest, maxSize))
	case r < 85:
		return 1 + rng.Intn(min(mediumRequest, maxSize))
	default:
		return 1 + rng.Intn(maxSize)
	}
}
